package actor

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

func policyIntent() *intent.Intent {
	return &intent.Intent{
		Key:                intent.NewIntentKey(sepolia, big.NewInt(1)),
		Amount:             new(big.Int).Set(oneFinney),
		MinAmountRecv:      new(big.Int).Set(minRecv),
		DestinationChainID: scroll,
		Beneficiary:        beneficiary,
		State:              intent.StateOpen,
	}
}

func policyBid(in *intent.Intent, uid int64, amount int64, proposer common.Address) *intent.Bid {
	return &intent.Bid{
		Key:            intent.NewBidKey(scroll, big.NewInt(uid)),
		Intent:         in.Key,
		AmountProposed: big.NewInt(amount),
		Proposer:       proposer,
		State:          intent.BidProposed,
	}
}

func TestSelectBid(t *testing.T) {
	in := policyIntent()
	solver := common.HexToAddress("0xa1")

	low := policyBid(in, 1, 800_000_000_000_000, solver)
	first := policyBid(in, 2, 910_000_000_000_000, solver)
	unknownProposer := policyBid(in, 3, 990_000_000_000_000, common.Address{})
	best := policyBid(in, 4, 950_000_000_000_000, solver)
	withdrawn := policyBid(in, 5, 999_000_000_000_000, solver)
	withdrawn.State = intent.BidWithdrawn
	bids := []*intent.Bid{low, first, unknownProposer, best, withdrawn}

	got := SelectBid(config.AcceptFirstAcceptable, in, bids)
	require.NotNil(t, got)
	assert.Equal(t, first.Key, got.Key)

	got = SelectBid(config.AcceptBestOffer, in, bids)
	require.NotNil(t, got)
	assert.Equal(t, best.Key, got.Key)

	assert.Nil(t, SelectBid(config.AcceptManual, in, bids))
	assert.Nil(t, SelectBid(config.AcceptFirstAcceptable, in, []*intent.Bid{low, unknownProposer}))
}

func TestBidPolicy_Offer(t *testing.T) {
	in := policyIntent()

	offer, ok := BidPolicy{FeeBps: 500}.Offer(in)
	require.True(t, ok)
	assert.Equal(t, "950000000000000", offer.String())

	_, ok = BidPolicy{FeeBps: 2000}.Offer(in)
	assert.False(t, ok, "offer below minAmountRecv")

	_, ok = BidPolicy{FeeBps: 100, MaxAmount: big.NewInt(1)}.Offer(in)
	assert.False(t, ok, "intent above the solver cap")

	offer, ok = BidPolicy{}.Offer(in)
	require.True(t, ok)
	assert.Equal(t, 0, offer.Cmp(oneFinney))

	cfg := &config.SolverConfig{FeeBps: 250, MaxAmountWei: "2000000000000000"}
	p := NewBidPolicy(cfg)
	assert.Equal(t, uint64(250), p.FeeBps)
	assert.Equal(t, "2000000000000000", p.MaxAmount.String())
}
