package lifecycle

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
)

const (
	sepolia = uint64(11155111)
	scroll  = uint64(534353)
)

var (
	owner       = common.HexToAddress("0x347D03041d4Dbb2b61144275E28FDc31ACb89722")
	beneficiary = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	solverA     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	solverB     = common.HexToAddress("0x00000000000000000000000000000000000000a2")

	oneFinney  = big.NewInt(1_000_000_000_000_000)
	minRecv    = big.NewInt(900_000_000_000_000)
	goodOffer  = big.NewInt(950_000_000_000_000)
	otherOffer = big.NewInt(920_000_000_000_000)
	lowOffer   = big.NewInt(800_000_000_000_000)
)

func newTestEngine() (*Engine, intentstore.Store) {
	store := intentstore.NewMemoryStore()
	return NewEngine(store, zap.NewNop()), store
}

func newIntentEvent(uid int64) *ethereum.NewIntentEvent {
	return &ethereum.NewIntentEvent{
		ChainID:            sepolia,
		IntentUID:          big.NewInt(uid),
		AmountDeposited:    new(big.Int).Set(oneFinney),
		MinAmountRecv:      new(big.Int).Set(minRecv),
		DestinationChainID: new(big.Int).SetUint64(scroll),
		Beneficiary:        beneficiary,
		BlockNumber:        100,
		TxHash:             common.HexToHash("0x0a"),
	}
}

func newBidEvent(intentUID, bidUID int64, amount *big.Int) *ethereum.NewIntentBidEvent {
	return &ethereum.NewIntentBidEvent{
		ChainID:         scroll,
		SourceChainID:   new(big.Int).SetUint64(sepolia),
		SourceIntentUID: big.NewInt(intentUID),
		BidUID:          big.NewInt(bidUID),
		AmountProposed:  new(big.Int).Set(amount),
		BlockNumber:     200 + uint64(bidUID),
		TxHash:          common.HexToHash("0x0b"),
	}
}

func bidView(intentUID int64, amount *big.Int, proposer common.Address) *ethereum.BidView {
	return &ethereum.BidView{
		SourceChainID:  new(big.Int).SetUint64(sepolia),
		IntentUID:      big.NewInt(intentUID),
		AmountProposed: new(big.Int).Set(amount),
		Proposer:       proposer,
		Destination:    beneficiary,
		Forwarding:     proposer,
		Timestamp:      time.Unix(1700000100, 0).UTC(),
	}
}

func intentView(fulfiller common.Address, executed, returned bool) *ethereum.IntentView {
	return &ethereum.IntentView{
		Amount:             new(big.Int).Set(oneFinney),
		MinAmountRecv:      new(big.Int).Set(minRecv),
		DestinationChainID: uint32(scroll),
		Beneficiary:        beneficiary,
		Owner:              owner,
		Fulfiller:          fulfiller,
		Executed:           executed,
		Returned:           returned,
		Timestamp:          time.Unix(1700000000, 0).UTC(),
	}
}

func intentKey(uid int64) intent.IntentKey {
	return intent.NewIntentKey(sepolia, big.NewInt(uid))
}

func bidKey(uid int64) intent.BidKey {
	return intent.NewBidKey(scroll, big.NewInt(uid))
}

// proposeAndObserve records a bid and learns its proposer, as the user driver does before accepting
func proposeAndObserve(t *testing.T, e *Engine, intentUID, bidUID int64, amount *big.Int, proposer common.Address) {
	t.Helper()
	ctx := context.Background()
	res := e.HandleNewIntentBid(ctx, newBidEvent(intentUID, bidUID, amount))
	require.Equal(t, OutcomeApplied, res.Outcome, "%v", res.Err)
	res = e.ObserveBid(ctx, bidKey(bidUID), bidView(intentUID, amount, proposer))
	require.Equal(t, OutcomeApplied, res.Outcome, "%v", res.Err)
}

func requireIntentState(t *testing.T, s intentstore.Store, key intent.IntentKey, want intent.State) *intent.Intent {
	t.Helper()
	in, err := s.GetIntent(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, want, in.State)
	return in
}

func requireBidState(t *testing.T, s intentstore.Store, key intent.BidKey, want intent.BidState) *intent.Bid {
	t.Helper()
	b, err := s.GetBid(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, want, b.State, "bid %s", key)
	return b
}

// checkInvariants asserts the properties every reachable store state satisfies
func checkInvariants(t *testing.T, s intentstore.Store) {
	t.Helper()
	ctx := context.Background()
	intents, err := s.ListIntents(ctx)
	require.NoError(t, err)
	for _, in := range intents {
		wantFulfiller := in.State == intent.StateBidAccepted || in.State == intent.StateFulfilled
		require.Equal(t, wantFulfiller, in.HasFulfiller(), "intent %s in %s", in.Key, in.State)
		require.True(t, in.MinAmountRecv.Cmp(in.Amount) <= 0)

		bids, err := s.ListBidsForIntent(ctx, in.Key)
		require.NoError(t, err)
		accepted := 0
		for _, b := range bids {
			if b.State == intent.BidAccepted || b.State == intent.BidExecuted {
				accepted++
				require.True(t, b.AmountProposed.Cmp(in.MinAmountRecv) >= 0, "accepted bid %s below minimum", b.Key)
				require.NotNil(t, in.AcceptedBid)
				require.Equal(t, b.Key, *in.AcceptedBid)
				require.Equal(t, in.Fulfiller, b.Proposer)
			}
		}
		require.LessOrEqual(t, accepted, 1, "intent %s has %d accepted bids", in.Key, accepted)
	}
}
