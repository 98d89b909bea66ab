package reconciler

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
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
	amount      = big.NewInt(1_000_000_000_000_000)
	minRecv     = big.NewInt(900_000_000_000_000)
)

type fixture struct {
	engine *lifecycle.Engine
	store  intentstore.Store
	source *MockViewSource
	dest   *MockViewSource
	rec    *Reconciler

	intents map[int64]*ethereum.IntentView
	bids    map[int64]*ethereum.BidView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   intentstore.NewMemoryStore(),
		source:  &MockViewSource{},
		dest:    &MockViewSource{},
		intents: make(map[int64]*ethereum.IntentView),
		bids:    make(map[int64]*ethereum.BidView),
	}
	f.engine = lifecycle.NewEngine(f.store, zap.NewNop())
	f.source.GetIntentFunc = func(_ context.Context, uid *big.Int) (*ethereum.IntentView, error) {
		if v, ok := f.intents[uid.Int64()]; ok {
			c := *v
			return &c, nil
		}
		return &ethereum.IntentView{}, nil
	}
	f.dest.GetBidFunc = func(_ context.Context, uid *big.Int) (*ethereum.BidView, error) {
		if v, ok := f.bids[uid.Int64()]; ok {
			c := *v
			return &c, nil
		}
		return &ethereum.BidView{}, nil
	}
	f.rec = New(f.engine, map[uint64]ViewSource{sepolia: f.source, scroll: f.dest}, zap.NewNop())
	return f
}

func (f *fixture) openIntent(t *testing.T, uid int64) {
	t.Helper()
	res := f.engine.HandleNewIntent(context.Background(), &ethereum.NewIntentEvent{
		ChainID:            sepolia,
		IntentUID:          big.NewInt(uid),
		AmountDeposited:    amount,
		MinAmountRecv:      minRecv,
		DestinationChainID: new(big.Int).SetUint64(scroll),
		Beneficiary:        beneficiary,
		BlockNumber:        10,
	})
	require.Equal(t, lifecycle.OutcomeApplied, res.Outcome)
	f.intents[uid] = &ethereum.IntentView{
		Amount:             amount,
		MinAmountRecv:      minRecv,
		DestinationChainID: uint32(scroll),
		Beneficiary:        beneficiary,
		Owner:              owner,
		Timestamp:          time.Unix(1_700_000_000, 0),
	}
}

func (f *fixture) placeBid(t *testing.T, intentUID, bidUID int64, proposer common.Address) {
	t.Helper()
	res := f.engine.HandleNewIntentBid(context.Background(), &ethereum.NewIntentBidEvent{
		ChainID:         scroll,
		SourceChainID:   new(big.Int).SetUint64(sepolia),
		SourceIntentUID: big.NewInt(intentUID),
		BidUID:          big.NewInt(bidUID),
		AmountProposed:  minRecv,
		BlockNumber:     20 + uint64(bidUID),
	})
	require.NotEqual(t, lifecycle.OutcomeError, res.Outcome)
	f.bids[bidUID] = &ethereum.BidView{
		SourceChainID:  new(big.Int).SetUint64(sepolia),
		IntentUID:      big.NewInt(intentUID),
		AmountProposed: minRecv,
		Proposer:       proposer,
		Destination:    beneficiary,
		Forwarding:     proposer,
	}
}

func (f *fixture) intentState(t *testing.T, uid int64) intent.State {
	t.Helper()
	in, err := f.store.GetIntent(context.Background(), intent.NewIntentKey(sepolia, big.NewInt(uid)))
	require.NoError(t, err)
	return in.State
}

func (f *fixture) bidState(t *testing.T, uid int64) intent.BidState {
	t.Helper()
	b, err := f.store.GetBid(context.Background(), intent.NewBidKey(scroll, big.NewInt(uid)))
	require.NoError(t, err)
	return b.State
}

func TestReconcileAll_ConfirmsChainTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.openIntent(t, 1)
	f.placeBid(t, 1, 7, solverA)
	f.placeBid(t, 1, 8, solverB)
	f.openIntent(t, 2)

	// first pass learns owners and proposers
	summary, err := f.rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Checked)
	assert.Equal(t, 4, summary.Applied)

	b, err := f.store.GetBid(ctx, intent.NewBidKey(scroll, big.NewInt(7)))
	require.NoError(t, err)
	assert.Equal(t, solverA, b.Proposer)

	// the owner accepted bid 7 and returned intent 2 outside this process
	f.intents[1].Fulfiller = solverA
	f.intents[2].Returned = true
	f.bids[8].Returned = true

	_, err = f.rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, intent.StateBidAccepted, f.intentState(t, 1))
	assert.Equal(t, intent.StateReturned, f.intentState(t, 2))
	assert.Equal(t, intent.BidAccepted, f.bidState(t, 7))
	assert.Equal(t, intent.BidWithdrawn, f.bidState(t, 8))

	// settlement on the destination chain
	f.intents[1].Executed = true
	f.bids[7].Executed = true
	_, err = f.rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, intent.StateFulfilled, f.intentState(t, 1))
	assert.Equal(t, intent.BidExecuted, f.bidState(t, 7))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.IntentsByState.WithLabelValues(string(intent.StateFulfilled))))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.IntentsByState.WithLabelValues(string(intent.StateReturned))))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.IntentsByState.WithLabelValues(string(intent.StateOpen))))

	// nothing left to check
	f.source.intentReads, f.dest.bidReads = nil, nil
	summary, err = f.rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Checked)
	intents, bids := f.source.reads()
	assert.Empty(t, intents)
	assert.Empty(t, bids)
}

func TestReconcileAll_ReadFailuresDoNotStopThePass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openIntent(t, 1)
	f.openIntent(t, 2)

	f.source.GetIntentFunc = func(_ context.Context, uid *big.Int) (*ethereum.IntentView, error) {
		if uid.Int64() == 1 {
			return nil, errors.New("rpc unavailable")
		}
		c := *f.intents[uid.Int64()]
		return &c, nil
	}

	summary, err := f.rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Applied)

	in, err := f.store.GetIntent(ctx, intent.NewIntentKey(sepolia, big.NewInt(2)))
	require.NoError(t, err)
	assert.Equal(t, owner, in.Owner)
}

func TestReconcileAll_ConflictingViewIsRejected(t *testing.T) {
	f := newFixture(t)
	f.openIntent(t, 1)
	f.intents[1].MinAmountRecv = big.NewInt(1)

	summary, err := f.rec.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, intent.StateOpen, f.intentState(t, 1))
}

func TestReconciler_Periodic(t *testing.T) {
	f := newFixture(t)
	f.openIntent(t, 1)

	f.rec.StartPeriodicReconciliation(10 * time.Millisecond)
	require.Eventually(t, func() bool {
		intents, _ := f.source.reads()
		return len(intents) > 0
	}, time.Second, 5*time.Millisecond)
	f.rec.Stop()

	in, err := f.store.GetIntent(context.Background(), intent.NewIntentKey(sepolia, big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, owner, in.Owner)
}
