package actor

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
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
	beneficiary = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	oneFinney   = big.NewInt(1_000_000_000_000_000)
	minRecv     = big.NewInt(900_000_000_000_000)
)

// MockGateway is a func-field Gateway that records submitted calls
type MockGateway struct {
	chainID uint64
	name    string

	mu    sync.Mutex
	calls []ethereum.Call

	SubmitFunc    func(ctx context.Context, signer ethereum.Signer, call ethereum.Call) (common.Hash, error)
	GetIntentFunc func(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error)
	GetBidFunc    func(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error)
}

func newMockGateway(chainID uint64, name string) *MockGateway {
	return &MockGateway{chainID: chainID, name: name}
}

func (m *MockGateway) ChainID() uint64 { return m.chainID }
func (m *MockGateway) Name() string    { return m.name }

func (m *MockGateway) Submit(ctx context.Context, signer ethereum.Signer, call ethereum.Call) (common.Hash, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	n := len(m.calls)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, signer, call)
	}
	return common.BigToHash(big.NewInt(int64(m.chainID)*1000 + int64(n))), nil
}

func (m *MockGateway) GetIntent(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error) {
	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, intentUID)
	}
	return &ethereum.IntentView{}, nil
}

func (m *MockGateway) GetBid(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error) {
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, bidUID)
	}
	return &ethereum.BidView{}, nil
}

func (m *MockGateway) sent() []ethereum.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ethereum.Call(nil), m.calls...)
}

func (m *MockGateway) methods() []ethereum.Method {
	var out []ethereum.Method
	for _, c := range m.sent() {
		out = append(out, c.Method)
	}
	return out
}

// chainViews plays the contract: views are served from maps the test edits
type chainViews struct {
	mu      sync.Mutex
	intents map[int64]*ethereum.IntentView
	bids    map[int64]*ethereum.BidView
}

func newChainViews() *chainViews {
	return &chainViews{
		intents: make(map[int64]*ethereum.IntentView),
		bids:    make(map[int64]*ethereum.BidView),
	}
}

func (v *chainViews) intent(_ context.Context, uid *big.Int) (*ethereum.IntentView, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if in, ok := v.intents[uid.Int64()]; ok {
		c := *in
		return &c, nil
	}
	return &ethereum.IntentView{}, nil
}

func (v *chainViews) bid(_ context.Context, uid *big.Int) (*ethereum.BidView, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b, ok := v.bids[uid.Int64()]; ok {
		c := *b
		return &c, nil
	}
	return &ethereum.BidView{}, nil
}

func (v *chainViews) setIntent(uid int64, view *ethereum.IntentView) {
	v.mu.Lock()
	v.intents[uid] = view
	v.mu.Unlock()
}

func (v *chainViews) setBid(uid int64, view *ethereum.BidView) {
	v.mu.Lock()
	v.bids[uid] = view
	v.mu.Unlock()
}

// harness wires an engine, a submitter over two mock chains and fake contract views
type harness struct {
	engine      *lifecycle.Engine
	store       intentstore.Store
	submissions *db.MemoryStore
	submitter   *Submitter
	source      *MockGateway
	dest        *MockGateway
	views       *chainViews
	clock       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:       intentstore.NewMemoryStore(),
		submissions: db.NewMemoryStore(),
		source:      newMockGateway(sepolia, "sepolia"),
		dest:        newMockGateway(scroll, "scroll"),
		views:       newChainViews(),
		clock:       time.Unix(1_700_000_000, 0).UTC(),
	}
	h.engine = lifecycle.NewEngine(h.store, zap.NewNop())
	h.source.GetIntentFunc = h.views.intent
	h.dest.GetBidFunc = h.views.bid
	h.submitter = NewSubmitter(map[uint64]Gateway{sepolia: h.source, scroll: h.dest}, h.submissions, zap.NewNop())
	return h
}

func (h *harness) now() time.Time { return h.clock }

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func newSigner(t *testing.T) ethereum.Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := ethereum.NewPrivateKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)
	return s
}

func (h *harness) newUser(t *testing.T, cfg config.UserConfig) *UserDriver {
	t.Helper()
	if cfg.SourceChains == nil {
		cfg.SourceChains = []uint64{sepolia}
	}
	if cfg.AcceptPolicy == "" {
		cfg.AcceptPolicy = config.AcceptFirstAcceptable
	}
	d := NewUserDriver(&cfg, h.engine, h.submitter, newSigner(t), zap.NewNop())
	d.now = h.now
	return d
}

func (h *harness) newSolver(t *testing.T, cfg config.SolverConfig) *SolverDriver {
	t.Helper()
	if cfg.SourceChains == nil {
		cfg.SourceChains = []uint64{sepolia}
	}
	if cfg.DestinationChains == nil {
		cfg.DestinationChains = []uint64{scroll}
	}
	d := NewSolverDriver(&cfg, h.engine, h.submitter, newSigner(t), zap.NewNop())
	d.now = h.now
	return d
}

// openIntent delivers a NewIntent event for uid owned by owner and publishes its view
func (h *harness) openIntent(t *testing.T, uid int64, owner common.Address) *ethereum.NewIntentEvent {
	t.Helper()
	ev := &ethereum.NewIntentEvent{
		ChainID:            sepolia,
		IntentUID:          big.NewInt(uid),
		AmountDeposited:    new(big.Int).Set(oneFinney),
		MinAmountRecv:      new(big.Int).Set(minRecv),
		DestinationChainID: new(big.Int).SetUint64(scroll),
		Beneficiary:        beneficiary,
		BlockNumber:        100,
	}
	h.views.setIntent(uid, &ethereum.IntentView{
		Amount:             ev.AmountDeposited,
		MinAmountRecv:      ev.MinAmountRecv,
		DestinationChainID: uint32(scroll),
		Beneficiary:        beneficiary,
		Owner:              owner,
		Timestamp:          h.clock,
	})
	res := h.engine.HandleNewIntent(context.Background(), ev)
	require.Equal(t, lifecycle.OutcomeApplied, res.Outcome, "%v", res.Err)
	return ev
}

// placeBid delivers a NewIntentBid event and publishes the bid view
func (h *harness) placeBid(t *testing.T, intentUID, bidUID int64, amount *big.Int, proposer common.Address) *ethereum.NewIntentBidEvent {
	t.Helper()
	ev := &ethereum.NewIntentBidEvent{
		ChainID:         scroll,
		SourceChainID:   new(big.Int).SetUint64(sepolia),
		SourceIntentUID: big.NewInt(intentUID),
		BidUID:          big.NewInt(bidUID),
		AmountProposed:  amount,
		BlockNumber:     200 + uint64(bidUID),
	}
	h.views.setBid(bidUID, &ethereum.BidView{
		SourceChainID:  ev.SourceChainID,
		IntentUID:      ev.SourceIntentUID,
		AmountProposed: amount,
		Proposer:       proposer,
		Destination:    beneficiary,
		Forwarding:     proposer,
		Timestamp:      h.clock,
	})
	res := h.engine.HandleNewIntentBid(context.Background(), ev)
	require.NotEqual(t, lifecycle.OutcomeError, res.Outcome, "%v", res.Err)
	return ev
}

func (h *harness) intentState(t *testing.T, uid int64) intent.State {
	t.Helper()
	in, err := h.store.GetIntent(context.Background(), intent.NewIntentKey(sepolia, big.NewInt(uid)))
	require.NoError(t, err)
	return in.State
}

func (h *harness) bidState(t *testing.T, uid int64) intent.BidState {
	t.Helper()
	b, err := h.store.GetBid(context.Background(), intent.NewBidKey(scroll, big.NewInt(uid)))
	require.NoError(t, err)
	return b.State
}
