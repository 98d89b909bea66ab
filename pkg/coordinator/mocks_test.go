package coordinator

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
	"github.com/chainsafe/goldengate-middleware/pkg/watcher"
)

// MockStream delivers events pushed by the test. Each call to Stream starts a
// new session that ends on cancellation or on the next pushed failure.
type MockStream struct {
	chainID uint64
	event   string
	events  chan *watcher.Event
	fail    chan error

	mu     sync.Mutex
	starts []uint64

	ResumeBlockFunc func(ctx context.Context) (uint64, error)
}

func newMockStream(chainID uint64, event string) *MockStream {
	return &MockStream{
		chainID: chainID,
		event:   event,
		events:  make(chan *watcher.Event),
		fail:    make(chan error),
	}
}

func (m *MockStream) Event() string   { return m.event }
func (m *MockStream) ChainID() uint64 { return m.chainID }

func (m *MockStream) ResumeBlock(ctx context.Context) (uint64, error) {
	if m.ResumeBlockFunc != nil {
		return m.ResumeBlockFunc(ctx)
	}
	return 100, nil
}

func (m *MockStream) Stream(ctx context.Context, fromBlock uint64) (<-chan *watcher.Event, <-chan error) {
	m.mu.Lock()
	m.starts = append(m.starts, fromBlock)
	m.mu.Unlock()

	out := make(chan *watcher.Event)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-m.fail:
				errCh <- err
				return
			case ev := <-m.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errCh
}

func (m *MockStream) sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.starts)
}

// push hands ev to the running session
func (m *MockStream) push(ev *watcher.Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func (m *MockStream) breakStream(err error) bool {
	select {
	case m.fail <- err:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

// journal records calls from the engine and handlers in order
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// MockEngine records events and returns a fixed outcome. The first Failures
// events fail to record.
type MockEngine struct {
	log      *journal
	Outcome  lifecycle.Outcome
	Failures int

	mu sync.Mutex
}

func (m *MockEngine) result() lifecycle.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failures > 0 {
		m.Failures--
		return lifecycle.Result{Outcome: lifecycle.OutcomeError, Err: errors.New("connection reset")}
	}
	outcome := m.Outcome
	if outcome == "" {
		outcome = lifecycle.OutcomeApplied
	}
	return lifecycle.Result{Outcome: outcome}
}

func (m *MockEngine) HandleNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) lifecycle.Result {
	m.log.add("engine:intent:" + ev.IntentUID.String())
	return m.result()
}

func (m *MockEngine) HandleNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) lifecycle.Result {
	m.log.add("engine:bid:" + ev.BidUID.String())
	return m.result()
}

// MockActor records handled events and runs until cancelled
type MockActor struct {
	name string
	log  *journal
	Err  error

	runs    chan struct{}
	stopped chan struct{}
}

func newMockActor(name string, log *journal) *MockActor {
	return &MockActor{
		name:    name,
		log:     log,
		runs:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (m *MockActor) OnNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) error {
	m.log.add(m.name + ":intent:" + ev.IntentUID.String())
	return m.Err
}

func (m *MockActor) OnNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) error {
	m.log.add(m.name + ":bid:" + ev.BidUID.String())
	return m.Err
}

func (m *MockActor) Run(ctx context.Context) error {
	m.runs <- struct{}{}
	<-ctx.Done()
	close(m.stopped)
	return nil
}

// MockReconciler records its lifecycle
type MockReconciler struct {
	mu       sync.Mutex
	interval time.Duration
	stopped  bool
}

func (m *MockReconciler) StartPeriodicReconciliation(interval time.Duration) {
	m.mu.Lock()
	m.interval = interval
	m.mu.Unlock()
}

func (m *MockReconciler) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

type MockStopper struct {
	stopped bool
}

func (m *MockStopper) Stop() { m.stopped = true }

// MockSource serves a fixed set of intents below a fixed safe head
type MockSource struct {
	chainID uint64
	safe    uint64
	intents []*ethereum.NewIntentEvent
}

func (m *MockSource) ChainID() uint64 { return m.chainID }

func (m *MockSource) SafeBlock(ctx context.Context) (uint64, error) { return m.safe, nil }

func (m *MockSource) QueryNewIntents(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentEvent, error) {
	var out []*ethereum.NewIntentEvent
	for _, ev := range m.intents {
		if ev.BlockNumber >= from && ev.BlockNumber <= to {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockSource) QueryNewIntentBids(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentBidEvent, error) {
	return nil, nil
}

func intentEvent(chainID, uid, block uint64) *watcher.Event {
	return &watcher.Event{
		Kind:        ethereum.EventNewIntent,
		ChainID:     chainID,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Intent: &ethereum.NewIntentEvent{
			ChainID:            chainID,
			IntentUID:          new(big.Int).SetUint64(uid),
			AmountDeposited:    big.NewInt(1_000_000_000_000_000),
			MinAmountRecv:      big.NewInt(900_000_000_000_000),
			DestinationChainID: big.NewInt(534353),
			BlockNumber:        block,
		},
	}
}

func bidEvent(chainID, uid, block uint64) *watcher.Event {
	return &watcher.Event{
		Kind:        ethereum.EventNewIntentBid,
		ChainID:     chainID,
		BlockNumber: block,
		Bid: &ethereum.NewIntentBidEvent{
			ChainID:         chainID,
			SourceChainID:   big.NewInt(11155111),
			SourceIntentUID: big.NewInt(1),
			BidUID:          new(big.Int).SetUint64(uid),
			AmountProposed:  big.NewInt(950_000_000_000_000),
			BlockNumber:     block,
		},
	}
}
