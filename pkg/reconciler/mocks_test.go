package reconciler

import (
	"context"
	"math/big"
	"sync"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
)

// MockViewSource is a func-field ViewSource counting its reads
type MockViewSource struct {
	mu          sync.Mutex
	intentReads []string
	bidReads    []string

	GetIntentFunc func(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error)
	GetBidFunc    func(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error)
}

func (m *MockViewSource) GetIntent(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error) {
	m.mu.Lock()
	m.intentReads = append(m.intentReads, intentUID.String())
	m.mu.Unlock()
	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, intentUID)
	}
	return &ethereum.IntentView{}, nil
}

func (m *MockViewSource) GetBid(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error) {
	m.mu.Lock()
	m.bidReads = append(m.bidReads, bidUID.String())
	m.mu.Unlock()
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, bidUID)
	}
	return &ethereum.BidView{}, nil
}

func (m *MockViewSource) reads() (intents, bids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.intentReads...), append([]string(nil), m.bidReads...)
}
