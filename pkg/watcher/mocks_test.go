package watcher

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
)

// MockSource serves a fixed set of events and a movable safe head
type MockSource struct {
	mu      sync.Mutex
	chainID uint64
	safe    uint64
	intents []*ethereum.NewIntentEvent
	bids    []*ethereum.NewIntentBidEvent
	ranges  [][2]uint64

	SafeBlockErr error
	QueryErr     error
}

func (m *MockSource) ChainID() uint64 { return m.chainID }

func (m *MockSource) SafeBlock(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SafeBlockErr != nil {
		return 0, m.SafeBlockErr
	}
	return m.safe, nil
}

func (m *MockSource) setSafe(b uint64) {
	m.mu.Lock()
	m.safe = b
	m.mu.Unlock()
}

func (m *MockSource) QueryNewIntents(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.ranges = append(m.ranges, [2]uint64{from, to})
	var out []*ethereum.NewIntentEvent
	for _, ev := range m.intents {
		if ev.BlockNumber >= from && ev.BlockNumber <= to {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockSource) QueryNewIntentBids(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentBidEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.ranges = append(m.ranges, [2]uint64{from, to})
	var out []*ethereum.NewIntentBidEvent
	for _, ev := range m.bids {
		if ev.BlockNumber >= from && ev.BlockNumber <= to {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockSource) queried() [][2]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][2]uint64(nil), m.ranges...)
}

func intentEvent(chainID uint64, uid int64, block uint64, logIndex uint) *ethereum.NewIntentEvent {
	return &ethereum.NewIntentEvent{
		ChainID:            chainID,
		IntentUID:          big.NewInt(uid),
		AmountDeposited:    big.NewInt(1000),
		MinAmountRecv:      big.NewInt(900),
		DestinationChainID: big.NewInt(534353),
		Beneficiary:        common.HexToAddress("0xb1"),
		BlockNumber:        block,
		TxHash:             common.BigToHash(big.NewInt(int64(block))),
		LogIndex:           logIndex,
	}
}

func bidEvent(chainID uint64, intentUID, bidUID int64, block uint64) *ethereum.NewIntentBidEvent {
	return &ethereum.NewIntentBidEvent{
		ChainID:         chainID,
		SourceChainID:   big.NewInt(11155111),
		SourceIntentUID: big.NewInt(intentUID),
		BidUID:          big.NewInt(bidUID),
		AmountProposed:  big.NewInt(950),
		BlockNumber:     block,
	}
}
