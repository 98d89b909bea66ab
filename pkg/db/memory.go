package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type chainStateKey struct {
	chainID uint64
	event   string
}

type nonceKey struct {
	chainID uint64
	address string
}

// MemoryStore is the Store used when the database is disabled. State is lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	chainStates map[chainStateKey]ChainState
	nonces      map[nonceKey]uint64
	submissions map[string]*Submission
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chainStates: make(map[chainStateKey]ChainState),
		nonces:      make(map[nonceKey]uint64),
		submissions: make(map[string]*Submission),
	}
}

func (m *MemoryStore) GetChainState(_ context.Context, chainID uint64, event string) (*ChainState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.chainStates[chainStateKey{chainID, event}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (m *MemoryStore) SetChainState(_ context.Context, chainID uint64, event string, block uint64, blockHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chainStates[chainStateKey{chainID, event}] = ChainState{
		ChainID:       chainID,
		Event:         event,
		LastBlock:     block,
		LastBlockHash: blockHash,
		UpdatedAt:     time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) GetNonce(_ context.Context, chainID uint64, address string) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nonces[nonceKey{chainID, address}]
	return n, ok, nil
}

func (m *MemoryStore) SetNonce(_ context.Context, chainID uint64, address string, nonce uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := nonceKey{chainID, address}
	if cur, ok := m.nonces[k]; !ok || nonce > cur {
		m.nonces[k] = nonce
	}
	return nil
}

func (m *MemoryStore) CreateSubmission(_ context.Context, sub *Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	c := *sub
	m.submissions[sub.ID] = &c
	return nil
}

func (m *MemoryStore) UpdateSubmission(_ context.Context, id string, status SubmissionStatus, txHash, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return ErrSubmissionNotFound
	}
	sub.Status = status
	sub.TxHash = txHash
	sub.Error = errMsg
	sub.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListSubmissions(_ context.Context, f SubmissionFilter) ([]*Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		if f.ChainID != 0 && s.ChainID != f.ChainID {
			continue
		}
		if f.IntentUID != "" && s.IntentUID != f.IntentUID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
