package intentstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

type memIntent struct {
	rec *intent.Intent
	seq uint64
}

type memBid struct {
	rec *intent.Bid
	seq uint64
}

type memoryStore struct {
	mu      sync.RWMutex
	seq     uint64
	intents map[intent.IntentKey]*memIntent
	bids    map[intent.BidKey]*memBid

	locksMu sync.Mutex
	locks   map[intent.IntentKey]*sync.Mutex
}

// NewMemoryStore creates an in-memory store. Mutations of one intent and its bids
// are serialized through WithIntentLock; different intents proceed in parallel.
func NewMemoryStore() Store {
	return &memoryStore{
		intents: make(map[intent.IntentKey]*memIntent),
		bids:    make(map[intent.BidKey]*memBid),
		locks:   make(map[intent.IntentKey]*sync.Mutex),
	}
}

func (m *memoryStore) GetIntent(_ context.Context, key intent.IntentKey) (*intent.Intent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.intents[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", intent.ErrIntentNotFound, key)
	}
	return e.rec.Clone(), nil
}

func (m *memoryStore) GetBid(_ context.Context, key intent.BidKey) (*intent.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.bids[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", intent.ErrBidNotFound, key)
	}
	return e.rec.Clone(), nil
}

func (m *memoryStore) ListBidsForIntent(_ context.Context, key intent.IntentKey) ([]*intent.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*memBid
	for _, e := range m.bids {
		if e.rec.Intent == key {
			out = append(out, e)
		}
	}
	return sortBids(out, 0), nil
}

func (m *memoryStore) ListIntents(_ context.Context, opts ...QueryOption) ([]*intent.Intent, error) {
	options := buildOptions(opts)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*memIntent
	for _, e := range m.intents {
		if matchIntent(e.rec, options) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	if options.Limit > 0 && len(matched) > options.Limit {
		matched = matched[:options.Limit]
	}
	out := make([]*intent.Intent, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.rec.Clone())
	}
	return out, nil
}

func (m *memoryStore) ListBids(_ context.Context, opts ...QueryOption) ([]*intent.Bid, error) {
	options := buildOptions(opts)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*memBid
	for _, e := range m.bids {
		if matchBid(e.rec, options) {
			matched = append(matched, e)
		}
	}
	return sortBids(matched, options.Limit), nil
}

func (m *memoryStore) UpsertIntent(_ context.Context, in *intent.Intent) (bool, error) {
	next := in.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	e, ok := m.intents[next.Key]
	if !ok {
		if err := intent.ValidateIntentUpdate(nil, next); err != nil {
			return false, err
		}
		next.CreatedAt, next.UpdatedAt = now, now
		m.seq++
		m.intents[next.Key] = &memIntent{rec: next, seq: m.seq}
		return true, nil
	}

	mergeIntent(e.rec, next)
	if err := intent.ValidateIntentUpdate(e.rec, next); err != nil {
		return false, err
	}
	if sameIntent(e.rec, next) {
		return false, nil
	}
	next.UpdatedAt = now
	e.rec = next
	return true, nil
}

func (m *memoryStore) UpsertBid(_ context.Context, b *intent.Bid) (bool, error) {
	next := b.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	e, ok := m.bids[next.Key]
	if !ok {
		if err := intent.ValidateBidUpdate(nil, next); err != nil {
			return false, err
		}
		next.CreatedAt, next.UpdatedAt = now, now
		m.seq++
		m.bids[next.Key] = &memBid{rec: next, seq: m.seq}
		return true, nil
	}

	mergeBid(e.rec, next)
	if err := intent.ValidateBidUpdate(e.rec, next); err != nil {
		return false, err
	}
	if sameBid(e.rec, next) {
		return false, nil
	}
	next.UpdatedAt = now
	e.rec = next
	return true, nil
}

func (m *memoryStore) RollbackIntent(_ context.Context, in *intent.Intent) error {
	next := in.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.intents[next.Key]
	if !ok {
		return fmt.Errorf("%w: %s", intent.ErrIntentNotFound, next.Key)
	}
	mergeIntent(e.rec, next)
	if err := intent.ValidateIntentRollback(e.rec, next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	e.rec = next
	return nil
}

func (m *memoryStore) RollbackBid(_ context.Context, b *intent.Bid) error {
	next := b.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.bids[next.Key]
	if !ok {
		return fmt.Errorf("%w: %s", intent.ErrBidNotFound, next.Key)
	}
	mergeBid(e.rec, next)
	if err := intent.ValidateBidRollback(e.rec, next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	e.rec = next
	return nil
}

func (m *memoryStore) WithIntentLock(ctx context.Context, key intent.IntentKey, fn func(ctx context.Context, s Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.locksMu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.locksMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx, m)
}

// sortBids orders bids by block, then arrival
func sortBids(bids []*memBid, limit int) []*intent.Bid {
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].rec.Block != bids[j].rec.Block {
			return bids[i].rec.Block < bids[j].rec.Block
		}
		return bids[i].seq < bids[j].seq
	})
	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}
	out := make([]*intent.Bid, 0, len(bids))
	for _, e := range bids {
		out = append(out, e.rec.Clone())
	}
	return out
}

func matchIntent(in *intent.Intent, o *QueryOptions) bool {
	if o.ChainID != nil && in.Key.ChainID != *o.ChainID {
		return false
	}
	if o.Destination != nil && in.DestinationChainID != *o.Destination {
		return false
	}
	if o.Owner != nil && in.Owner != *o.Owner {
		return false
	}
	if len(o.States) > 0 {
		found := false
		for _, s := range o.States {
			if in.State == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchBid(b *intent.Bid, o *QueryOptions) bool {
	if o.ChainID != nil && b.Key.ChainID != *o.ChainID {
		return false
	}
	if o.Proposer != nil && b.Proposer != *o.Proposer {
		return false
	}
	if len(o.BidStates) > 0 {
		found := false
		for _, s := range o.BidStates {
			if b.State == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
