package ethereum

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// NonceSource reports the next nonce the node expects for an account
type NonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceStore persists the last nonce handed out per chain and account so a
// restarted process does not reuse nonces of transactions still in the mempool.
type NonceStore interface {
	GetNonce(ctx context.Context, chainID uint64, address string) (nonce uint64, found bool, err error)
	SetNonce(ctx context.Context, chainID uint64, address string, nonce uint64) error
}

// NonceManager allocates account nonces for one chain. Submissions for the same
// account are serialized; different accounts proceed in parallel.
type NonceManager struct {
	chainID uint64
	source  NonceSource
	store   NonceStore
	logger  *zap.Logger

	mu       sync.Mutex
	accounts map[common.Address]*accountNonce
}

type accountNonce struct {
	mu    sync.Mutex
	next  uint64
	valid bool
}

// NewNonceManager creates a nonce manager. store may be nil.
func NewNonceManager(chainID uint64, source NonceSource, store NonceStore, logger *zap.Logger) *NonceManager {
	return &NonceManager{
		chainID:  chainID,
		source:   source,
		store:    store,
		logger:   logger,
		accounts: make(map[common.Address]*accountNonce),
	}
}

func (m *NonceManager) account(addr common.Address) *accountNonce {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[addr]
	if !ok {
		a = &accountNonce{}
		m.accounts[addr] = a
	}
	return a
}

// WithNonce runs send with the next nonce of addr while holding the account lock.
// The nonce is consumed only if send succeeds. A stale nonce triggers one refresh
// from the node and a single retry.
func (m *NonceManager) WithNonce(ctx context.Context, addr common.Address, send func(nonce uint64) error) error {
	a := m.account(addr)
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.valid {
		if err := m.sync(ctx, addr, a, true); err != nil {
			return err
		}
	}

	err := send(a.next)
	if errors.Is(err, ErrStaleNonce) {
		m.logger.Warn("Stale nonce, refreshing from chain",
			zap.String("address", addr.Hex()),
			zap.Uint64("nonce", a.next),
			zap.Error(err))
		if serr := m.sync(ctx, addr, a, false); serr != nil {
			return serr
		}
		err = send(a.next)
	}
	if err != nil {
		if IsTransport(err) {
			// the transaction may have reached the mempool
			a.valid = false
		}
		return err
	}

	used := a.next
	a.next++
	if m.store != nil {
		if serr := m.store.SetNonce(ctx, m.chainID, addr.Hex(), used); serr != nil {
			m.logger.Warn("Failed to persist nonce",
				zap.String("address", addr.Hex()),
				zap.Error(serr))
		}
	}
	return nil
}

// Reset forgets the cached nonce of addr so the next allocation reads it from the node
func (m *NonceManager) Reset(addr common.Address) {
	a := m.account(addr)
	a.mu.Lock()
	a.valid = false
	a.mu.Unlock()
}

// sync loads the pending nonce from the node. On first use the persisted value is
// also consulted and the larger of the two wins.
func (m *NonceManager) sync(ctx context.Context, addr common.Address, a *accountNonce, usePersisted bool) error {
	pending, err := m.source.PendingNonceAt(ctx, addr)
	if err != nil {
		return classify("PendingNonceAt", err)
	}
	next := pending

	if usePersisted && m.store != nil {
		last, found, err := m.store.GetNonce(ctx, m.chainID, addr.Hex())
		if err != nil {
			return fmt.Errorf("failed to load persisted nonce: %w", err)
		}
		if found && last+1 > next {
			next = last + 1
		}
	}

	a.next = next
	a.valid = true
	return nil
}
