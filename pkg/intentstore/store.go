// Package intentstore keeps the coordinator's view of intents and bids.
package intentstore

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

// Reader defines the read side of the store
type Reader interface {
	GetIntent(ctx context.Context, key intent.IntentKey) (*intent.Intent, error)
	GetBid(ctx context.Context, key intent.BidKey) (*intent.Bid, error)
	ListBidsForIntent(ctx context.Context, key intent.IntentKey) ([]*intent.Bid, error)
	ListIntents(ctx context.Context, opts ...QueryOption) ([]*intent.Intent, error)
	ListBids(ctx context.Context, opts ...QueryOption) ([]*intent.Bid, error)
}

// Store defines intent and bid persistence.
//
// Upserts are idempotent: writing a record equal to the stored one reports
// changed=false. A write that implies an illegal change returns an error
// wrapping intent.ErrInvariantViolation and leaves the stored record untouched.
type Store interface {
	Reader
	UpsertIntent(ctx context.Context, in *intent.Intent) (changed bool, err error)
	UpsertBid(ctx context.Context, b *intent.Bid) (changed bool, err error)
	// RollbackIntent and RollbackBid undo a transition the chain never confirmed.
	// Only the moves intent.ValidateIntentRollback and intent.ValidateBidRollback
	// allow are accepted.
	RollbackIntent(ctx context.Context, in *intent.Intent) error
	RollbackBid(ctx context.Context, b *intent.Bid) error
	// WithIntentLock runs fn while holding the lock of one intent. fn must use the
	// Store it is given; it must not take the lock of another intent.
	WithIntentLock(ctx context.Context, key intent.IntentKey, fn func(ctx context.Context, s Store) error) error
}

// QueryOptions defines options for listing intents and bids
type QueryOptions struct {
	ChainID     *uint64
	States      []intent.State
	BidStates   []intent.BidState
	Owner       *common.Address
	Proposer    *common.Address
	Limit       int
	Destination *uint64
}

// QueryOption is a functional option for listing intents and bids
type QueryOption func(*QueryOptions)

// WithChainID filters by the chain the record lives on
func WithChainID(chainID uint64) QueryOption {
	return func(opts *QueryOptions) {
		opts.ChainID = &chainID
	}
}

// WithDestinationChainID filters intents by destination chain
func WithDestinationChainID(chainID uint64) QueryOption {
	return func(opts *QueryOptions) {
		opts.Destination = &chainID
	}
}

// WithStates filters intents by state
func WithStates(states ...intent.State) QueryOption {
	return func(opts *QueryOptions) {
		opts.States = append(opts.States, states...)
	}
}

// WithBidStates filters bids by state
func WithBidStates(states ...intent.BidState) QueryOption {
	return func(opts *QueryOptions) {
		opts.BidStates = append(opts.BidStates, states...)
	}
}

// WithOwner filters intents by owner
func WithOwner(owner common.Address) QueryOption {
	return func(opts *QueryOptions) {
		opts.Owner = &owner
	}
}

// WithProposer filters bids by proposer
func WithProposer(proposer common.Address) QueryOption {
	return func(opts *QueryOptions) {
		opts.Proposer = &proposer
	}
}

// WithLimit caps the number of returned records
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}

func buildOptions(opts []QueryOption) *QueryOptions {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func sameIntent(a, b *intent.Intent) bool {
	if (a.AcceptedBid == nil) != (b.AcceptedBid == nil) {
		return false
	}
	if a.AcceptedBid != nil && *a.AcceptedBid != *b.AcceptedBid {
		return false
	}
	return a.Key == b.Key &&
		a.State == b.State &&
		a.Owner == b.Owner &&
		a.Fulfiller == b.Fulfiller &&
		a.Amount.Cmp(b.Amount) == 0 &&
		a.MinAmountRecv.Cmp(b.MinAmountRecv) == 0 &&
		a.DestinationChainID == b.DestinationChainID &&
		a.Beneficiary == b.Beneficiary &&
		a.SourceBlock == b.SourceBlock &&
		a.SourceTxHash == b.SourceTxHash &&
		a.Timestamp.Unix() == b.Timestamp.Unix()
}

func sameBid(a, b *intent.Bid) bool {
	return a.Key == b.Key &&
		a.Intent == b.Intent &&
		a.State == b.State &&
		a.AmountProposed.Cmp(b.AmountProposed) == 0 &&
		a.Proposer == b.Proposer &&
		a.Destination == b.Destination &&
		a.Forwarding == b.Forwarding &&
		a.Block == b.Block &&
		a.TxHash == b.TxHash &&
		a.Timestamp.Unix() == b.Timestamp.Unix()
}

// mergeIntent fills zero-valued provenance fields of next from prev so callers
// can upsert partial observations without erasing what is already known.
func mergeIntent(prev, next *intent.Intent) {
	if next.SourceBlock == 0 {
		next.SourceBlock = prev.SourceBlock
	}
	if next.SourceTxHash == (common.Hash{}) {
		next.SourceTxHash = prev.SourceTxHash
	}
	if next.Timestamp.IsZero() {
		next.Timestamp = prev.Timestamp
	}
	if next.Owner == (common.Address{}) {
		next.Owner = prev.Owner
	}
	next.CreatedAt = prev.CreatedAt
}

func mergeBid(prev, next *intent.Bid) {
	if next.Block == 0 {
		next.Block = prev.Block
	}
	if next.TxHash == (common.Hash{}) {
		next.TxHash = prev.TxHash
	}
	if next.Timestamp.IsZero() {
		next.Timestamp = prev.Timestamp
	}
	if next.Proposer == (common.Address{}) {
		next.Proposer = prev.Proposer
	}
	if next.Destination == (common.Address{}) {
		next.Destination = prev.Destination
	}
	if next.Forwarding == (common.Address{}) {
		next.Forwarding = prev.Forwarding
	}
	next.CreatedAt = prev.CreatedAt
}
