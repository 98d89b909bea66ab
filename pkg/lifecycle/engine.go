// Package lifecycle applies contract events and actor decisions to the intent
// store, enforcing the intent and bid state machines.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
)

// Operation names used in logs and metrics
const (
	OpHandleNewIntent    = "handle_new_intent"
	OpHandleNewIntentBid = "handle_new_intent_bid"
	OpProposeSolution    = "propose_solution"
	OpAcceptBid          = "accept_bid"
	OpSettle             = "settle"
	OpWithdrawBid        = "withdraw_bid"
	OpRejectBids         = "reject_bids"
	OpReleaseFunds       = "release_funds"
	OpObserveIntent      = "observe_intent"
	OpObserveBid         = "observe_bid"
	OpReopenIntent       = "reopen_intent"
)

// Proposal is a solver's offer for an open intent
type Proposal struct {
	// Amount is deposited on the destination chain and paid to Destination on settlement
	Amount      *big.Int
	Destination common.Address
	// Forwarding receives the intent deposit on the source chain
	Forwarding common.Address
}

// Engine is the single writer of intent and bid records. Every operation runs
// under the lock of the intent it concerns.
type Engine struct {
	store  intentstore.Store
	logger *zap.Logger
}

// NewEngine creates a lifecycle engine on top of store
func NewEngine(store intentstore.Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Store returns the read side of the underlying store
func (e *Engine) Store() intentstore.Reader {
	return e.store
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", intent.ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func bigUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// locked runs fn under the intent lock. A non-nil error from fn is returned to
// the store; the Postgres store rolls the transaction back, the memory store
// keeps writes made before the error.
func (e *Engine) locked(ctx context.Context, op string, key intent.IntentKey, fn func(ctx context.Context, s intentstore.Store) (Result, error)) Result {
	var res Result
	err := e.store.WithIntentLock(ctx, key, func(ctx context.Context, s intentstore.Store) error {
		var ferr error
		res, ferr = fn(ctx, s)
		return ferr
	})
	if err != nil && res.Outcome == "" {
		res = failed(err)
	}
	e.record(op, key, res)
	return res
}

func (e *Engine) record(op string, key intent.IntentKey, res Result) {
	metrics.TransitionsTotal.WithLabelValues(op, string(res.Outcome)).Inc()
	fields := []zap.Field{
		zap.String("operation", op),
		zap.Uint64("chain_id", key.ChainID),
		zap.String("intent_uid", key.UID),
		zap.String("outcome", string(res.Outcome)),
	}
	switch res.Outcome {
	case OutcomeApplied:
		e.logger.Info("Lifecycle operation applied", append(fields, zap.Int("actions", len(res.Actions)))...)
	case OutcomeDuplicate:
		e.logger.Debug("Lifecycle operation already applied", fields...)
	case OutcomeInvariant:
		e.logger.Warn("Lifecycle operation rejected", append(fields, zap.Error(res.Err))...)
	default:
		metrics.ErrorsTotal.WithLabelValues("lifecycle", op).Inc()
		e.logger.Error("Lifecycle operation failed", append(fields, zap.Error(res.Err))...)
	}
}

// getIntent loads an intent, mapping a missing record onto an invariant rejection
func getIntent(ctx context.Context, s intentstore.Store, key intent.IntentKey) (*intent.Intent, Result, bool) {
	in, err := s.GetIntent(ctx, key)
	if errors.Is(err, intent.ErrIntentNotFound) {
		return nil, rejected(violation("intent %s is not known", key)), false
	}
	if err != nil {
		return nil, failed(err), false
	}
	return in, Result{}, true
}

func getBid(ctx context.Context, s intentstore.Store, key intent.BidKey) (*intent.Bid, Result, bool) {
	b, err := s.GetBid(ctx, key)
	if errors.Is(err, intent.ErrBidNotFound) {
		return nil, rejected(violation("bid %s is not known", key)), false
	}
	if err != nil {
		return nil, failed(err), false
	}
	return b, Result{}, true
}

// HandleNewIntent records an intent announced by a NewIntent event
func (e *Engine) HandleNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) Result {
	key := intent.NewIntentKey(ev.ChainID, ev.IntentUID)
	res := e.locked(ctx, OpHandleNewIntent, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		if ev.DestinationChainID == nil || !ev.DestinationChainID.IsUint64() {
			return rejected(violation("intent %s has invalid destination chain", key)), nil
		}
		next := &intent.Intent{
			Key:                key,
			Amount:             ev.AmountDeposited,
			MinAmountRecv:      ev.MinAmountRecv,
			DestinationChainID: ev.DestinationChainID.Uint64(),
			Beneficiary:        ev.Beneficiary,
			State:              intent.StateOpen,
			SourceBlock:        ev.BlockNumber,
			SourceTxHash:       ev.TxHash,
		}
		if err := intent.CheckIntent(next); err != nil {
			return rejected(err), nil
		}

		prev, err := s.GetIntent(ctx, key)
		switch {
		case err == nil:
			if prev.Amount.Cmp(next.Amount) != 0 ||
				prev.MinAmountRecv.Cmp(next.MinAmountRecv) != 0 ||
				prev.DestinationChainID != next.DestinationChainID ||
				prev.Beneficiary != next.Beneficiary {
				return rejected(violation("intent %s redelivered with different attributes", key)), nil
			}
			if prev.SourceBlock == 0 && next.SourceBlock != 0 {
				prev.SourceBlock, prev.SourceTxHash = next.SourceBlock, next.SourceTxHash
				if _, err := s.UpsertIntent(ctx, prev); err != nil {
					return fromError(err), err
				}
			}
			return duplicate(), nil
		case !errors.Is(err, intent.ErrIntentNotFound):
			return failed(err), err
		}

		if _, err := s.UpsertIntent(ctx, next); err != nil {
			return fromError(err), err
		}
		orphans, err := s.ListBidsForIntent(ctx, key)
		if err != nil {
			return failed(err), err
		}
		if _, err := e.adoptBids(ctx, s, next, orphans); err != nil {
			return fromError(err), err
		}
		return applied(), nil
	})
	metrics.EventsTotal.WithLabelValues(chainLabel(ev.ChainID), ethereum.EventNewIntent, string(res.Outcome)).Inc()
	return res
}

// HandleNewIntentBid records a bid announced by a NewIntentBid event. A bid for an
// intent not seen yet is stored as proposed; a bid for an intent that is no longer
// open is stored as rejected.
func (e *Engine) HandleNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) Result {
	if ev.SourceChainID == nil || !ev.SourceChainID.IsUint64() {
		res := rejected(violation("bid %s has invalid source chain", ev.BidUID))
		metrics.EventsTotal.WithLabelValues(chainLabel(ev.ChainID), ethereum.EventNewIntentBid, string(res.Outcome)).Inc()
		return res
	}
	intentKey := intent.NewIntentKey(ev.SourceChainID.Uint64(), ev.SourceIntentUID)
	bidKey := intent.NewBidKey(ev.ChainID, ev.BidUID)

	res := e.locked(ctx, OpHandleNewIntentBid, intentKey, func(ctx context.Context, s intentstore.Store) (Result, error) {
		next := &intent.Bid{
			Key:            bidKey,
			Intent:         intentKey,
			AmountProposed: ev.AmountProposed,
			State:          intent.BidProposed,
			Block:          ev.BlockNumber,
			TxHash:         ev.TxHash,
		}
		if err := intent.CheckBid(next); err != nil {
			return rejected(err), nil
		}

		prev, err := s.GetBid(ctx, bidKey)
		switch {
		case err == nil:
			if prev.Intent != intentKey || prev.AmountProposed.Cmp(next.AmountProposed) != 0 {
				return rejected(violation("bid %s redelivered with different attributes", bidKey)), nil
			}
			if prev.Block == 0 && next.Block != 0 {
				// learned from a contract view first
				prev.Block, prev.TxHash = next.Block, next.TxHash
				if _, err := s.UpsertBid(ctx, prev); err != nil {
					return fromError(err), err
				}
			}
			return duplicate(), nil
		case !errors.Is(err, intent.ErrBidNotFound):
			return failed(err), err
		}

		in, err := s.GetIntent(ctx, intentKey)
		if err != nil && !errors.Is(err, intent.ErrIntentNotFound) {
			return failed(err), err
		}
		var outcome Result
		if in != nil {
			if in.DestinationChainID != bidKey.ChainID {
				return rejected(violation("bid %s on chain %d but intent %s targets chain %d",
					bidKey, bidKey.ChainID, intentKey, in.DestinationChainID)), nil
			}
			if in.State != intent.StateOpen {
				// keep the record so the solver can withdraw it
				next.State = intent.BidRejected
				outcome = rejected(violation("bid %s arrived for intent %s in state %s", bidKey, intentKey, in.State))
			}
		}

		if _, err := s.UpsertBid(ctx, next); err != nil {
			return fromError(err), err
		}
		if outcome.Outcome != "" {
			return outcome, nil
		}
		return applied(), nil
	})
	metrics.EventsTotal.WithLabelValues(chainLabel(ev.ChainID), ethereum.EventNewIntentBid, string(res.Outcome)).Inc()
	return res
}

// ProposeSolution produces the proposeNativeSolution call for an open intent.
// The bid itself is recorded when its NewIntentBid event is observed.
func (e *Engine) ProposeSolution(ctx context.Context, key intent.IntentKey, p Proposal) Result {
	return e.locked(ctx, OpProposeSolution, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, key)
		if !ok {
			return res, nil
		}
		if in.State != intent.StateOpen {
			return rejected(violation("intent %s is %s, not open", key, in.State)), nil
		}
		if p.Amount == nil || p.Amount.Sign() <= 0 {
			return rejected(violation("proposal for intent %s has no amount", key)), nil
		}
		return applied(Action{
			ChainID: in.DestinationChainID,
			Call: ethereum.ProposeNativeSolutionCall(
				p.Amount, bigUint(key.ChainID), key.UIDInt(), p.Destination, p.Forwarding),
			Intent: key,
		}), nil
	})
}

// AcceptBid accepts bidKey for intentKey. The intent takes the bid's proposer as
// fulfiller and every other proposed bid of the intent is rejected.
func (e *Engine) AcceptBid(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) Result {
	return e.locked(ctx, OpAcceptBid, intentKey, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, intentKey)
		if !ok {
			return res, nil
		}
		if in.AcceptedBid != nil {
			if *in.AcceptedBid == bidKey {
				return duplicate(), nil
			}
			return rejected(violation("intent %s already accepted bid %s", intentKey, in.AcceptedBid)), nil
		}
		if in.State != intent.StateOpen {
			return rejected(violation("intent %s is %s, not open", intentKey, in.State)), nil
		}
		bid, res, ok := getBid(ctx, s, bidKey)
		if !ok {
			return res, nil
		}
		if bid.State != intent.BidProposed {
			return rejected(violation("bid %s is %s, not proposed", bidKey, bid.State)), nil
		}
		if err := intent.CheckAcceptance(in, bid); err != nil {
			return rejected(err), nil
		}

		if err := acceptLocked(ctx, s, in, bid); err != nil {
			return fromError(err), err
		}
		return applied(Action{
			ChainID: intentKey.ChainID,
			Call:    ethereum.AcceptBidCall(bidKey.UIDInt(), intentKey.UIDInt()),
			Intent:  intentKey,
			Bid:     &bidKey,
		}), nil
	})
}

// acceptLocked writes the acceptance of bid for in and rejects the siblings
func acceptLocked(ctx context.Context, s intentstore.Store, in *intent.Intent, bid *intent.Bid) error {
	siblings, err := s.ListBidsForIntent(ctx, in.Key)
	if err != nil {
		return err
	}

	in.State = intent.StateBidAccepted
	in.Fulfiller = bid.Proposer
	key := bid.Key
	in.AcceptedBid = &key
	if _, err := s.UpsertIntent(ctx, in); err != nil {
		return err
	}

	bid.State = intent.BidAccepted
	if _, err := s.UpsertBid(ctx, bid); err != nil {
		return err
	}
	return rejectProposed(ctx, s, siblings, bid.Key)
}

// rejectProposed moves every proposed bid except keep to rejected
func rejectProposed(ctx context.Context, s intentstore.Store, bids []*intent.Bid, keep intent.BidKey) error {
	for _, b := range bids {
		if b.Key == keep || b.State != intent.BidProposed {
			continue
		}
		b.State = intent.BidRejected
		if _, err := s.UpsertBid(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Settle executes the accepted bid of an intent and marks the intent fulfilled
func (e *Engine) Settle(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) Result {
	return e.locked(ctx, OpSettle, intentKey, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, intentKey)
		if !ok {
			return res, nil
		}
		if in.AcceptedBid == nil || *in.AcceptedBid != bidKey {
			return rejected(violation("bid %s is not the accepted bid of intent %s", bidKey, intentKey)), nil
		}
		bid, res, ok := getBid(ctx, s, bidKey)
		if !ok {
			return res, nil
		}
		if in.State == intent.StateFulfilled && bid.State == intent.BidExecuted {
			return duplicate(), nil
		}
		if in.State != intent.StateBidAccepted || bid.State != intent.BidAccepted {
			return rejected(violation("intent %s (%s) with bid %s (%s) cannot settle",
				intentKey, in.State, bidKey, bid.State)), nil
		}

		bid.State = intent.BidExecuted
		if _, err := s.UpsertBid(ctx, bid); err != nil {
			return fromError(err), err
		}
		in.State = intent.StateFulfilled
		if _, err := s.UpsertIntent(ctx, in); err != nil {
			return fromError(err), err
		}
		return applied(Action{
			ChainID: bidKey.ChainID,
			Call:    ethereum.SettleNativeIntentCall(bigUint(intentKey.ChainID), intentKey.UIDInt(), bidKey.UIDInt()),
			Intent:  intentKey,
			Bid:     &bidKey,
		}), nil
	})
}

// WithdrawBid withdraws a bid that was not accepted
func (e *Engine) WithdrawBid(ctx context.Context, bidKey intent.BidKey) Result {
	bid, err := e.store.GetBid(ctx, bidKey)
	if err != nil {
		res := fromError(err)
		if errors.Is(err, intent.ErrBidNotFound) {
			res = rejected(violation("bid %s is not known", bidKey))
		}
		e.record(OpWithdrawBid, intent.IntentKey{}, res)
		return res
	}

	return e.locked(ctx, OpWithdrawBid, bid.Intent, func(ctx context.Context, s intentstore.Store) (Result, error) {
		bid, res, ok := getBid(ctx, s, bidKey)
		if !ok {
			return res, nil
		}
		switch bid.State {
		case intent.BidWithdrawn:
			return duplicate(), nil
		case intent.BidProposed, intent.BidRejected:
		default:
			return rejected(violation("bid %s is %s and cannot be withdrawn", bidKey, bid.State)), nil
		}

		bid.State = intent.BidWithdrawn
		if _, err := s.UpsertBid(ctx, bid); err != nil {
			return fromError(err), err
		}
		return applied(Action{
			ChainID: bidKey.ChainID,
			Call:    ethereum.WithdrawNativeBidCall(bidKey.UIDInt()),
			Intent:  bid.Intent,
			Bid:     &bidKey,
		}), nil
	})
}

// RejectBids returns an open intent to its owner and rejects its proposed bids
func (e *Engine) RejectBids(ctx context.Context, key intent.IntentKey) Result {
	return e.locked(ctx, OpRejectBids, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, key)
		if !ok {
			return res, nil
		}
		switch in.State {
		case intent.StateReturned:
			return duplicate(), nil
		case intent.StateOpen:
		default:
			return rejected(violation("intent %s is %s, not open", key, in.State)), nil
		}

		if err := returnLocked(ctx, s, in); err != nil {
			return fromError(err), err
		}
		return applied(Action{
			ChainID: key.ChainID,
			Call:    ethereum.RejectBidsCall(key.UIDInt()),
			Intent:  key,
		}), nil
	})
}

func returnLocked(ctx context.Context, s intentstore.Store, in *intent.Intent) error {
	bids, err := s.ListBidsForIntent(ctx, in.Key)
	if err != nil {
		return err
	}
	in.State = intent.StateReturned
	if _, err := s.UpsertIntent(ctx, in); err != nil {
		return err
	}
	return rejectProposed(ctx, s, bids, intent.BidKey{})
}

// ReleaseFunds produces the call that releases a fulfilled intent's deposit on the
// source chain to the settler's destination address. No record changes.
func (e *Engine) ReleaseFunds(ctx context.Context, key intent.IntentKey, destination common.Address) Result {
	return e.locked(ctx, OpReleaseFunds, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, key)
		if !ok {
			return res, nil
		}
		if in.State != intent.StateFulfilled {
			return rejected(violation("intent %s is %s, not fulfilled", key, in.State)), nil
		}
		if destination == (common.Address{}) {
			return rejected(violation("release of intent %s has no destination", key)), nil
		}
		return applied(Action{
			ChainID: key.ChainID,
			Call:    ethereum.ReleaseFundsCall(key.UIDInt(), destination),
			Intent:  key,
		}), nil
	})
}

func chainLabel(chainID uint64) string {
	return fmt.Sprintf("%d", chainID)
}
