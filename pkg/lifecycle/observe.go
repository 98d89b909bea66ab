package lifecycle

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
)

// chainState maps a contract view onto the intent state machine
func chainState(v *ethereum.IntentView) intent.State {
	switch {
	case v.Returned:
		return intent.StateReturned
	case v.Executed:
		return intent.StateFulfilled
	case v.Fulfiller != (common.Address{}):
		return intent.StateBidAccepted
	default:
		return intent.StateOpen
	}
}

// rank orders states along the only path a confirmation can move a record
func rank(s intent.State) int {
	switch s {
	case intent.StateOpen:
		return 0
	case intent.StateBidAccepted:
		return 1
	default:
		return 2
	}
}

// ObserveIntent reconciles the stored intent with the contract's getIntent view.
// Transitions that produce no contract event (acceptance, fulfilment, return) are
// confirmed here, and the owner is learned. A stored record ahead of the chain is
// left alone since the transaction that moves the chain may still be pending;
// ReopenIntent undoes it once that transaction is known to have failed.
func (e *Engine) ObserveIntent(ctx context.Context, key intent.IntentKey, view *ethereum.IntentView) Result {
	return e.locked(ctx, OpObserveIntent, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		if view == nil || !view.Exists() {
			return duplicate(), nil
		}
		target := chainState(view)

		in, err := s.GetIntent(ctx, key)
		if errors.Is(err, intent.ErrIntentNotFound) {
			return e.createObservedIntent(ctx, s, key, view, target)
		}
		if err != nil {
			return failed(err), err
		}

		if in.Amount.Cmp(view.Amount) != 0 || in.MinAmountRecv.Cmp(view.MinAmountRecv) != 0 ||
			in.DestinationChainID != uint64(view.DestinationChainID) || in.Beneficiary != view.Beneficiary {
			return rejected(violation("intent %s differs from its contract view", key)), nil
		}
		if in.HasFulfiller() && view.Fulfiller != (common.Address{}) && in.Fulfiller != view.Fulfiller {
			return rejected(violation("intent %s fulfiller %s differs from chain %s",
				key, in.Fulfiller.Hex(), view.Fulfiller.Hex())), nil
		}

		next := in.Clone()
		if next.Owner == (common.Address{}) {
			next.Owner = view.Owner
		}
		if next.Timestamp.IsZero() {
			next.Timestamp = view.Timestamp
		}

		var bids []*intent.Bid
		if target != in.State && rank(target) > rank(in.State) {
			if in.State.Terminal() {
				return rejected(violation("intent %s is %s locally but %s on chain", key, in.State, target)), nil
			}
			if bids, err = s.ListBidsForIntent(ctx, key); err != nil {
				return failed(err), err
			}
			if err := e.confirmIntent(next, target, view, bids); err != nil {
				return rejected(err), nil
			}
		}

		if in.State == intent.StateOpen && next.State == intent.StateFulfilled {
			mid := next.Clone()
			mid.State = intent.StateBidAccepted
			if _, err := s.UpsertIntent(ctx, mid); err != nil {
				return fromError(err), err
			}
		}
		changed, err := s.UpsertIntent(ctx, next)
		if err != nil {
			return fromError(err), err
		}
		bidsChanged, err := syncBids(ctx, s, next, bids)
		if err != nil {
			return fromError(err), err
		}
		if !changed && !bidsChanged {
			return duplicate(), nil
		}
		return applied(), nil
	})
}

// confirmIntent moves next towards target, passing through BidAccepted when the
// chain has already fulfilled an intent still open locally
func (e *Engine) confirmIntent(next *intent.Intent, target intent.State, view *ethereum.IntentView, bids []*intent.Bid) error {
	if target == intent.StateReturned {
		if next.State != intent.StateOpen {
			return violation("intent %s is %s locally but returned on chain", next.Key, next.State)
		}
		next.State = intent.StateReturned
		return nil
	}

	if next.State == intent.StateOpen {
		next.Fulfiller = view.Fulfiller
		if next.AcceptedBid == nil {
			if b := e.acceptedByChain(next, bids, view.Fulfiller); b != nil {
				k := b.Key
				next.AcceptedBid = &k
			}
		}
		next.State = intent.StateBidAccepted
	}
	if target == intent.StateFulfilled {
		next.State = intent.StateFulfilled
	}
	return nil
}

// acceptedByChain finds the live bid of in whose proposer is the fulfiller. The
// intent view does not name the bid, so with several candidates the accepted bid
// stays unknown until a bid view reports execution.
func (e *Engine) acceptedByChain(in *intent.Intent, bids []*intent.Bid, fulfiller common.Address) *intent.Bid {
	var candidates []*intent.Bid
	for _, b := range bids {
		if b.Key.ChainID != in.DestinationChainID || b.Proposer != fulfiller {
			continue
		}
		if b.State != intent.BidProposed && b.State != intent.BidAccepted {
			continue
		}
		candidates = append(candidates, b)
	}
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	keys := make([]string, 0, len(candidates))
	for _, b := range candidates {
		keys = append(keys, b.Key.String())
	}
	e.logger.Warn("Fulfiller has several live bids, accepted bid unresolved",
		zap.String("intent", in.Key.String()),
		zap.String("fulfiller", fulfiller.Hex()),
		zap.Strings("bids", keys))
	return nil
}

// syncBids applies the consequences of an intent transition to its bids
func syncBids(ctx context.Context, s intentstore.Store, in *intent.Intent, bids []*intent.Bid) (bool, error) {
	changed := false
	for _, b := range bids {
		prev := b.State
		switch {
		case in.State == intent.StateReturned && b.State == intent.BidProposed:
			b.State = intent.BidRejected
		case in.AcceptedBid != nil && b.Key == *in.AcceptedBid:
			if b.State == intent.BidProposed {
				b.State = intent.BidAccepted
				if in.State == intent.StateFulfilled {
					if _, err := s.UpsertBid(ctx, b); err != nil {
						return changed, err
					}
					changed = true
				}
			}
			if in.State == intent.StateFulfilled && b.State == intent.BidAccepted {
				b.State = intent.BidExecuted
			}
		case in.AcceptedBid != nil && b.State == intent.BidProposed:
			b.State = intent.BidRejected
		}
		if b.State == prev {
			continue
		}
		if _, err := s.UpsertBid(ctx, b); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (e *Engine) createObservedIntent(ctx context.Context, s intentstore.Store, key intent.IntentKey, view *ethereum.IntentView, target intent.State) (Result, error) {
	in := &intent.Intent{
		Key:                key,
		Amount:             view.Amount,
		MinAmountRecv:      view.MinAmountRecv,
		DestinationChainID: uint64(view.DestinationChainID),
		Beneficiary:        view.Beneficiary,
		Owner:              view.Owner,
		State:              target,
		Timestamp:          view.Timestamp,
	}
	bids, err := s.ListBidsForIntent(ctx, key)
	if err != nil {
		return failed(err), err
	}
	if target == intent.StateBidAccepted || target == intent.StateFulfilled {
		in.Fulfiller = view.Fulfiller
		if b := e.acceptedByChain(in, bids, view.Fulfiller); b != nil {
			k := b.Key
			in.AcceptedBid = &k
		}
	}
	if _, err := s.UpsertIntent(ctx, in); err != nil {
		return fromError(err), err
	}
	if _, err := e.adoptBids(ctx, s, in, bids); err != nil {
		return fromError(err), err
	}
	return applied(), nil
}

// adoptBids settles bids recorded before their intent was known. Bids on a chain
// other than the intent's destination are rejected; the rest follow the intent.
func (e *Engine) adoptBids(ctx context.Context, s intentstore.Store, in *intent.Intent, bids []*intent.Bid) (bool, error) {
	changed := false
	matching := make([]*intent.Bid, 0, len(bids))
	for _, b := range bids {
		if b.Key.ChainID == in.DestinationChainID {
			matching = append(matching, b)
			continue
		}
		if b.State != intent.BidProposed {
			continue
		}
		e.logger.Warn("Rejecting bid on a chain the intent does not target",
			zap.String("intent", in.Key.String()),
			zap.String("bid", b.Key.String()),
			zap.Uint64("destination_chain_id", in.DestinationChainID))
		b.State = intent.BidRejected
		if _, err := s.UpsertBid(ctx, b); err != nil {
			return changed, err
		}
		changed = true
	}
	synced, err := syncBids(ctx, s, in, matching)
	return changed || synced, err
}

// ReopenIntent undoes a local acceptance or return the chain never confirmed. The
// view must still show the intent open. The fulfiller and accepted bid are cleared
// and the intent's accepted and rejected bids become proposed again.
func (e *Engine) ReopenIntent(ctx context.Context, key intent.IntentKey, view *ethereum.IntentView) Result {
	return e.locked(ctx, OpReopenIntent, key, func(ctx context.Context, s intentstore.Store) (Result, error) {
		in, res, ok := getIntent(ctx, s, key)
		if !ok {
			return res, nil
		}
		if view == nil || !view.Exists() {
			return rejected(violation("intent %s has no contract view", key)), nil
		}
		if target := chainState(view); target != intent.StateOpen {
			return rejected(violation("intent %s is %s on chain", key, target)), nil
		}
		switch in.State {
		case intent.StateOpen:
			return duplicate(), nil
		case intent.StateBidAccepted, intent.StateReturned:
		default:
			return rejected(violation("intent %s is %s and cannot be reopened", key, in.State)), nil
		}

		bids, err := s.ListBidsForIntent(ctx, key)
		if err != nil {
			return failed(err), err
		}
		next := in.Clone()
		next.State = intent.StateOpen
		next.Fulfiller = common.Address{}
		next.AcceptedBid = nil
		if err := s.RollbackIntent(ctx, next); err != nil {
			return fromError(err), err
		}
		for _, b := range bids {
			if b.Key.ChainID != in.DestinationChainID {
				continue
			}
			if b.State != intent.BidAccepted && b.State != intent.BidRejected {
				continue
			}
			b.State = intent.BidProposed
			if err := s.RollbackBid(ctx, b); err != nil {
				return fromError(err), err
			}
		}
		return applied(), nil
	})
}

// ObserveBid reconciles the stored bid with the contract's getBid view: it learns
// the proposer and addresses, and confirms execution and withdrawal.
func (e *Engine) ObserveBid(ctx context.Context, key intent.BidKey, view *ethereum.BidView) Result {
	if view == nil || !view.Exists() {
		res := duplicate()
		e.record(OpObserveBid, intent.IntentKey{}, res)
		return res
	}
	if view.SourceChainID == nil || !view.SourceChainID.IsUint64() || view.IntentUID == nil {
		res := rejected(violation("bid %s view has invalid intent reference", key))
		e.record(OpObserveBid, intent.IntentKey{}, res)
		return res
	}
	intentKey := intent.NewIntentKey(view.SourceChainID.Uint64(), view.IntentUID)

	return e.locked(ctx, OpObserveBid, intentKey, func(ctx context.Context, s intentstore.Store) (Result, error) {
		b, err := s.GetBid(ctx, key)
		if errors.Is(err, intent.ErrBidNotFound) {
			b = &intent.Bid{
				Key:            key,
				Intent:         intentKey,
				AmountProposed: view.AmountProposed,
				State:          intent.BidProposed,
			}
			// same admission rules as a NewIntentBid event
			in, err := s.GetIntent(ctx, intentKey)
			switch {
			case err == nil:
				if in.DestinationChainID != key.ChainID {
					return rejected(violation("bid %s on chain %d but intent %s targets chain %d",
						key, key.ChainID, intentKey, in.DestinationChainID)), nil
				}
				if in.State != intent.StateOpen {
					b.State = intent.BidRejected
				}
			case !errors.Is(err, intent.ErrIntentNotFound):
				return failed(err), err
			}
		} else if err != nil {
			return failed(err), err
		}

		if b.Intent != intentKey || b.AmountProposed.Cmp(view.AmountProposed) != 0 {
			return rejected(violation("bid %s differs from its contract view", key)), nil
		}
		if b.Proposer != (common.Address{}) && b.Proposer != view.Proposer {
			return rejected(violation("bid %s proposer differs from chain", key)), nil
		}

		next := b.Clone()
		next.Proposer = view.Proposer
		next.Destination = view.Destination
		next.Forwarding = view.Forwarding
		if next.Timestamp.IsZero() {
			next.Timestamp = view.Timestamp
		}
		switch {
		case view.Executed && next.State == intent.BidAccepted:
			next.State = intent.BidExecuted
		case view.Returned && (next.State == intent.BidProposed || next.State == intent.BidRejected):
			next.State = intent.BidWithdrawn
		}

		changed, err := s.UpsertBid(ctx, next)
		if err != nil {
			return fromError(err), err
		}
		resolved, err := resolveAcceptedBid(ctx, s, next, view)
		if err != nil {
			return fromError(err), err
		}
		if !changed && !resolved {
			return duplicate(), nil
		}
		return applied(), nil
	})
}

// resolveAcceptedBid records b as the accepted bid of its intent when the chain
// reports it executed and the acceptance was not attributed to a bid yet
func resolveAcceptedBid(ctx context.Context, s intentstore.Store, b *intent.Bid, view *ethereum.BidView) (bool, error) {
	if !view.Executed || b.State != intent.BidProposed {
		return false, nil
	}
	in, err := s.GetIntent(ctx, b.Intent)
	if errors.Is(err, intent.ErrIntentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if in.AcceptedBid != nil || !in.HasFulfiller() || in.Fulfiller != b.Proposer ||
		in.DestinationChainID != b.Key.ChainID {
		return false, nil
	}

	k := b.Key
	in.AcceptedBid = &k
	if _, err := s.UpsertIntent(ctx, in); err != nil {
		return false, err
	}
	bids, err := s.ListBidsForIntent(ctx, in.Key)
	if err != nil {
		return false, err
	}
	if _, err := syncBids(ctx, s, in, bids); err != nil {
		return false, err
	}
	return true, nil
}
