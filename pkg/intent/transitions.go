package intent

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var intentTransitions = map[State][]State{
	StateOpen:        {StateBidAccepted, StateReturned},
	StateBidAccepted: {StateFulfilled},
}

var bidTransitions = map[BidState][]BidState{
	BidProposed: {BidAccepted, BidWithdrawn, BidRejected},
	BidAccepted: {BidExecuted},
	BidRejected: {BidWithdrawn},
}

// rollbacks undo a local transition the chain never confirmed
var (
	intentRollbacks = map[State]State{
		StateBidAccepted: StateOpen,
		StateReturned:    StateOpen,
	}
	bidRollbacks = map[BidState]BidState{
		BidAccepted: BidProposed,
		BidRejected: BidProposed,
	}
)

// CanTransition reports whether an intent may move from one state to another
func CanTransition(from, to State) bool {
	for _, s := range intentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionBid reports whether a bid may move from one state to another
func CanTransitionBid(from, to BidState) bool {
	for _, s := range bidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// CheckIntent validates the invariants that hold for any single intent record
func CheckIntent(i *Intent) error {
	if i.Amount == nil || i.MinAmountRecv == nil {
		return violation("intent %s has no amounts", i.Key)
	}
	if i.Amount.Sign() < 0 || i.MinAmountRecv.Sign() < 0 {
		return violation("intent %s has negative amounts", i.Key)
	}
	if i.MinAmountRecv.Cmp(i.Amount) > 0 {
		return violation("intent %s minAmountRecv %s exceeds amount %s", i.Key, i.MinAmountRecv, i.Amount)
	}
	switch i.State {
	case StateOpen, StateReturned:
		if i.HasFulfiller() {
			return violation("intent %s in state %s has a fulfiller", i.Key, i.State)
		}
	case StateBidAccepted, StateFulfilled:
		if !i.HasFulfiller() {
			return violation("intent %s in state %s has no fulfiller", i.Key, i.State)
		}
	default:
		return violation("intent %s has unknown state %q", i.Key, i.State)
	}
	return nil
}

// ValidateIntentUpdate checks that next is a legal successor of prev.
// A nil prev means next is a new record.
func ValidateIntentUpdate(prev, next *Intent) error {
	if err := CheckIntent(next); err != nil {
		return err
	}
	if prev == nil {
		return nil
	}
	if prev.Key != next.Key {
		return violation("intent key changed from %s to %s", prev.Key, next.Key)
	}
	if prev.Amount.Cmp(next.Amount) != 0 || prev.MinAmountRecv.Cmp(next.MinAmountRecv) != 0 {
		return violation("intent %s amounts are immutable", prev.Key)
	}
	if prev.DestinationChainID != next.DestinationChainID || prev.Beneficiary != next.Beneficiary {
		return violation("intent %s destination is immutable", prev.Key)
	}
	if prev.Owner != (common.Address{}) && prev.Owner != next.Owner {
		return violation("intent %s owner is immutable", prev.Key)
	}
	if prev.HasFulfiller() && prev.Fulfiller != next.Fulfiller {
		return violation("intent %s fulfiller already set to %s", prev.Key, prev.Fulfiller.Hex())
	}
	if prev.AcceptedBid != nil && (next.AcceptedBid == nil || *prev.AcceptedBid != *next.AcceptedBid) {
		return violation("intent %s accepted bid already set to %s", prev.Key, prev.AcceptedBid)
	}
	if prev.State != next.State && !CanTransition(prev.State, next.State) {
		return violation("intent %s cannot move from %s to %s", prev.Key, prev.State, next.State)
	}
	return nil
}

// ValidateIntentRollback checks that next undoes an unconfirmed acceptance or
// return of prev. Everything but the state, fulfiller and accepted bid is kept.
func ValidateIntentRollback(prev, next *Intent) error {
	if err := CheckIntent(next); err != nil {
		return err
	}
	if prev.Key != next.Key {
		return violation("intent key changed from %s to %s", prev.Key, next.Key)
	}
	if to, ok := intentRollbacks[prev.State]; !ok || to != next.State {
		return violation("intent %s cannot roll back from %s to %s", prev.Key, prev.State, next.State)
	}
	if next.AcceptedBid != nil {
		return violation("reopened intent %s keeps accepted bid %s", prev.Key, next.AcceptedBid)
	}
	if prev.Amount.Cmp(next.Amount) != 0 || prev.MinAmountRecv.Cmp(next.MinAmountRecv) != 0 ||
		prev.DestinationChainID != next.DestinationChainID || prev.Beneficiary != next.Beneficiary {
		return violation("intent %s attributes are immutable", prev.Key)
	}
	if prev.Owner != (common.Address{}) && prev.Owner != next.Owner {
		return violation("intent %s owner is immutable", prev.Key)
	}
	return nil
}

// CheckBid validates the invariants that hold for any single bid record
func CheckBid(b *Bid) error {
	if b.AmountProposed == nil || b.AmountProposed.Sign() < 0 {
		return violation("bid %s has no valid amount", b.Key)
	}
	switch b.State {
	case BidProposed, BidAccepted, BidExecuted, BidWithdrawn, BidRejected:
	default:
		return violation("bid %s has unknown state %q", b.Key, b.State)
	}
	return nil
}

// ValidateBidUpdate checks that next is a legal successor of prev.
// A nil prev means next is a new record.
func ValidateBidUpdate(prev, next *Bid) error {
	if err := CheckBid(next); err != nil {
		return err
	}
	if prev == nil {
		return nil
	}
	if prev.Key != next.Key {
		return violation("bid key changed from %s to %s", prev.Key, next.Key)
	}
	if prev.Intent != next.Intent {
		return violation("bid %s intent is immutable", prev.Key)
	}
	if prev.AmountProposed.Cmp(next.AmountProposed) != 0 {
		return violation("bid %s amount is immutable", prev.Key)
	}
	for _, f := range []struct {
		name       string
		prev, next common.Address
	}{
		{"proposer", prev.Proposer, next.Proposer},
		{"destination", prev.Destination, next.Destination},
		{"forwarding", prev.Forwarding, next.Forwarding},
	} {
		if f.prev != (common.Address{}) && f.prev != f.next {
			return violation("bid %s %s is immutable", prev.Key, f.name)
		}
	}
	if prev.State != next.State && !CanTransitionBid(prev.State, next.State) {
		return violation("bid %s cannot move from %s to %s", prev.Key, prev.State, next.State)
	}
	return nil
}

// ValidateBidRollback checks that next returns prev to proposed after the
// acceptance or return that moved it was undone
func ValidateBidRollback(prev, next *Bid) error {
	if err := CheckBid(next); err != nil {
		return err
	}
	if prev.Key != next.Key || prev.Intent != next.Intent || prev.AmountProposed.Cmp(next.AmountProposed) != 0 {
		return violation("bid %s attributes are immutable", prev.Key)
	}
	if to, ok := bidRollbacks[prev.State]; !ok || to != next.State {
		return violation("bid %s cannot roll back from %s to %s", prev.Key, prev.State, next.State)
	}
	return nil
}

// CheckAcceptance validates that bid may be accepted for in
func CheckAcceptance(in *Intent, bid *Bid) error {
	if bid.Intent != in.Key {
		return violation("bid %s belongs to intent %s, not %s", bid.Key, bid.Intent, in.Key)
	}
	if bid.Key.ChainID != in.DestinationChainID {
		return violation("bid %s is on chain %d but intent %s targets chain %d",
			bid.Key, bid.Key.ChainID, in.Key, in.DestinationChainID)
	}
	if !MeetsMinimum(in, bid.AmountProposed) {
		return violation("bid %s amount %s below minAmountRecv %s", bid.Key, bid.AmountProposed, in.MinAmountRecv)
	}
	if bid.Proposer == (common.Address{}) {
		return violation("bid %s has no known proposer", bid.Key)
	}
	return nil
}

// MeetsMinimum reports whether amount satisfies the intent's minAmountRecv
func MeetsMinimum(in *Intent, amount *big.Int) bool {
	return amount != nil && in.MinAmountRecv != nil && amount.Cmp(in.MinAmountRecv) >= 0
}
