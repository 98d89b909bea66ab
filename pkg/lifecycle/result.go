package lifecycle

import (
	"errors"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

// Outcome classifies what an engine operation did
type Outcome string

const (
	// OutcomeApplied means the store changed
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the operation was already reflected in the store
	OutcomeDuplicate Outcome = "rejected-duplicate"
	// OutcomeInvariant means the operation would break the state machine and was dropped
	OutcomeInvariant Outcome = "rejected-invariant"
	// OutcomeError means the store could not be read or written; the operation may be retried
	OutcomeError Outcome = "error"
)

// Action is a contract call the caller should submit as a consequence of an applied operation
type Action struct {
	ChainID uint64
	Call    ethereum.Call
	Intent  intent.IntentKey
	Bid     *intent.BidKey
}

// Result is returned by every engine operation
type Result struct {
	Outcome Outcome
	Err     error
	Actions []Action
}

// Applied reports whether the operation changed the store
func (r Result) Applied() bool {
	return r.Outcome == OutcomeApplied
}

func applied(actions ...Action) Result {
	return Result{Outcome: OutcomeApplied, Actions: actions}
}

func duplicate() Result {
	return Result{Outcome: OutcomeDuplicate}
}

func rejected(err error) Result {
	return Result{Outcome: OutcomeInvariant, Err: err}
}

func failed(err error) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

// fromError maps a store error onto an outcome
func fromError(err error) Result {
	if errors.Is(err, intent.ErrInvariantViolation) {
		return rejected(err)
	}
	return failed(err)
}
