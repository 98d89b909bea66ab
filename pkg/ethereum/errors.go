package ethereum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrStaleNonce is returned when the node rejects a transaction because of its nonce
var ErrStaleNonce = errors.New("stale nonce")

// TransportError wraps a network or RPC failure. These are retried with backoff.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RevertError means the contract or node rejected the call. It is never retried.
type RevertError struct {
	Method string
	Reason string
	Err    error
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s reverted: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("%s reverted: %v", e.Method, e.Err)
}

func (e *RevertError) Unwrap() error { return e.Err }

// IsRevert reports whether err is a RevertError
func IsRevert(err error) bool {
	var re *RevertError
	return errors.As(err, &re)
}

// IsTransport reports whether err is a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

var staleNonceMessages = []string{
	"nonce too low",
	"nonce too high",
	"replacement transaction underpriced",
	"invalid nonce",
}

// isAlreadyKnown reports whether the node already holds the exact transaction
func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}

var revertMessages = []string{
	"execution reverted",
	"revert",
	"invalid opcode",
	"out of gas",
	"insufficient funds",
	"intrinsic gas too low",
	"gas required exceeds allowance",
}

// classify maps a raw go-ethereum error onto the gateway error taxonomy
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := revertReason(dataErr.ErrorData()); ok {
			return &RevertError{Method: op, Reason: reason, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range staleNonceMessages {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %s: %v", ErrStaleNonce, op, err)
		}
	}
	for _, m := range revertMessages {
		if strings.Contains(msg, m) {
			return &RevertError{Method: op, Err: err}
		}
	}
	return &TransportError{Op: op, Err: err}
}

func revertReason(data interface{}) (string, bool) {
	s, ok := data.(string)
	if !ok {
		return "", false
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
