// Package actor drives the intent owner and solver roles: it turns engine
// decisions into contract calls and records every submission.
package actor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
)

// ErrStopped is returned for submissions attempted after Stop
var ErrStopped = errors.New("submitter stopped")

// submitTimeout bounds one send once it has started. A started send is not
// cancelled with its caller's context so the nonce and record stay consistent.
const submitTimeout = 2 * time.Minute

// Gateway is the per-chain contract access the actors need.
// *ethereum.Client satisfies it.
type Gateway interface {
	ChainID() uint64
	Name() string
	Submit(ctx context.Context, signer ethereum.Signer, call ethereum.Call) (common.Hash, error)
	GetIntent(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error)
	GetBid(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error)
}

// SubmissionStore records submissions
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *db.Submission) error
	UpdateSubmission(ctx context.Context, id string, status db.SubmissionStatus, txHash, errMsg string) error
}

// Submitter sends actions through the gateway of their chain and keeps a
// submission record for each. Stop waits for calls already in flight.
type Submitter struct {
	gateways map[uint64]Gateway
	store    SubmissionStore
	logger   *zap.Logger

	timeout time.Duration

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewSubmitter creates a submitter over gateways keyed by chain id
func NewSubmitter(gateways map[uint64]Gateway, store SubmissionStore, logger *zap.Logger) *Submitter {
	return &Submitter{
		gateways: gateways,
		store:    store,
		logger:   logger,
		timeout:  submitTimeout,
	}
}

// Gateway returns the gateway of chainID
func (s *Submitter) Gateway(chainID uint64) (Gateway, error) {
	gw, ok := s.gateways[chainID]
	if !ok {
		return nil, fmt.Errorf("no gateway for chain %d", chainID)
	}
	return gw, nil
}

// Apply submits every action of res. A non-applied result submits nothing.
func (s *Submitter) Apply(ctx context.Context, signer ethereum.Signer, res lifecycle.Result) ([]*db.Submission, error) {
	var subs []*db.Submission
	for _, action := range res.Actions {
		sub, err := s.Execute(ctx, signer, action)
		if sub != nil {
			subs = append(subs, sub)
		}
		if err != nil {
			return subs, err
		}
	}
	return subs, nil
}

// Execute submits one action. The returned submission carries the final status
// even when an error is returned.
func (s *Submitter) Execute(ctx context.Context, signer ethereum.Signer, action lifecycle.Action) (*db.Submission, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	gw, err := s.Gateway(action.ChainID)
	if err != nil {
		return nil, err
	}

	sub := &db.Submission{
		ChainID:       action.ChainID,
		Method:        string(action.Call.Method),
		IntentChainID: action.Intent.ChainID,
		IntentUID:     action.Intent.UID,
		Sender:        signer.Address().Hex(),
		Status:        db.SubmissionPending,
	}
	if action.Bid != nil {
		sub.BidChainID = action.Bid.ChainID
		sub.BidUID = action.Bid.UID
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	txHash, sendErr := gw.Submit(sendCtx, signer, action.Call)
	switch {
	case sendErr == nil:
		sub.Status = db.SubmissionSubmitted
		sub.TxHash = txHash.Hex()
	case ethereum.IsRevert(sendErr):
		sub.Status = db.SubmissionReverted
		sub.Error = sendErr.Error()
	default:
		sub.Status = db.SubmissionFailed
		sub.Error = sendErr.Error()
	}

	// the record must be finalized even if ctx was cancelled mid-submission
	if err := s.store.UpdateSubmission(context.WithoutCancel(ctx), sub.ID, sub.Status, sub.TxHash, sub.Error); err != nil {
		s.logger.Error("Failed to update submission",
			zap.String("submission_id", sub.ID),
			zap.String("status", string(sub.Status)),
			zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("submission_id", sub.ID),
		zap.String("chain", gw.Name()),
		zap.String("method", sub.Method),
		zap.String("intent_uid", sub.IntentUID),
		zap.String("sender", sub.Sender),
	}
	if sendErr != nil {
		s.logger.Warn("Submission failed", append(fields, zap.String("status", string(sub.Status)), zap.Error(sendErr))...)
		return sub, sendErr
	}
	s.logger.Info("Submission sent", append(fields, zap.String("tx_hash", sub.TxHash))...)
	return sub, nil
}

// Stop rejects new submissions and waits for in-flight ones
func (s *Submitter) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.wg.Wait()
}

// resultErr turns a non-applied engine result into an error. Duplicates are not errors.
func resultErr(res lifecycle.Result) error {
	switch res.Outcome {
	case lifecycle.OutcomeApplied, lifecycle.OutcomeDuplicate:
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	return fmt.Errorf("%w: %s", intent.ErrInvariantViolation, res.Outcome)
}
