// Package api serves the coordinator's status and admin endpoints.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/chainsafe/goldengate-middleware/pkg/app/errors"
	"github.com/chainsafe/goldengate-middleware/pkg/coordinator"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// SubmissionLister reads submission records
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, f db.SubmissionFilter) ([]*db.Submission, error)
}

// StatusProvider reports the coordinator's streams
type StatusProvider interface {
	IsReady() bool
	Status() []coordinator.StreamStatus
}

// Acceptor decides intents on behalf of the owner. *actor.UserDriver satisfies it.
type Acceptor interface {
	Address() common.Address
	Accept(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) ([]*db.Submission, error)
	Reject(ctx context.Context, key intent.IntentKey) ([]*db.Submission, error)
}

// IntentQuery filters intent listings
type IntentQuery struct {
	ChainID            uint64
	DestinationChainID uint64
	States             []intent.State
	Owner              *common.Address
	Limit              int
}

// Service defines the status and admin operations
type Service interface {
	ListIntents(ctx context.Context, q IntentQuery) ([]*IntentResponse, error)
	GetIntent(ctx context.Context, key intent.IntentKey) (*IntentResponse, error)
	ListBids(ctx context.Context, key intent.IntentKey) ([]*BidResponse, error)
	ListSubmissions(ctx context.Context, f db.SubmissionFilter) ([]*db.Submission, error)
	Status(ctx context.Context) (*StatusResponse, error)
	AcceptBid(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) (*ActionResponse, error)
	RejectBids(ctx context.Context, key intent.IntentKey) (*ActionResponse, error)
}

type service struct {
	store       intentstore.Reader
	submissions SubmissionLister
	status      StatusProvider
	acceptor    Acceptor
}

// NewService creates the API service. acceptor is nil when the user role is disabled.
func NewService(store intentstore.Reader, submissions SubmissionLister, status StatusProvider, acceptor Acceptor) Service {
	return &service{
		store:       store,
		submissions: submissions,
		status:      status,
		acceptor:    acceptor,
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

func (s *service) ListIntents(ctx context.Context, q IntentQuery) ([]*IntentResponse, error) {
	opts := []intentstore.QueryOption{intentstore.WithLimit(clampLimit(q.Limit))}
	if q.ChainID != 0 {
		opts = append(opts, intentstore.WithChainID(q.ChainID))
	}
	if q.DestinationChainID != 0 {
		opts = append(opts, intentstore.WithDestinationChainID(q.DestinationChainID))
	}
	if len(q.States) > 0 {
		opts = append(opts, intentstore.WithStates(q.States...))
	}
	if q.Owner != nil {
		opts = append(opts, intentstore.WithOwner(*q.Owner))
	}

	intents, err := s.store.ListIntents(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}
	out := make([]*IntentResponse, 0, len(intents))
	for _, in := range intents {
		out = append(out, toIntentResponse(in))
	}
	return out, nil
}

func (s *service) GetIntent(ctx context.Context, key intent.IntentKey) (*IntentResponse, error) {
	in, err := s.getIntent(ctx, key)
	if err != nil {
		return nil, err
	}
	return toIntentResponse(in), nil
}

func (s *service) getIntent(ctx context.Context, key intent.IntentKey) (*intent.Intent, error) {
	in, err := s.store.GetIntent(ctx, key)
	if errors.Is(err, intent.ErrIntentNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "intent not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intent %s: %w", key, err)
	}
	return in, nil
}

func (s *service) ListBids(ctx context.Context, key intent.IntentKey) ([]*BidResponse, error) {
	if _, err := s.getIntent(ctx, key); err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsForIntent(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids of %s: %w", key, err)
	}
	out := make([]*BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, toBidResponse(b))
	}
	return out, nil
}

func (s *service) ListSubmissions(ctx context.Context, f db.SubmissionFilter) ([]*db.Submission, error) {
	f.Limit = clampLimit(f.Limit)
	subs, err := s.submissions.ListSubmissions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if subs == nil {
		subs = []*db.Submission{}
	}
	return subs, nil
}

func (s *service) Status(ctx context.Context) (*StatusResponse, error) {
	intents, err := s.store.ListIntents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count intents: %w", err)
	}
	counts := map[intent.State]int{
		intent.StateOpen:        0,
		intent.StateBidAccepted: 0,
		intent.StateFulfilled:   0,
		intent.StateReturned:    0,
	}
	for _, in := range intents {
		counts[in.State]++
	}
	return &StatusResponse{
		Ready:   s.status.IsReady(),
		Streams: s.status.Status(),
		Intents: counts,
	}, nil
}

func (s *service) AcceptBid(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) (*ActionResponse, error) {
	if err := s.checkOwned(ctx, intentKey); err != nil {
		return nil, err
	}
	subs, err := s.acceptor.Accept(ctx, intentKey, bidKey)
	return actionResponse("bid accepted", subs, err)
}

func (s *service) RejectBids(ctx context.Context, key intent.IntentKey) (*ActionResponse, error) {
	if err := s.checkOwned(ctx, key); err != nil {
		return nil, err
	}
	subs, err := s.acceptor.Reject(ctx, key)
	return actionResponse("bids rejected", subs, err)
}

// checkOwned allows admin actions only on intents owned by this coordinator's user
func (s *service) checkOwned(ctx context.Context, key intent.IntentKey) error {
	if s.acceptor == nil {
		return apperrors.NotSupportedError(nil, "user role is not enabled")
	}
	in, err := s.getIntent(ctx, key)
	if err != nil {
		return err
	}
	if in.Owner != (common.Address{}) && in.Owner != s.acceptor.Address() {
		return apperrors.ConflictError(nil, "intent is not owned by this coordinator")
	}
	return nil
}

// actionResponse maps the outcome of an admin action. The local decision
// stands when its transaction fails; the failure is on the submission record.
func actionResponse(outcome string, subs []*db.Submission, err error) (*ActionResponse, error) {
	switch {
	case err == nil:
		if subs == nil {
			subs = []*db.Submission{}
		}
		return &ActionResponse{Outcome: outcome, Submissions: subs}, nil
	case errors.Is(err, intent.ErrInvariantViolation):
		return nil, apperrors.ConflictError(err, err.Error())
	case ethereum.IsRevert(err):
		return nil, apperrors.DependencyError(err, "transaction reverted: "+submissionID(subs))
	case ethereum.IsTransport(err):
		return nil, apperrors.DependencyError(err, "chain node unavailable: "+submissionID(subs))
	default:
		return nil, err
	}
}

func submissionID(subs []*db.Submission) string {
	if len(subs) == 0 {
		return "no submission recorded"
	}
	return "submission " + subs[len(subs)-1].ID
}
