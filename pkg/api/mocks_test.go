package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/coordinator"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

type MockAcceptor struct {
	addr       common.Address
	AcceptFunc func(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) ([]*db.Submission, error)
	RejectFunc func(ctx context.Context, key intent.IntentKey) ([]*db.Submission, error)

	accepted []intent.BidKey
	rejected []intent.IntentKey
}

func (m *MockAcceptor) Address() common.Address { return m.addr }

func (m *MockAcceptor) Accept(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) ([]*db.Submission, error) {
	m.accepted = append(m.accepted, bidKey)
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, intentKey, bidKey)
	}
	return []*db.Submission{{ID: "sub-accept", Method: "acceptBid", Status: db.SubmissionSubmitted}}, nil
}

func (m *MockAcceptor) Reject(ctx context.Context, key intent.IntentKey) ([]*db.Submission, error) {
	m.rejected = append(m.rejected, key)
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, key)
	}
	return []*db.Submission{{ID: "sub-reject", Method: "rejectBids", Status: db.SubmissionSubmitted}}, nil
}

type MockStatus struct {
	ready   bool
	streams []coordinator.StreamStatus
}

func (m *MockStatus) IsReady() bool                      { return m.ready }
func (m *MockStatus) Status() []coordinator.StreamStatus { return m.streams }

// MockService is a func-field Service for transport tests
type MockService struct {
	ListIntentsFunc     func(ctx context.Context, q IntentQuery) ([]*IntentResponse, error)
	GetIntentFunc       func(ctx context.Context, key intent.IntentKey) (*IntentResponse, error)
	ListBidsFunc        func(ctx context.Context, key intent.IntentKey) ([]*BidResponse, error)
	ListSubmissionsFunc func(ctx context.Context, f db.SubmissionFilter) ([]*db.Submission, error)
	StatusFunc          func(ctx context.Context) (*StatusResponse, error)
	AcceptBidFunc       func(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) (*ActionResponse, error)
	RejectBidsFunc      func(ctx context.Context, key intent.IntentKey) (*ActionResponse, error)
}

func (m *MockService) ListIntents(ctx context.Context, q IntentQuery) ([]*IntentResponse, error) {
	if m.ListIntentsFunc != nil {
		return m.ListIntentsFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockService) GetIntent(ctx context.Context, key intent.IntentKey) (*IntentResponse, error) {
	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, key)
	}
	return nil, nil
}

func (m *MockService) ListBids(ctx context.Context, key intent.IntentKey) ([]*BidResponse, error) {
	if m.ListBidsFunc != nil {
		return m.ListBidsFunc(ctx, key)
	}
	return nil, nil
}

func (m *MockService) ListSubmissions(ctx context.Context, f db.SubmissionFilter) ([]*db.Submission, error) {
	if m.ListSubmissionsFunc != nil {
		return m.ListSubmissionsFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockService) Status(ctx context.Context) (*StatusResponse, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &StatusResponse{}, nil
}

func (m *MockService) AcceptBid(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) (*ActionResponse, error) {
	if m.AcceptBidFunc != nil {
		return m.AcceptBidFunc(ctx, intentKey, bidKey)
	}
	return &ActionResponse{}, nil
}

func (m *MockService) RejectBids(ctx context.Context, key intent.IntentKey) (*ActionResponse, error) {
	if m.RejectBidsFunc != nil {
		return m.RejectBidsFunc(ctx, key)
	}
	return &ActionResponse{}, nil
}
