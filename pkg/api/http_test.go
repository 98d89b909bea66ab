package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/goldengate-middleware/pkg/app/errors"
	"github.com/chainsafe/goldengate-middleware/pkg/auth"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

func newTestServer(t *testing.T, svc Service) (http.Handler, string) {
	t.Helper()
	validator, err := auth.NewTokenValidator("0123456789abcdef0123456789abcdef", "goldengate")
	require.NoError(t, err)
	token, err := validator.IssueToken("ops", time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, NewLog(svc, zap.NewNop()), validator, zap.NewNop())
	return r, token
}

func do(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var got struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rec.Code, got.Code)
	return got.Error
}

func TestHTTP_ListIntentsQuery(t *testing.T) {
	var got IntentQuery
	svc := &MockService{ListIntentsFunc: func(_ context.Context, q IntentQuery) ([]*IntentResponse, error) {
		got = q
		return []*IntentResponse{{KeyResponse: KeyResponse{ChainID: sepolia, UID: "1"}, State: intent.StateOpen}}, nil
	}}
	h, _ := newTestServer(t, svc)

	rec := do(h, http.MethodGet, "/intents?chain=11155111&destination=534353&state=open,bid_accepted&owner="+userAddr.Hex()+"&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sepolia, got.ChainID)
	assert.Equal(t, scroll, got.DestinationChainID)
	assert.Equal(t, []intent.State{intent.StateOpen, intent.StateBidAccepted}, got.States)
	require.NotNil(t, got.Owner)
	assert.Equal(t, userAddr, *got.Owner)
	assert.Equal(t, 5, got.Limit)

	var body struct {
		Intents []IntentResponse `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Intents, 1)
	assert.Equal(t, "1", body.Intents[0].UID)
}

func TestHTTP_BadRequests(t *testing.T) {
	h, token := newTestServer(t, &MockService{})
	tests := []struct {
		name   string
		method string
		target string
		want   string
	}{
		{"bad chain", http.MethodGet, "/intents?chain=sepolia", "invalid chain"},
		{"bad state", http.MethodGet, "/intents?state=pending", "invalid state pending"},
		{"bad owner", http.MethodGet, "/intents?owner=0x12", "invalid owner address"},
		{"bad limit", http.MethodGet, "/intents?limit=-1", "invalid limit"},
		{"bad intent key", http.MethodGet, "/intents/11155111/abc", "invalid intent key"},
		{"bad status", http.MethodGet, "/submissions?status=done", "invalid status done"},
		{"bad intent uid", http.MethodGet, "/submissions?intent_uid=x", "invalid intent_uid"},
		{"bad bid key", http.MethodPost, "/intents/11155111/1/accept/scroll/7", "invalid bid key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.target, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorBody(t, rec))
		})
	}
}

func TestHTTP_GetIntentNotFound(t *testing.T) {
	svc := &MockService{GetIntentFunc: func(_ context.Context, key intent.IntentKey) (*IntentResponse, error) {
		assert.Equal(t, intent.NewIntentKey(sepolia, big.NewInt(42)), key)
		return nil, apperrors.ResourceNotFoundError(intent.ErrIntentNotFound, "intent not found")
	}}
	h, _ := newTestServer(t, svc)

	rec := do(h, http.MethodGet, "/intents/11155111/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "intent not found", errorBody(t, rec))
}

func TestHTTP_ListBidsAndSubmissions(t *testing.T) {
	var filter db.SubmissionFilter
	svc := &MockService{
		ListBidsFunc: func(_ context.Context, key intent.IntentKey) ([]*BidResponse, error) {
			return []*BidResponse{{KeyResponse: KeyResponse{ChainID: scroll, UID: "7"}, Intent: KeyResponse{ChainID: key.ChainID, UID: key.UID}}}, nil
		},
		ListSubmissionsFunc: func(_ context.Context, f db.SubmissionFilter) ([]*db.Submission, error) {
			filter = f
			return []*db.Submission{{ID: "sub-1", Status: db.SubmissionSubmitted}}, nil
		},
	}
	h, _ := newTestServer(t, svc)

	rec := do(h, http.MethodGet, "/intents/11155111/1/bids", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"uid":"7"`)

	rec = do(h, http.MethodGet, "/submissions?chain=534353&intent_uid=1&status=submitted", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, db.SubmissionFilter{ChainID: scroll, IntentUID: "1", Status: db.SubmissionSubmitted}, filter)
	assert.Contains(t, rec.Body.String(), `"sub-1"`)
}

func TestHTTP_Status(t *testing.T) {
	svc := &MockService{StatusFunc: func(context.Context) (*StatusResponse, error) {
		return &StatusResponse{Ready: true, Intents: map[intent.State]int{intent.StateOpen: 3}}, nil
	}}
	h, _ := newTestServer(t, svc)

	rec := do(h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"streams":null,"intents":{"open":3}}`, rec.Body.String())
}

func TestHTTP_AdminRoutes(t *testing.T) {
	var accepted intent.BidKey
	var rejected intent.IntentKey
	svc := &MockService{
		AcceptBidFunc: func(_ context.Context, _ intent.IntentKey, bidKey intent.BidKey) (*ActionResponse, error) {
			accepted = bidKey
			return &ActionResponse{Outcome: "bid accepted", Submissions: []*db.Submission{{ID: "sub-1"}}}, nil
		},
		RejectBidsFunc: func(_ context.Context, key intent.IntentKey) (*ActionResponse, error) {
			rejected = key
			return nil, apperrors.ConflictError(nil, "intent is not open")
		},
	}
	h, token := newTestServer(t, svc)

	rec := do(h, http.MethodPost, "/intents/11155111/1/accept/534353/7", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, intent.BidKey{}, accepted)

	rec = do(h, http.MethodPost, "/intents/11155111/1/accept/534353/7", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, intent.NewBidKey(scroll, big.NewInt(7)), accepted)
	assert.Contains(t, rec.Body.String(), `"outcome":"bid accepted"`)

	rec = do(h, http.MethodPost, "/intents/11155111/1/reject", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "intent is not open", errorBody(t, rec))
	assert.Equal(t, intent.NewIntentKey(sepolia, big.NewInt(1)), rejected)
}

func TestHTTP_AdminRoutesDisabled(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, &MockService{}, nil, zap.NewNop())

	rec := do(r, http.MethodPost, "/intents/11155111/1/reject", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
