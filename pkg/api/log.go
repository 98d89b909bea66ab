package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/goldengate-middleware/pkg/app/errors"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

const serviceName = "CoordinatorAPI"

// logService wraps Service with logging of admin actions and failed reads
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for Service
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger.With(zap.String("service", serviceName)),
	}
}

// done logs a failed call; client errors are logged at debug level
func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("method", method), zap.Duration("duration", time.Since(start)))
	switch {
	case err == nil:
		ls.logger.Debug(method+" completed", fields...)
	case apperrors.IsInternalError(err):
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
	default:
		ls.logger.Debug(method+" rejected", append(fields, zap.Error(err))...)
	}
}

func (ls *logService) ListIntents(ctx context.Context, q IntentQuery) (resp []*IntentResponse, err error) {
	defer func(start time.Time) { ls.done("ListIntents", start, err, zap.Int("count", len(resp))) }(time.Now())
	return ls.svc.ListIntents(ctx, q)
}

func (ls *logService) GetIntent(ctx context.Context, key intent.IntentKey) (resp *IntentResponse, err error) {
	defer func(start time.Time) { ls.done("GetIntent", start, err, zap.String("intent", key.String())) }(time.Now())
	return ls.svc.GetIntent(ctx, key)
}

func (ls *logService) ListBids(ctx context.Context, key intent.IntentKey) (resp []*BidResponse, err error) {
	defer func(start time.Time) { ls.done("ListBids", start, err, zap.String("intent", key.String())) }(time.Now())
	return ls.svc.ListBids(ctx, key)
}

func (ls *logService) ListSubmissions(ctx context.Context, f db.SubmissionFilter) (resp []*db.Submission, err error) {
	defer func(start time.Time) { ls.done("ListSubmissions", start, err, zap.Int("count", len(resp))) }(time.Now())
	return ls.svc.ListSubmissions(ctx, f)
}

func (ls *logService) Status(ctx context.Context) (resp *StatusResponse, err error) {
	defer func(start time.Time) { ls.done("Status", start, err) }(time.Now())
	return ls.svc.Status(ctx)
}

// AcceptBid wraps the service method with logging
func (ls *logService) AcceptBid(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) (resp *ActionResponse, err error) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("method", "AcceptBid"),
		zap.String("intent", intentKey.String()),
		zap.String("bid", bidKey.String()),
	}
	ls.logger.Info("AcceptBid started", fields...)

	defer func() {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
		if err != nil {
			ls.logger.Error("AcceptBid failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("AcceptBid completed", append(fields, zap.Int("submissions", len(resp.Submissions)))...)
	}()

	return ls.svc.AcceptBid(ctx, intentKey, bidKey)
}

// RejectBids wraps the service method with logging
func (ls *logService) RejectBids(ctx context.Context, key intent.IntentKey) (resp *ActionResponse, err error) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("method", "RejectBids"),
		zap.String("intent", key.String()),
	}
	ls.logger.Info("RejectBids started", fields...)

	defer func() {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
		if err != nil {
			ls.logger.Error("RejectBids failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("RejectBids completed", append(fields, zap.Int("submissions", len(resp.Submissions)))...)
	}()

	return ls.svc.RejectBids(ctx, key)
}
