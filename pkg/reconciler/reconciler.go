// Package reconciler confirms transitions that leave no contract event behind.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
)

// ViewSource reads contract views on one chain. *ethereum.Client satisfies it.
type ViewSource interface {
	GetIntent(ctx context.Context, intentUID *big.Int) (*ethereum.IntentView, error)
	GetBid(ctx context.Context, bidUID *big.Int) (*ethereum.BidView, error)
}

// Observer applies contract views to the store
type Observer interface {
	Store() intentstore.Reader
	ObserveIntent(ctx context.Context, key intent.IntentKey, view *ethereum.IntentView) lifecycle.Result
	ObserveBid(ctx context.Context, key intent.BidKey, view *ethereum.BidView) lifecycle.Result
}

// Summary counts the outcomes of one reconciliation pass
type Summary struct {
	Checked  int
	Applied  int
	Rejected int
	Failed   int
}

func (s *Summary) add(res lifecycle.Result) {
	s.Checked++
	switch res.Outcome {
	case lifecycle.OutcomeApplied:
		s.Applied++
	case lifecycle.OutcomeInvariant:
		s.Rejected++
	case lifecycle.OutcomeError:
		s.Failed++
	}
}

// Reconciler periodically reads getIntent and getBid for every non-terminal
// record and feeds the views to the engine. Acceptance, settlement, return and
// withdrawal are only visible this way.
type Reconciler struct {
	engine  Observer
	sources map[uint64]ViewSource
	logger  *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Reconciler over the view sources keyed by chain id
func New(engine Observer, sources map[uint64]ViewSource, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		engine:  engine,
		sources: sources,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// ReconcileAll runs one pass over open intents and live bids, then refreshes the
// per-state intent gauge. A failing view read is logged and the pass goes on.
func (r *Reconciler) ReconcileAll(ctx context.Context) (Summary, error) {
	start := time.Now()
	store := r.engine.Store()
	var summary Summary

	intents, err := store.ListIntents(ctx, intentstore.WithStates(intent.StateOpen, intent.StateBidAccepted))
	if err != nil {
		return summary, fmt.Errorf("failed to list intents: %w", err)
	}
	for _, in := range intents {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		src, ok := r.sources[in.Key.ChainID]
		if !ok {
			continue
		}
		view, err := src.GetIntent(ctx, in.Key.UIDInt())
		if err != nil {
			r.readFailed(&summary, "intent", in.Key.String(), err)
			continue
		}
		summary.add(r.engine.ObserveIntent(ctx, in.Key, view))
	}

	bids, err := store.ListBids(ctx, intentstore.WithBidStates(intent.BidProposed, intent.BidAccepted, intent.BidRejected))
	if err != nil {
		return summary, fmt.Errorf("failed to list bids: %w", err)
	}
	for _, b := range bids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		src, ok := r.sources[b.Key.ChainID]
		if !ok {
			continue
		}
		view, err := src.GetBid(ctx, b.Key.UIDInt())
		if err != nil {
			r.readFailed(&summary, "bid", b.Key.String(), err)
			continue
		}
		summary.add(r.engine.ObserveBid(ctx, b.Key, view))
	}

	if err := r.updateGauges(ctx); err != nil {
		r.logger.Warn("Failed to update intent gauges", zap.Error(err))
	}

	r.logger.Info("Reconciliation completed",
		zap.Int("checked", summary.Checked),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)))
	return summary, nil
}

func (r *Reconciler) readFailed(summary *Summary, kind, key string, err error) {
	summary.Checked++
	summary.Failed++
	metrics.ErrorsTotal.WithLabelValues("reconciler", "view_"+kind).Inc()
	r.logger.Warn("Failed to read contract view",
		zap.String("kind", kind),
		zap.String("key", key),
		zap.Error(err))
}

func (r *Reconciler) updateGauges(ctx context.Context) error {
	all, err := r.engine.Store().ListIntents(ctx)
	if err != nil {
		return err
	}
	counts := map[intent.State]int{
		intent.StateOpen:        0,
		intent.StateBidAccepted: 0,
		intent.StateFulfilled:   0,
		intent.StateReturned:    0,
	}
	for _, in := range all {
		counts[in.State]++
	}
	for state, n := range counts {
		metrics.IntentsByState.WithLabelValues(string(state)).Set(float64(n))
	}
	return nil
}

// StartPeriodicReconciliation starts a background goroutine that reconciles periodically
func (r *Reconciler) StartPeriodicReconciliation(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic reconciliation", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if _, err := r.ReconcileAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
					r.logger.Error("Periodic reconciliation failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic reconciliation")
				return
			}
		}
	}()
}

// Stop stops the periodic reconciliation
func (r *Reconciler) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
