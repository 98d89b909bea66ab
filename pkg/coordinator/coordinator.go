// Package coordinator runs the event streams of every chain, applies their
// events through the lifecycle engine and hands them to the actor drivers.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/watcher"
)

// Actor is a role driver: it handles events and runs its own timer loop
type Actor interface {
	Handler
	Run(ctx context.Context) error
}

// Reconciler confirms transitions from contract views on an interval
type Reconciler interface {
	StartPeriodicReconciliation(interval time.Duration)
	Stop()
}

// Stopper waits for in-flight work to finish
type Stopper interface {
	Stop()
}

// Options tune stream restarts
type Options struct {
	RestartInitialInterval time.Duration
	RestartMaxInterval     time.Duration
}

// DefaultOptions returns restart settings for production use
func DefaultOptions() Options {
	return Options{
		RestartInitialInterval: time.Second,
		RestartMaxInterval:     time.Minute,
	}
}

// Coordinator orchestrates watchers, the lifecycle engine and the actors
type Coordinator struct {
	config     *config.Config
	opts       Options
	engine     EventEngine
	streams    []Stream
	actors     []Actor
	reconciler Reconciler
	submitter  Stopper
	logger     *zap.Logger

	mu         sync.Mutex
	processors []*Processor
	cancel     context.CancelFunc
	group      *errgroup.Group
	ready      atomic.Bool
}

// New creates a coordinator. Reconciler and submitter may be nil.
func New(
	cfg *config.Config,
	opts Options,
	engine EventEngine,
	streams []Stream,
	reconciler Reconciler,
	submitter Stopper,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		config:     cfg,
		opts:       opts,
		engine:     engine,
		streams:    streams,
		reconciler: reconciler,
		submitter:  submitter,
		logger:     logger,
	}
}

// AddActor registers a role driver. It must be called before Start.
func (c *Coordinator) AddActor(a Actor) {
	c.actors = append(c.actors, a)
}

// NewStreams creates a NewIntent and a NewIntentBid watcher for every configured chain
func NewStreams(cfg *config.Config, sources map[uint64]watcher.Source, checkpoints watcher.CheckpointStore, logger *zap.Logger) ([]Stream, error) {
	var streams []Stream
	for i := range cfg.Chains {
		chain := &cfg.Chains[i]
		src, ok := sources[chain.ChainID]
		if !ok {
			return nil, fmt.Errorf("no event source for chain %s (%d)", chain.Name, chain.ChainID)
		}
		for _, event := range []string{ethereum.EventNewIntent, ethereum.EventNewIntentBid} {
			w, err := watcher.New(chain, event, src, checkpoints, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s watcher for chain %s: %w", event, chain.Name, err)
			}
			streams = append(streams, w)
		}
	}
	return streams, nil
}

// Start launches every stream, the actor loops and periodic reconciliation.
// It returns once everything is running.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group != nil {
		return errors.New("coordinator already started")
	}
	c.logger.Info("Starting coordinator",
		zap.Int("streams", len(c.streams)),
		zap.Int("actors", len(c.actors)))

	handlers := make([]Handler, 0, len(c.actors))
	for _, a := range c.actors {
		handlers = append(handlers, a)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	c.cancel = cancel
	c.group = g

	c.processors = c.processors[:0]
	for _, s := range c.streams {
		p := NewProcessor(s, c.engine, handlers, c.logger)
		c.processors = append(c.processors, p)
		g.Go(func() error {
			c.runProcessor(gctx, p)
			return nil
		})
	}

	for _, a := range c.actors {
		g.Go(func() error {
			if err := a.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				metrics.ErrorsTotal.WithLabelValues("coordinator", "actor").Inc()
				c.logger.Error("Actor stopped", zap.Error(err))
			}
			return nil
		})
	}

	if c.reconciler != nil && c.config.Reconciliation.Enabled {
		c.reconciler.StartPeriodicReconciliation(c.config.Reconciliation.Interval)
	}

	c.ready.Store(true)
	c.logger.Info("Coordinator started")
	return nil
}

// runProcessor restarts a processor from its checkpoint whenever its stream
// fails, so one failing chain never stalls the others
func (c *Coordinator) runProcessor(ctx context.Context, p *Processor) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.RestartInitialInterval
	b.MaxInterval = c.opts.RestartMaxInterval
	b.MaxElapsedTime = 0

	status := p.Status()
	_ = backoff.RetryNotify(func() error {
		err := p.Start(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errStreamClosed
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		metrics.ErrorsTotal.WithLabelValues("coordinator", "stream").Inc()
		c.logger.Warn("Restarting event stream",
			zap.Uint64("chain_id", status.ChainID),
			zap.String("event", status.Event),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

// Stop cancels the streams and actors, stops reconciliation and waits for
// in-flight submissions
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return
	}
	c.logger.Info("Stopping coordinator")
	c.ready.Store(false)
	c.cancel()
	_ = c.group.Wait()
	if c.reconciler != nil && c.config.Reconciliation.Enabled {
		c.reconciler.Stop()
	}
	if c.submitter != nil {
		c.submitter.Stop()
	}
	c.group = nil
	c.logger.Info("Coordinator stopped")
}

// IsReady reports whether the coordinator is running
func (c *Coordinator) IsReady() bool {
	return c.ready.Load()
}

// Status reports every stream's progress
func (c *Coordinator) Status() []StreamStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StreamStatus, 0, len(c.processors))
	for _, p := range c.processors {
		out = append(out, p.Status())
	}
	return out
}
