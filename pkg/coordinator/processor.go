package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
	"github.com/chainsafe/goldengate-middleware/pkg/watcher"
)

// errStreamClosed is returned when a stream ends while its context is still live
var errStreamClosed = errors.New("event stream closed")

// Stream is a resumable stream of one event type on one chain.
// *watcher.Watcher satisfies it.
type Stream interface {
	Event() string
	ChainID() uint64
	ResumeBlock(ctx context.Context) (uint64, error)
	Stream(ctx context.Context, fromBlock uint64) (<-chan *watcher.Event, <-chan error)
}

// EventEngine applies contract events to the store
type EventEngine interface {
	HandleNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) lifecycle.Result
	HandleNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) lifecycle.Result
}

// Handler reacts to events once the engine has recorded them. The user and
// solver drivers implement it.
type Handler interface {
	OnNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) error
	OnNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) error
}

// Processor feeds one stream into the engine, then into the handlers
type Processor struct {
	stream   Stream
	engine   EventEngine
	handlers []Handler
	logger   *zap.Logger

	running   atomic.Bool
	lastBlock atomic.Uint64
}

// NewProcessor creates a processor for stream
func NewProcessor(stream Stream, engine EventEngine, handlers []Handler, logger *zap.Logger) *Processor {
	return &Processor{
		stream:   stream,
		engine:   engine,
		handlers: handlers,
		logger: logger.With(
			zap.Uint64("chain_id", stream.ChainID()),
			zap.String("event", stream.Event())),
	}
}

// Start runs one stream session from the resume block. It returns when ctx is
// cancelled or the stream fails; the caller decides whether to restart.
func (p *Processor) Start(ctx context.Context) error {
	from, err := p.stream.ResumeBlock(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("Starting processor", zap.Uint64("from_block", from))

	eventCh, errCh := p.stream.Stream(ctx, from)
	p.running.Store(true)
	defer p.running.Store(false)

	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				// the error, if any, is already buffered
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("source stream error: %w", err)
					}
				default:
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errStreamClosed
			}
			err := p.processEvent(ctx, ev)
			ev.Done(err)
			if err != nil {
				// the watcher forgets the event and closes the stream
				for range eventCh {
				}
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processEvent applies ev to the engine and hands it to the handlers. An event the
// engine failed to record is returned as an error so it is delivered again; it
// never reaches the handlers. Replays reach the handlers too; they are idempotent.
func (p *Processor) processEvent(ctx context.Context, ev *watcher.Event) error {
	var res lifecycle.Result
	switch {
	case ev.Intent != nil:
		res = p.engine.HandleNewIntent(ctx, ev.Intent)
	case ev.Bid != nil:
		res = p.engine.HandleNewIntentBid(ctx, ev.Bid)
	default:
		p.logger.Warn("Dropping event without payload", zap.String("event_id", ev.ID()))
		return nil
	}

	if res.Outcome == lifecycle.OutcomeError {
		metrics.ErrorsTotal.WithLabelValues("coordinator", "engine").Inc()
		p.logger.Error("Failed to record event",
			zap.String("event_id", ev.ID()),
			zap.Error(res.Err))
		return fmt.Errorf("failed to record event %s: %w", ev.ID(), res.Err)
	}
	if ev.BlockNumber > p.lastBlock.Load() {
		p.lastBlock.Store(ev.BlockNumber)
	}

	for _, h := range p.handlers {
		var err error
		if ev.Intent != nil {
			err = h.OnNewIntent(ctx, ev.Intent)
		} else {
			err = h.OnNewIntentBid(ctx, ev.Bid)
		}
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues("coordinator", "handler").Inc()
			p.logger.Error("Failed to process event",
				zap.String("event_id", ev.ID()),
				zap.String("tx_hash", ev.TxHash.Hex()),
				zap.Error(err))
		}
	}
	return nil
}

// StreamStatus describes one processor for the status API
type StreamStatus struct {
	ChainID   uint64 `json:"chain_id"`
	Event     string `json:"event"`
	Running   bool   `json:"running"`
	LastBlock uint64 `json:"last_event_block"`
}

// Status reports whether the processor is streaming and the block of its last event
func (p *Processor) Status() StreamStatus {
	return StreamStatus{
		ChainID:   p.stream.ChainID(),
		Event:     p.stream.Event(),
		Running:   p.running.Load(),
		LastBlock: p.lastBlock.Load(),
	}
}
