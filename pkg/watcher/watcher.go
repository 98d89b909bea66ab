// Package watcher turns contract event logs into an ordered, deduplicated and
// resumable stream.
package watcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
)

const defaultSeenCapacity = 10000

// Source fetches confirmed contract events from one chain
type Source interface {
	ChainID() uint64
	SafeBlock(ctx context.Context) (uint64, error)
	QueryNewIntents(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentEvent, error)
	QueryNewIntentBids(ctx context.Context, from, to uint64) ([]*ethereum.NewIntentBidEvent, error)
}

// CheckpointStore persists the last fully delivered block per chain and event
type CheckpointStore interface {
	GetChainState(ctx context.Context, chainID uint64, event string) (*db.ChainState, error)
	SetChainState(ctx context.Context, chainID uint64, event string, block uint64, blockHash string) error
}

// Watcher polls one event type on one chain
type Watcher struct {
	chain       *config.ChainConfig
	event       string
	source      Source
	checkpoints CheckpointStore
	seen        *seenSet
	logger      *zap.Logger
}

// New creates a watcher for event (ethereum.EventNewIntent or ethereum.EventNewIntentBid)
func New(chain *config.ChainConfig, event string, source Source, checkpoints CheckpointStore, logger *zap.Logger) (*Watcher, error) {
	if event != ethereum.EventNewIntent && event != ethereum.EventNewIntentBid {
		return nil, fmt.Errorf("unsupported event %q", event)
	}
	if source.ChainID() != chain.ChainID {
		return nil, fmt.Errorf("source chain %d does not match configured chain %d", source.ChainID(), chain.ChainID)
	}
	return &Watcher{
		chain:       chain,
		event:       event,
		source:      source,
		checkpoints: checkpoints,
		seen:        newSeenSet(defaultSeenCapacity),
		logger: logger.With(
			zap.Uint64("chain_id", chain.ChainID),
			zap.String("event", event)),
	}, nil
}

// Event returns the event type this watcher delivers
func (w *Watcher) Event() string {
	return w.event
}

// ChainID returns the chain this watcher polls
func (w *Watcher) ChainID() uint64 {
	return w.chain.ChainID
}

// ResumeBlock returns the block a new stream should start from: the stored checkpoint
// minus the configured lookback, or the configured start block when nothing was stored.
// Events in the lookback window are delivered again; consumers treat them as replays.
func (w *Watcher) ResumeBlock(ctx context.Context) (uint64, error) {
	state, err := w.checkpoints.GetChainState(ctx, w.chain.ChainID, w.event)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if state == nil {
		w.logger.Info("No checkpoint stored, starting from configured block",
			zap.Uint64("block", w.chain.StartBlock))
		return w.chain.StartBlock, nil
	}

	from := state.LastBlock + 1
	if from > w.chain.LookbackBlocks {
		from -= w.chain.LookbackBlocks
	} else {
		from = 0
	}
	if from < w.chain.StartBlock {
		from = w.chain.StartBlock
	}
	w.logger.Info("Resuming from checkpoint",
		zap.Uint64("checkpoint", state.LastBlock),
		zap.Uint64("from_block", from))
	return from, nil
}

// Stream polls [fromBlock, safe head] on the chain's polling interval and delivers
// events in non-decreasing block order, one at a time. The checkpoint advances after
// every block range whose events were all acknowledged with a nil Done. Both channels close when ctx is cancelled or after the
// first error is sent.
func (w *Watcher) Stream(ctx context.Context, fromBlock uint64) (<-chan *Event, <-chan error) {
	eventCh := make(chan *Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(eventCh)
		defer close(errCh)

		w.logger.Info("Starting event stream", zap.Uint64("from_block", fromBlock))
		next := fromBlock

		ticker := time.NewTicker(w.chain.PollingInterval)
		defer ticker.Stop()

		for {
			var err error
			next, err = w.poll(ctx, next, eventCh)
			if err != nil {
				if ctx.Err() == nil {
					metrics.ErrorsTotal.WithLabelValues("watcher", "poll").Inc()
					errCh <- err
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return eventCh, errCh
}

// poll delivers everything between next and the safe head and returns the new next block
func (w *Watcher) poll(ctx context.Context, next uint64, out chan<- *Event) (uint64, error) {
	safe, err := w.source.SafeBlock(ctx)
	if err != nil {
		return next, fmt.Errorf("failed to get safe block: %w", err)
	}
	if safe < next {
		return next, nil
	}

	rangeSize := w.chain.MaxBlockRange
	if rangeSize == 0 {
		rangeSize = safe - next + 1
	}

	for start := next; start <= safe; {
		end := start + rangeSize - 1
		if end > safe || end < start {
			end = safe
		}

		events, err := w.fetch(ctx, start, end)
		if err != nil {
			return start, err
		}
		for _, ev := range events {
			if !w.seen.add(ev.ID()) {
				w.logger.Debug("Skipping redelivered event", zap.String("id", ev.ID()))
				continue
			}
			if err := w.deliver(ctx, ev, out); err != nil {
				w.seen.remove(ev.ID())
				return start, err
			}
		}

		if err := w.checkpoints.SetChainState(ctx, w.chain.ChainID, w.event, end, ""); err != nil {
			return start, fmt.Errorf("failed to store checkpoint: %w", err)
		}
		metrics.LastProcessedBlock.WithLabelValues(w.chain.Name, w.event).Set(float64(end))
		if len(events) > 0 {
			w.logger.Debug("Delivered block range",
				zap.Uint64("from", start),
				zap.Uint64("to", end),
				zap.Int("events", len(events)))
		}
		start = end + 1
	}
	return safe + 1, nil
}

// deliver hands ev to the consumer and waits until it is done with it
func (w *Watcher) deliver(ctx context.Context, ev *Event, out chan<- *Event) error {
	select {
	case out <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.ack:
		if err != nil {
			return fmt.Errorf("event %s not processed: %w", ev.ID(), err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) fetch(ctx context.Context, from, to uint64) ([]*Event, error) {
	var events []*Event
	switch w.event {
	case ethereum.EventNewIntent:
		raw, err := w.source.QueryNewIntents(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, ev := range raw {
			events = append(events, fromIntentEvent(ev))
		}
	case ethereum.EventNewIntentBid:
		raw, err := w.source.QueryNewIntentBids(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, ev := range raw {
			events = append(events, fromBidEvent(ev))
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})
	return events, nil
}
