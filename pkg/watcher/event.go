package watcher

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
)

// Event is one contract event delivered by a watcher. Exactly one of Intent and
// Bid is set, matching Kind.
//
// The consumer must call Done once it has finished with the event. The watcher
// delivers the next event and advances its checkpoint only after a nil Done.
type Event struct {
	Kind        string
	ChainID     uint64
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint

	Intent *ethereum.NewIntentEvent
	Bid    *ethereum.NewIntentBidEvent

	ack chan error
}

// Done reports the processing result back to the watcher. A non-nil err keeps the
// event eligible for redelivery and ends the stream. Only the first call counts.
func (e *Event) Done(err error) {
	if e.ack == nil {
		return
	}
	select {
	case e.ack <- err:
	default:
	}
}

// ID identifies the on-chain record the event announces. Two deliveries of the
// same record share an ID even if they come from different blocks after a reorg.
func (e *Event) ID() string {
	switch {
	case e.Intent != nil:
		return fmt.Sprintf("%s:%d:%s", ethereum.EventNewIntent, e.ChainID, e.Intent.IntentUID)
	case e.Bid != nil:
		return fmt.Sprintf("%s:%d:%s:%s:%s", ethereum.EventNewIntentBid, e.ChainID,
			e.Bid.SourceChainID, e.Bid.SourceIntentUID, e.Bid.BidUID)
	default:
		return fmt.Sprintf("%s:%d:%s:%d", e.Kind, e.ChainID, e.TxHash.Hex(), e.LogIndex)
	}
}

func fromIntentEvent(ev *ethereum.NewIntentEvent) *Event {
	return &Event{
		Kind:        ethereum.EventNewIntent,
		ChainID:     ev.ChainID,
		BlockNumber: ev.BlockNumber,
		TxHash:      ev.TxHash,
		LogIndex:    ev.LogIndex,
		Intent:      ev,
		ack:         make(chan error, 1),
	}
}

func fromBidEvent(ev *ethereum.NewIntentBidEvent) *Event {
	return &Event{
		Kind:        ethereum.EventNewIntentBid,
		ChainID:     ev.ChainID,
		BlockNumber: ev.BlockNumber,
		TxHash:      ev.TxHash,
		LogIndex:    ev.LogIndex,
		Bid:         ev,
		ack:         make(chan error, 1),
	}
}

// seenSet remembers the most recent identifiers up to a fixed capacity
type seenSet struct {
	capacity int
	order    []string
	next     int
	items    map[string]struct{}
}

func newSeenSet(capacity int) *seenSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &seenSet{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		items:    make(map[string]struct{}, capacity),
	}
}

// add records id and reports whether it was new
func (s *seenSet) add(id string) bool {
	if _, ok := s.items[id]; ok {
		return false
	}
	if len(s.order) < s.capacity {
		s.order = append(s.order, id)
	} else {
		delete(s.items, s.order[s.next])
		s.order[s.next] = id
		s.next = (s.next + 1) % s.capacity
	}
	s.items[id] = struct{}{}
	return true
}

// remove forgets id so a later delivery is treated as new
func (s *seenSet) remove(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order[i] = ""
			break
		}
	}
}
