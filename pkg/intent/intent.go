// Package intent defines the intent and bid records shared by the store, the lifecycle
// engine and the actor drivers, together with the state machine both records follow.
package intent

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvariantViolation marks a change the state machine forbids
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrIntentNotFound is returned when an intent lookup finds no matching record
	ErrIntentNotFound = errors.New("intent not found")
	// ErrBidNotFound is returned when a bid lookup finds no matching record
	ErrBidNotFound = errors.New("bid not found")
)

// State is the lifecycle state of an intent
type State string

const (
	StateOpen        State = "open"
	StateBidAccepted State = "bid_accepted"
	StateFulfilled   State = "fulfilled"
	StateReturned    State = "returned"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateFulfilled || s == StateReturned
}

// BidState is the lifecycle state of a bid
type BidState string

const (
	BidProposed  BidState = "proposed"
	BidAccepted  BidState = "accepted"
	BidExecuted  BidState = "executed"
	BidWithdrawn BidState = "withdrawn"
	// BidRejected marks a sibling of an accepted bid, or a bid on an intent that was returned
	BidRejected BidState = "rejected"
)

// Terminal reports whether no further transition is possible
func (s BidState) Terminal() bool {
	return s == BidExecuted || s == BidWithdrawn
}

// IntentKey identifies an intent: the uid is unique per source chain
type IntentKey struct {
	ChainID uint64
	UID     string
}

// NewIntentKey builds a key from the on-chain uint256 uid
func NewIntentKey(chainID uint64, uid *big.Int) IntentKey {
	return IntentKey{ChainID: chainID, UID: uid.String()}
}

// UIDInt returns the uid as an integer for contract calls
func (k IntentKey) UIDInt() *big.Int {
	v, _ := new(big.Int).SetString(k.UID, 10)
	return v
}

func (k IntentKey) String() string {
	return fmt.Sprintf("%d/%s", k.ChainID, k.UID)
}

// BidKey identifies a bid: the uid is unique per destination chain
type BidKey struct {
	ChainID uint64
	UID     string
}

// NewBidKey builds a key from the on-chain uint256 uid
func NewBidKey(chainID uint64, uid *big.Int) BidKey {
	return BidKey{ChainID: chainID, UID: uid.String()}
}

// UIDInt returns the uid as an integer for contract calls
func (k BidKey) UIDInt() *big.Int {
	v, _ := new(big.Int).SetString(k.UID, 10)
	return v
}

func (k BidKey) String() string {
	return fmt.Sprintf("%d/%s", k.ChainID, k.UID)
}

// ParseKey parses a chain id and decimal uid pair as used in API paths
func ParseKey(chain, uid string) (uint64, *big.Int, error) {
	chainID, err := strconv.ParseUint(chain, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid chain id %q: %w", chain, err)
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(uid), 10)
	if !ok || v.Sign() < 0 {
		return 0, nil, fmt.Errorf("invalid uid %q", uid)
	}
	return chainID, v, nil
}

// Intent is a request to move value from a source chain to a destination chain
type Intent struct {
	Key                IntentKey
	Amount             *big.Int
	MinAmountRecv      *big.Int
	DestinationChainID uint64
	Beneficiary        common.Address
	Owner              common.Address
	Fulfiller          common.Address
	AcceptedBid        *BidKey
	State              State
	Timestamp          time.Time
	SourceBlock        uint64
	SourceTxHash       common.Hash
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasFulfiller reports whether a fulfiller has been recorded
func (i *Intent) HasFulfiller() bool {
	return i.Fulfiller != (common.Address{})
}

// Clone returns a deep copy so callers can mutate without touching stored records
func (i *Intent) Clone() *Intent {
	if i == nil {
		return nil
	}
	c := *i
	c.Amount = cloneInt(i.Amount)
	c.MinAmountRecv = cloneInt(i.MinAmountRecv)
	if i.AcceptedBid != nil {
		k := *i.AcceptedBid
		c.AcceptedBid = &k
	}
	return &c
}

// Bid is a solver's offer to fulfil an intent, posted on the destination chain
type Bid struct {
	Key            BidKey
	Intent         IntentKey
	AmountProposed *big.Int
	Proposer       common.Address
	Destination    common.Address
	Forwarding     common.Address
	State          BidState
	Timestamp      time.Time
	Block          uint64
	TxHash         common.Hash
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Executed mirrors the contract flag: the bid paid out to the beneficiary
func (b *Bid) Executed() bool {
	return b.State == BidExecuted
}

// Returned mirrors the contract flag: the solver's deposit was given back
func (b *Bid) Returned() bool {
	return b.State == BidWithdrawn
}

// Clone returns a deep copy
func (b *Bid) Clone() *Bid {
	if b == nil {
		return nil
	}
	c := *b
	c.AmountProposed = cloneInt(b.AmountProposed)
	return &c
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
