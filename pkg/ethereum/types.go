package ethereum

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum/contracts"
)

// Event names as emitted by the GoldenGate contract
const (
	EventNewIntent    = "NewIntent"
	EventNewIntentBid = "NewIntentBid"
)

// NewIntentEvent represents an intent created on a source chain
type NewIntentEvent struct {
	ChainID            uint64
	IntentUID          *big.Int
	AmountDeposited    *big.Int
	MinAmountRecv      *big.Int
	DestinationChainID *big.Int
	Beneficiary        common.Address
	BlockNumber        uint64
	TxHash             common.Hash
	LogIndex           uint
}

// NewIntentBidEvent represents a solver proposal posted on a destination chain
type NewIntentBidEvent struct {
	ChainID         uint64
	SourceChainID   *big.Int
	SourceIntentUID *big.Int
	BidUID          *big.Int
	AmountProposed  *big.Int
	BlockNumber     uint64
	TxHash          common.Hash
	LogIndex        uint
}

// IntentView is the contract's view of an intent as returned by getIntent
type IntentView struct {
	Amount             *big.Int
	MinAmountRecv      *big.Int
	DestinationChainID uint32
	Beneficiary        common.Address
	Executed           bool
	Returned           bool
	Owner              common.Address
	Fulfiller          common.Address
	Timestamp          time.Time
}

// Exists reports whether the contract holds a record for the queried uid
func (v *IntentView) Exists() bool {
	return v.Owner != (common.Address{})
}

// BidView is the contract's view of a bid as returned by getBid
type BidView struct {
	SourceChainID  *big.Int
	IntentUID      *big.Int
	AmountProposed *big.Int
	Proposer       common.Address
	Destination    common.Address
	Forwarding     common.Address
	Executed       bool
	Returned       bool
	Timestamp      time.Time
}

// Exists reports whether the contract holds a record for the queried uid
func (v *BidView) Exists() bool {
	return v.Proposer != (common.Address{})
}

func intentViewFrom(in contracts.GoldenGateIntent) *IntentView {
	return &IntentView{
		Amount:             in.Amount,
		MinAmountRecv:      in.MinAmountRecv,
		DestinationChainID: in.ChainId,
		Beneficiary:        in.BeneficiaryAddress,
		Executed:           in.Executed,
		Returned:           in.Returned,
		Owner:              in.Owner,
		Fulfiller:          in.Fulfiller,
		Timestamp:          unixTime(in.Timestamp),
	}
}

func bidViewFrom(b contracts.GoldenGateBid) *BidView {
	return &BidView{
		SourceChainID:  b.SourceChainId,
		IntentUID:      b.IntentUid,
		AmountProposed: b.AmountProposed,
		Proposer:       b.Proposer,
		Destination:    b.Destination,
		Forwarding:     b.Forwarding,
		Executed:       b.Executed,
		Returned:       b.Returned,
		Timestamp:      unixTime(b.Timestamp),
	}
}

func unixTime(ts *big.Int) time.Time {
	if ts == nil || !ts.IsInt64() || ts.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(ts.Int64(), 0).UTC()
}
