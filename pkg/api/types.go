package api

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/goldengate-middleware/pkg/coordinator"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

// KeyResponse identifies an intent or bid
type KeyResponse struct {
	ChainID uint64 `json:"chain_id"`
	UID     string `json:"uid"`
}

// Amount carries a wei value and its ether rendering
type Amount struct {
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

func newAmount(v *big.Int) Amount {
	if v == nil {
		return Amount{Wei: "0", Ether: "0"}
	}
	return Amount{Wei: v.String(), Ether: ethereum.FormatEther(v)}
}

// IntentResponse is the API view of an intent
type IntentResponse struct {
	KeyResponse
	Amount             Amount       `json:"amount"`
	MinAmountRecv      Amount       `json:"min_amount_recv"`
	DestinationChainID uint64       `json:"destination_chain_id"`
	Beneficiary        string       `json:"beneficiary"`
	Owner              string       `json:"owner,omitempty"`
	Fulfiller          string       `json:"fulfiller,omitempty"`
	AcceptedBid        *KeyResponse `json:"accepted_bid,omitempty"`
	State              intent.State `json:"state"`
	Timestamp          *time.Time   `json:"timestamp,omitempty"`
	SourceBlock        uint64       `json:"source_block,omitempty"`
	SourceTxHash       string       `json:"source_tx_hash,omitempty"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// BidResponse is the API view of a bid
type BidResponse struct {
	KeyResponse
	Intent         KeyResponse     `json:"intent"`
	AmountProposed Amount          `json:"amount_proposed"`
	Proposer       string          `json:"proposer,omitempty"`
	Destination    string          `json:"destination,omitempty"`
	Forwarding     string          `json:"forwarding,omitempty"`
	State          intent.BidState `json:"state"`
	Timestamp      *time.Time      `json:"timestamp,omitempty"`
	Block          uint64          `json:"block,omitempty"`
	TxHash         string          `json:"tx_hash,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StatusResponse describes the running coordinator
type StatusResponse struct {
	Ready   bool                       `json:"ready"`
	Streams []coordinator.StreamStatus `json:"streams"`
	Intents map[intent.State]int       `json:"intents"`
}

// ActionResponse lists the transactions an admin action submitted
type ActionResponse struct {
	Outcome     string           `json:"outcome"`
	Submissions []*db.Submission `json:"submissions"`
}

func address(a common.Address) string {
	if a == (common.Address{}) {
		return ""
	}
	return a.Hex()
}

func hash(h common.Hash) string {
	if h == (common.Hash{}) {
		return ""
	}
	return h.Hex()
}

func timestamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toIntentResponse(in *intent.Intent) *IntentResponse {
	resp := &IntentResponse{
		KeyResponse:        KeyResponse{ChainID: in.Key.ChainID, UID: in.Key.UID},
		Amount:             newAmount(in.Amount),
		MinAmountRecv:      newAmount(in.MinAmountRecv),
		DestinationChainID: in.DestinationChainID,
		Beneficiary:        in.Beneficiary.Hex(),
		Owner:              address(in.Owner),
		Fulfiller:          address(in.Fulfiller),
		State:              in.State,
		Timestamp:          timestamp(in.Timestamp),
		SourceBlock:        in.SourceBlock,
		SourceTxHash:       hash(in.SourceTxHash),
		UpdatedAt:          in.UpdatedAt,
	}
	if in.AcceptedBid != nil {
		resp.AcceptedBid = &KeyResponse{ChainID: in.AcceptedBid.ChainID, UID: in.AcceptedBid.UID}
	}
	return resp
}

func toBidResponse(b *intent.Bid) *BidResponse {
	return &BidResponse{
		KeyResponse:    KeyResponse{ChainID: b.Key.ChainID, UID: b.Key.UID},
		Intent:         KeyResponse{ChainID: b.Intent.ChainID, UID: b.Intent.UID},
		AmountProposed: newAmount(b.AmountProposed),
		Proposer:       address(b.Proposer),
		Destination:    address(b.Destination),
		Forwarding:     address(b.Forwarding),
		State:          b.State,
		Timestamp:      timestamp(b.Timestamp),
		Block:          b.Block,
		TxHash:         hash(b.TxHash),
		UpdatedAt:      b.UpdatedAt,
	}
}
