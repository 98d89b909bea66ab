package db

import (
	"time"
)

// SubmissionStatus is the outcome of handing a transaction to the chain gateway
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionReverted  SubmissionStatus = "reverted"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission records one contract call sent on behalf of an actor
type Submission struct {
	ID            string           `json:"id"`
	ChainID       uint64           `json:"chain_id"`
	Method        string           `json:"method"`
	IntentChainID uint64           `json:"intent_chain_id"`
	IntentUID     string           `json:"intent_uid"`
	BidChainID    uint64           `json:"bid_chain_id,omitempty"`
	BidUID        string           `json:"bid_uid,omitempty"`
	Sender        string           `json:"sender"`
	TxHash        string           `json:"tx_hash,omitempty"`
	Status        SubmissionStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ChainState tracks the last processed block of one event stream on one chain
type ChainState struct {
	ChainID       uint64
	Event         string
	LastBlock     uint64
	LastBlockHash string
	UpdatedAt     time.Time
}

// SubmissionFilter narrows ListSubmissions
type SubmissionFilter struct {
	ChainID   uint64
	IntentUID string
	Status    SubmissionStatus
	Limit     int
}
