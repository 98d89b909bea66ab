package dao

import "time"

// SubmissionDao is a data access object that maps directly to the 'submissions' table in PostgreSQL.
type SubmissionDao struct {
	tableName     struct{}  `bun:"table:submissions"` // nolint
	ID            string    `json:"id" bun:",pk,type:uuid"`
	ChainID       int64     `json:"chain_id" bun:",notnull,type:bigint"`
	Method        string    `json:"method" bun:",notnull,type:varchar(64)"`
	IntentChainID int64     `json:"intent_chain_id" bun:",notnull,type:bigint"`
	IntentUID     string    `json:"intent_uid" bun:",notnull,type:numeric(78,0)"`
	BidChainID    *int64    `json:"bid_chain_id,omitempty" bun:",type:bigint"`
	BidUID        *string   `json:"bid_uid,omitempty" bun:",type:numeric(78,0)"`
	Sender        string    `json:"sender" bun:",notnull,type:varchar(42)"`
	TxHash        *string   `json:"tx_hash,omitempty" bun:",type:varchar(66)"`
	Status        string    `json:"status" bun:",notnull,type:varchar(20)"`
	Error         *string   `json:"error,omitempty" bun:",type:text"`
	CreatedAt     time.Time `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
