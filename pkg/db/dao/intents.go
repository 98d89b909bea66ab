package dao

import "time"

// IntentDao is a data access object that maps directly to the 'intents' table in PostgreSQL.
// Amounts are stored as numeric(78,0) and carried as decimal strings.
type IntentDao struct {
	tableName          struct{}  `bun:"table:intents"` // nolint
	ChainID            int64     `json:"chain_id" bun:",pk,type:bigint"`
	UID                string    `json:"uid" bun:"uid,pk,type:numeric(78,0)"`
	Amount             string    `json:"amount" bun:",notnull,type:numeric(78,0)"`
	MinAmountRecv      string    `json:"min_amount_recv" bun:",notnull,type:numeric(78,0)"`
	DestinationChainID int64     `json:"destination_chain_id" bun:",notnull,type:bigint"`
	Beneficiary        string    `json:"beneficiary" bun:",notnull,type:varchar(42)"`
	Owner              *string   `json:"owner,omitempty" bun:",type:varchar(42)"`
	Fulfiller          *string   `json:"fulfiller,omitempty" bun:",type:varchar(42)"`
	AcceptedBidChainID *int64    `json:"accepted_bid_chain_id,omitempty" bun:",type:bigint"`
	AcceptedBidUID     *string   `json:"accepted_bid_uid,omitempty" bun:",type:numeric(78,0)"`
	State              string    `json:"state" bun:",notnull,type:varchar(20)"`
	Timestamp          *int64    `json:"timestamp,omitempty" bun:",type:bigint"`
	SourceBlock        int64     `json:"source_block" bun:",notnull"`
	SourceTxHash       string    `json:"source_tx_hash" bun:",notnull,type:varchar(66)"`
	CreatedAt          time.Time `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt          time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
