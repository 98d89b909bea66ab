package dao

import "time"

// BidDao is a data access object that maps directly to the 'bids' table in PostgreSQL.
type BidDao struct {
	tableName      struct{}  `bun:"table:bids"` // nolint
	ChainID        int64     `json:"chain_id" bun:",pk,type:bigint"`
	UID            string    `json:"uid" bun:"uid,pk,type:numeric(78,0)"`
	IntentChainID  int64     `json:"intent_chain_id" bun:",notnull,type:bigint"`
	IntentUID      string    `json:"intent_uid" bun:",notnull,type:numeric(78,0)"`
	AmountProposed string    `json:"amount_proposed" bun:",notnull,type:numeric(78,0)"`
	Proposer       *string   `json:"proposer,omitempty" bun:",type:varchar(42)"`
	Destination    *string   `json:"destination,omitempty" bun:",type:varchar(42)"`
	Forwarding     *string   `json:"forwarding,omitempty" bun:",type:varchar(42)"`
	State          string    `json:"state" bun:",notnull,type:varchar(20)"`
	Timestamp      *int64    `json:"timestamp,omitempty" bun:",type:bigint"`
	Block          int64     `json:"block" bun:",notnull"`
	TxHash         string    `json:"tx_hash" bun:",notnull,type:varchar(66)"`
	CreatedAt      time.Time `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt      time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
