package dao

import "time"

// ChainStateDao is a data access object that maps directly to the 'chain_state' table in PostgreSQL.
// One row holds the watcher checkpoint of one event stream on one chain.
type ChainStateDao struct {
	tableName     struct{}  `bun:"table:chain_state"` // nolint
	ChainID       int64     `json:"chain_id" bun:",pk,type:bigint"`
	Event         string    `json:"event" bun:",pk,type:varchar(64)"`
	LastBlock     int64     `json:"last_block" bun:",notnull"`
	LastBlockHash string    `json:"last_block_hash" bun:",notnull,type:varchar(66)"`
	UpdatedAt     time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
