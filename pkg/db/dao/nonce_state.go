package dao

import "time"

// NonceStateDao is a data access object that maps directly to the 'nonce_state' table in PostgreSQL.
// Nonce is the last nonce handed out for the account, not the next one.
type NonceStateDao struct {
	tableName struct{}  `bun:"table:nonce_state"` // nolint
	ChainID   int64     `json:"chain_id" bun:",pk,type:bigint"`
	Address   string    `json:"address" bun:",pk,type:varchar(42)"`
	Nonce     int64     `json:"nonce" bun:",notnull"`
	UpdatedAt time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
