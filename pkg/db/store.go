package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/goldengate-middleware/pkg/db/dao"
)

// ErrSubmissionNotFound is returned when no submission matches the id
var ErrSubmissionNotFound = errors.New("submission not found")

const defaultListLimit = 100

// Store provides coordinator bookkeeping on PostgreSQL: watcher checkpoints,
// persisted nonces and the submission log.
type Store struct {
	db bun.IDB
}

// NewStore creates a new database store
func NewStore(db bun.IDB) *Store {
	return &Store{db: db}
}

// GetChainState returns the checkpoint of an event stream, or nil if none was stored
func (s *Store) GetChainState(ctx context.Context, chainID uint64, event string) (*ChainState, error) {
	row := new(dao.ChainStateDao)
	err := s.db.NewSelect().
		Model(row).
		Where("chain_id = ?", int64(chainID)).
		Where("event = ?", event).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chain state: %w", err)
	}
	return &ChainState{
		ChainID:       uint64(row.ChainID),
		Event:         row.Event,
		LastBlock:     uint64(row.LastBlock),
		LastBlockHash: row.LastBlockHash,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// SetChainState stores the checkpoint of an event stream
func (s *Store) SetChainState(ctx context.Context, chainID uint64, event string, block uint64, blockHash string) error {
	row := &dao.ChainStateDao{
		ChainID:       int64(chainID),
		Event:         event,
		LastBlock:     int64(block),
		LastBlockHash: blockHash,
		UpdatedAt:     time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (chain_id, event) DO UPDATE").
		Set("last_block = EXCLUDED.last_block").
		Set("last_block_hash = EXCLUDED.last_block_hash").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set chain state: %w", err)
	}
	return nil
}

// GetNonce returns the last nonce handed out for an account
func (s *Store) GetNonce(ctx context.Context, chainID uint64, address string) (uint64, bool, error) {
	row := new(dao.NonceStateDao)
	err := s.db.NewSelect().
		Model(row).
		Where("chain_id = ?", int64(chainID)).
		Where("address = ?", address).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get nonce: %w", err)
	}
	return uint64(row.Nonce), true, nil
}

// SetNonce records the last nonce handed out for an account. The stored value never decreases.
func (s *Store) SetNonce(ctx context.Context, chainID uint64, address string, nonce uint64) error {
	row := &dao.NonceStateDao{
		ChainID:   int64(chainID),
		Address:   address,
		Nonce:     int64(nonce),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (chain_id, address) DO UPDATE").
		Set("nonce = GREATEST(?TableAlias.nonce, EXCLUDED.nonce)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set nonce: %w", err)
	}
	return nil
}

// CreateSubmission inserts a submission record, assigning an id when empty
func (s *Store) CreateSubmission(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	if _, err := s.db.NewInsert().Model(toSubmissionDao(sub)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// UpdateSubmission records the tx hash, status and error of a submission
func (s *Store) UpdateSubmission(ctx context.Context, id string, status SubmissionStatus, txHash, errMsg string) error {
	res, err := s.db.NewUpdate().
		Model((*dao.SubmissionDao)(nil)).
		Set("status = ?", string(status)).
		Set("tx_hash = ?", nullString(txHash)).
		Set("error = ?", nullString(errMsg)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// ListSubmissions returns submissions newest first
func (s *Store) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]*Submission, error) {
	var rows []dao.SubmissionDao
	q := s.db.NewSelect().Model(&rows).Order("created_at DESC")
	if f.ChainID != 0 {
		q = q.Where("chain_id = ?", int64(f.ChainID))
	}
	if f.IntentUID != "" {
		q = q.Where("intent_uid = ?", f.IntentUID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if err := q.Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	out := make([]*Submission, 0, len(rows))
	for i := range rows {
		out = append(out, fromSubmissionDao(&rows[i]))
	}
	return out, nil
}

func toSubmissionDao(s *Submission) *dao.SubmissionDao {
	d := &dao.SubmissionDao{
		ID:            s.ID,
		ChainID:       int64(s.ChainID),
		Method:        s.Method,
		IntentChainID: int64(s.IntentChainID),
		IntentUID:     s.IntentUID,
		Sender:        s.Sender,
		TxHash:        nullString(s.TxHash),
		Status:        string(s.Status),
		Error:         nullString(s.Error),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.BidUID != "" {
		chain := int64(s.BidChainID)
		uid := s.BidUID
		d.BidChainID = &chain
		d.BidUID = &uid
	}
	return d
}

func fromSubmissionDao(d *dao.SubmissionDao) *Submission {
	s := &Submission{
		ID:            d.ID,
		ChainID:       uint64(d.ChainID),
		Method:        d.Method,
		IntentChainID: uint64(d.IntentChainID),
		IntentUID:     d.IntentUID,
		Sender:        d.Sender,
		Status:        SubmissionStatus(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.BidChainID != nil {
		s.BidChainID = uint64(*d.BidChainID)
	}
	if d.BidUID != nil {
		s.BidUID = *d.BidUID
	}
	if d.TxHash != nil {
		s.TxHash = *d.TxHash
	}
	if d.Error != nil {
		s.Error = *d.Error
	}
	return s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
