package intentstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/uptrace/bun"

	"github.com/chainsafe/goldengate-middleware/pkg/db/dao"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

type pgStore struct {
	db bun.IDB
}

// NewPGStore creates a postgres implementation of the intent store.
// WithIntentLock takes a transaction-scoped advisory lock on the intent key.
func NewPGStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) GetIntent(ctx context.Context, key intent.IntentKey) (*intent.Intent, error) {
	row, err := s.selectIntent(ctx, s.db, key, false)
	if err != nil {
		return nil, err
	}
	return fromIntentDao(row)
}

func (s *pgStore) GetBid(ctx context.Context, key intent.BidKey) (*intent.Bid, error) {
	row, err := s.selectBid(ctx, s.db, key, false)
	if err != nil {
		return nil, err
	}
	return fromBidDao(row)
}

func (s *pgStore) ListBidsForIntent(ctx context.Context, key intent.IntentKey) ([]*intent.Bid, error) {
	var rows []dao.BidDao
	err := s.db.NewSelect().
		Model(&rows).
		Where("intent_chain_id = ?", int64(key.ChainID)).
		Where("intent_uid = ?", key.UID).
		Order("block ASC", "created_at ASC", "uid ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids for intent %s: %w", key, err)
	}
	return fromBidDaos(rows)
}

func (s *pgStore) ListIntents(ctx context.Context, opts ...QueryOption) ([]*intent.Intent, error) {
	options := buildOptions(opts)

	var rows []dao.IntentDao
	query := s.db.NewSelect().Model(&rows).Order("created_at ASC", "chain_id ASC", "uid ASC")
	if options.ChainID != nil {
		query = query.Where("chain_id = ?", int64(*options.ChainID))
	}
	if options.Destination != nil {
		query = query.Where("destination_chain_id = ?", int64(*options.Destination))
	}
	if options.Owner != nil {
		query = query.Where("owner = ?", options.Owner.Hex())
	}
	if len(options.States) > 0 {
		states := make([]string, 0, len(options.States))
		for _, st := range options.States {
			states = append(states, string(st))
		}
		query = query.Where("state IN (?)", bun.In(states))
	}
	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}

	out := make([]*intent.Intent, 0, len(rows))
	for i := range rows {
		in, err := fromIntentDao(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (s *pgStore) ListBids(ctx context.Context, opts ...QueryOption) ([]*intent.Bid, error) {
	options := buildOptions(opts)

	var rows []dao.BidDao
	query := s.db.NewSelect().Model(&rows).Order("block ASC", "created_at ASC", "uid ASC")
	if options.ChainID != nil {
		query = query.Where("chain_id = ?", int64(*options.ChainID))
	}
	if options.Proposer != nil {
		query = query.Where("proposer = ?", options.Proposer.Hex())
	}
	if len(options.BidStates) > 0 {
		states := make([]string, 0, len(options.BidStates))
		for _, st := range options.BidStates {
			states = append(states, string(st))
		}
		query = query.Where("state IN (?)", bun.In(states))
	}
	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return fromBidDaos(rows)
}

func (s *pgStore) UpsertIntent(ctx context.Context, in *intent.Intent) (bool, error) {
	next := in.Clone()
	changed := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		row, err := s.selectIntent(ctx, tx, next.Key, true)
		if errors.Is(err, intent.ErrIntentNotFound) {
			if err := intent.ValidateIntentUpdate(nil, next); err != nil {
				return err
			}
			next.CreatedAt, next.UpdatedAt = now, now
			if _, err := tx.NewInsert().Model(toIntentDao(next)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert intent %s: %w", next.Key, err)
			}
			changed = true
			return nil
		}
		if err != nil {
			return err
		}

		prev, err := fromIntentDao(row)
		if err != nil {
			return err
		}
		mergeIntent(prev, next)
		if err := intent.ValidateIntentUpdate(prev, next); err != nil {
			return err
		}
		if sameIntent(prev, next) {
			return nil
		}
		next.UpdatedAt = now
		if _, err := tx.NewUpdate().
			Model(toIntentDao(next)).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update intent %s: %w", next.Key, err)
		}
		changed = true
		return nil
	})
	return changed, err
}

func (s *pgStore) UpsertBid(ctx context.Context, b *intent.Bid) (bool, error) {
	next := b.Clone()
	changed := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		row, err := s.selectBid(ctx, tx, next.Key, true)
		if errors.Is(err, intent.ErrBidNotFound) {
			if err := intent.ValidateBidUpdate(nil, next); err != nil {
				return err
			}
			next.CreatedAt, next.UpdatedAt = now, now
			if _, err := tx.NewInsert().Model(toBidDao(next)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert bid %s: %w", next.Key, err)
			}
			changed = true
			return nil
		}
		if err != nil {
			return err
		}

		prev, err := fromBidDao(row)
		if err != nil {
			return err
		}
		mergeBid(prev, next)
		if err := intent.ValidateBidUpdate(prev, next); err != nil {
			return err
		}
		if sameBid(prev, next) {
			return nil
		}
		next.UpdatedAt = now
		if _, err := tx.NewUpdate().
			Model(toBidDao(next)).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update bid %s: %w", next.Key, err)
		}
		changed = true
		return nil
	})
	return changed, err
}

func (s *pgStore) RollbackIntent(ctx context.Context, in *intent.Intent) error {
	next := in.Clone()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.selectIntent(ctx, tx, next.Key, true)
		if err != nil {
			return err
		}
		prev, err := fromIntentDao(row)
		if err != nil {
			return err
		}
		mergeIntent(prev, next)
		if err := intent.ValidateIntentRollback(prev, next); err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model(toIntentDao(next)).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to roll back intent %s: %w", next.Key, err)
		}
		return nil
	})
}

func (s *pgStore) RollbackBid(ctx context.Context, b *intent.Bid) error {
	next := b.Clone()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.selectBid(ctx, tx, next.Key, true)
		if err != nil {
			return err
		}
		prev, err := fromBidDao(row)
		if err != nil {
			return err
		}
		mergeBid(prev, next)
		if err := intent.ValidateBidRollback(prev, next); err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model(toBidDao(next)).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to roll back bid %s: %w", next.Key, err)
		}
		return nil
	})
}

func (s *pgStore) WithIntentLock(ctx context.Context, key intent.IntentKey, fn func(ctx context.Context, s Store) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", "intent:"+key.String()); err != nil {
			return fmt.Errorf("failed to lock intent %s: %w", key, err)
		}
		return fn(ctx, &pgStore{db: tx})
	})
}

func (s *pgStore) selectIntent(ctx context.Context, db bun.IDB, key intent.IntentKey, forUpdate bool) (*dao.IntentDao, error) {
	row := new(dao.IntentDao)
	query := db.NewSelect().
		Model(row).
		Where("chain_id = ?", int64(key.ChainID)).
		Where("uid = ?", key.UID)
	if forUpdate {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", intent.ErrIntentNotFound, key)
		}
		return nil, fmt.Errorf("failed to get intent %s: %w", key, err)
	}
	return row, nil
}

func (s *pgStore) selectBid(ctx context.Context, db bun.IDB, key intent.BidKey, forUpdate bool) (*dao.BidDao, error) {
	row := new(dao.BidDao)
	query := db.NewSelect().
		Model(row).
		Where("chain_id = ?", int64(key.ChainID)).
		Where("uid = ?", key.UID)
	if forUpdate {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", intent.ErrBidNotFound, key)
		}
		return nil, fmt.Errorf("failed to get bid %s: %w", key, err)
	}
	return row, nil
}

func toIntentDao(in *intent.Intent) *dao.IntentDao {
	d := &dao.IntentDao{
		ChainID:            int64(in.Key.ChainID),
		UID:                in.Key.UID,
		Amount:             in.Amount.String(),
		MinAmountRecv:      in.MinAmountRecv.String(),
		DestinationChainID: int64(in.DestinationChainID),
		Beneficiary:        in.Beneficiary.Hex(),
		Owner:              addrPtr(in.Owner),
		Fulfiller:          addrPtr(in.Fulfiller),
		State:              string(in.State),
		Timestamp:          unixPtr(in.Timestamp),
		SourceBlock:        int64(in.SourceBlock),
		SourceTxHash:       in.SourceTxHash.Hex(),
		CreatedAt:          in.CreatedAt,
		UpdatedAt:          in.UpdatedAt,
	}
	if in.AcceptedBid != nil {
		chain := int64(in.AcceptedBid.ChainID)
		uid := in.AcceptedBid.UID
		d.AcceptedBidChainID = &chain
		d.AcceptedBidUID = &uid
	}
	return d
}

func fromIntentDao(d *dao.IntentDao) (*intent.Intent, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return nil, err
	}
	minRecv, err := parseAmount(d.MinAmountRecv)
	if err != nil {
		return nil, err
	}
	in := &intent.Intent{
		Key:                intent.IntentKey{ChainID: uint64(d.ChainID), UID: d.UID},
		Amount:             amount,
		MinAmountRecv:      minRecv,
		DestinationChainID: uint64(d.DestinationChainID),
		Beneficiary:        common.HexToAddress(d.Beneficiary),
		Owner:              addrValue(d.Owner),
		Fulfiller:          addrValue(d.Fulfiller),
		State:              intent.State(d.State),
		Timestamp:          timeValue(d.Timestamp),
		SourceBlock:        uint64(d.SourceBlock),
		SourceTxHash:       common.HexToHash(d.SourceTxHash),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.AcceptedBidChainID != nil && d.AcceptedBidUID != nil {
		in.AcceptedBid = &intent.BidKey{ChainID: uint64(*d.AcceptedBidChainID), UID: *d.AcceptedBidUID}
	}
	return in, nil
}

func toBidDao(b *intent.Bid) *dao.BidDao {
	return &dao.BidDao{
		ChainID:        int64(b.Key.ChainID),
		UID:            b.Key.UID,
		IntentChainID:  int64(b.Intent.ChainID),
		IntentUID:      b.Intent.UID,
		AmountProposed: b.AmountProposed.String(),
		Proposer:       addrPtr(b.Proposer),
		Destination:    addrPtr(b.Destination),
		Forwarding:     addrPtr(b.Forwarding),
		State:          string(b.State),
		Timestamp:      unixPtr(b.Timestamp),
		Block:          int64(b.Block),
		TxHash:         b.TxHash.Hex(),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func fromBidDao(d *dao.BidDao) (*intent.Bid, error) {
	amount, err := parseAmount(d.AmountProposed)
	if err != nil {
		return nil, err
	}
	return &intent.Bid{
		Key:            intent.BidKey{ChainID: uint64(d.ChainID), UID: d.UID},
		Intent:         intent.IntentKey{ChainID: uint64(d.IntentChainID), UID: d.IntentUID},
		AmountProposed: amount,
		Proposer:       addrValue(d.Proposer),
		Destination:    addrValue(d.Destination),
		Forwarding:     addrValue(d.Forwarding),
		State:          intent.BidState(d.State),
		Timestamp:      timeValue(d.Timestamp),
		Block:          uint64(d.Block),
		TxHash:         common.HexToHash(d.TxHash),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func fromBidDaos(rows []dao.BidDao) ([]*intent.Bid, error) {
	out := make([]*intent.Bid, 0, len(rows))
	for i := range rows {
		b, err := fromBidDao(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored amount %q", s)
	}
	return v, nil
}

func addrPtr(a common.Address) *string {
	if a == (common.Address{}) {
		return nil
	}
	s := a.Hex()
	return &s
}

func addrValue(s *string) common.Address {
	if s == nil {
		return common.Address{}
	}
	return common.HexToAddress(*s)
}

func unixPtr(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	v := t.Unix()
	return &v
}

func timeValue(v *int64) time.Time {
	if v == nil {
		return time.Time{}
	}
	return time.Unix(*v, 0).UTC()
}
