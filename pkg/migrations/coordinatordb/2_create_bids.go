package coordinatordb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/goldengate-middleware/pkg/db/dao"
	mghelper "github.com/chainsafe/goldengate-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating bids table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.BidDao{}); err != nil {
			return err
		}
		// bids are always listed per intent
		if err := mghelper.CreateCompositeIndex(ctx, db, (*dao.BidDao)(nil), "idx_bids_intent", "intent_chain_id", "intent_uid"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.BidDao{}, "state")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bids table...")
		return mghelper.DropTables(ctx, db, &dao.BidDao{})
	})
}
