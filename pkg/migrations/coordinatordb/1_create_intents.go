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
		log.Println("creating intents table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.IntentDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.IntentDao{}, "state", "destination_chain_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping intents table...")
		return mghelper.DropTables(ctx, db, &dao.IntentDao{})
	})
}
