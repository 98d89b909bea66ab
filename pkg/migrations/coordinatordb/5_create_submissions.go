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
		log.Println("creating submissions table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.SubmissionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.SubmissionDao{}, "intent_uid", "status", "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping submissions table...")
		return mghelper.DropTables(ctx, db, &dao.SubmissionDao{})
	})
}
