package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/goldengate-middleware/pkg/migrations/coordinatordb"
	mghelper "github.com/chainsafe/goldengate-middleware/pkg/pgutil"
)

func TestCoordinatorDBMigrations_Apply(t *testing.T) {
	mghelper.RequireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, coordinatordb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	expectedTables := []string{
		"intents",
		"bids",
		"chain_state",
		"nonce_state",
		"submissions",
		"bun_migrations",
	}
	for _, table := range expectedTables {
		mghelper.AssertTableExists(t, db, table)
	}

	mghelper.AssertIndexExists(t, db, "idx_intents_state")
	mghelper.AssertIndexExists(t, db, "idx_intents_destination_chain_id")
	mghelper.AssertIndexExists(t, db, "idx_bids_intent")
	mghelper.AssertIndexExists(t, db, "idx_bids_state")
	mghelper.AssertIndexExists(t, db, "idx_submissions_intent_uid")
	mghelper.AssertIndexExists(t, db, "idx_submissions_status")

	mghelper.AssertRowCount(t, db, "bun_migrations", len(coordinatordb.Migrations.Sorted()))
	mghelper.AssertRowCount(t, db, "intents", 0)
}

func TestMigrations_Idempotency(t *testing.T) {
	mghelper.RequireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, coordinatordb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	mghelper.AssertTableExists(t, db, "intents")
	mghelper.AssertTableExists(t, db, "bids")
	mghelper.AssertRowCount(t, db, "bun_migrations", len(coordinatordb.Migrations.Sorted()))
}

func TestMigrations_Rollback(t *testing.T) {
	mghelper.RequireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, coordinatordb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	// all migrations run in one group, so one rollback drops everything
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	for _, table := range []string{"submissions", "nonce_state", "chain_state", "bids", "intents"} {
		mghelper.AssertTableNotExists(t, db, table)
	}
	mghelper.AssertRowCount(t, db, "bun_migrations", 0)
}
