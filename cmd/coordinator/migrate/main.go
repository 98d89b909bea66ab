package main

import (
	"flag"
	"log"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/migrations/coordinatordb"
	"github.com/chainsafe/goldengate-middleware/pkg/pgutil"
	mghelper "github.com/chainsafe/goldengate-middleware/pkg/pgutil/migrations"

	"github.com/uptrace/bun/migrate"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for coordinator database (%s)...\n", cfg.Database.Database)

	migrator := migrate.NewMigrator(db, coordinatordb.Migrations)
	if err := mghelper.RunMigrations(migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
