package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/pkg/migrate"
)

func main() {
	var (
		schema  = flag.String("schema", migrate.ConfigSchema, "Schema to migrate: config (SQLite config database) or telemetry (PostgreSQL sample store)")
		dsn     = flag.String("dsn", "", "Database path (config) or connection string (telemetry)")
		command = flag.String("command", "up", "Migration command: up, down, version, status")
		target  = flag.String("target", "", "Target version for the down command")
		debug   = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintf(os.Stderr, "Error: -dsn flag is required\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	migrations, err := migrate.Schema(*schema)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, dialect, err := open(*schema, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := run(context.Background(), migrate.NewMigrator(db, dialect, migrations), *command, *target); err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

// open connects to the database holding schema
func open(schema, dsn string) (*sql.DB, migrate.Dialect, error) {
	driver, dialect := "sqlite", migrate.SQLite
	if schema == migrate.TelemetrySchema {
		driver, dialect = "pgx", migrate.Postgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

func run(ctx context.Context, m *migrate.Migrator, command, target string) error {
	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		if target == "" {
			return fmt.Errorf("-target is required for the down command")
		}
		v, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid target version: %w", err)
		}
		return m.Down(ctx, v)
	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Current version: %d\n", v)
		return nil
	case "status":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		pending, err := m.Pending(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Current version: %d\n", v)
		fmt.Printf("Pending migrations: %d\n", len(pending))
		for _, mig := range pending {
			fmt.Printf("  %d: %s\n", mig.Version, mig.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
