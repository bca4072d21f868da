// Package migrate applies versioned SQL schema migrations to the config
// database and the telemetry sample store.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chrissnell/telemetrychart/internal/log"
)

// Dialect selects the SQL flavor of the version bookkeeping statements
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DefaultTable records applied versions
const DefaultTable = "schema_migrations"

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Format: 001_migration_name.up.sql or 001_migration_name.down.sql
var fileRegex = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Load reads every migration file in the root of fsys, sorted by version.
// Files that do not follow the naming scheme are ignored.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		matches := fileRegex.FindStringSubmatch(e.Name())
		if e.IsDir() || matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in file %s: %w", e.Name(), err)
		}
		content, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: strings.ReplaceAll(matches[2], "_", " ")}
			byVersion[version] = m
		}
		if matches[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %d has no up SQL", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrator handles the execution of migrations
type Migrator struct {
	db         *sql.DB
	dialect    Dialect
	table      string
	migrations []Migration
}

// NewMigrator creates a migrator for migrations, which must be sorted by
// version as Load returns them.
func NewMigrator(db *sql.DB, dialect Dialect, migrations []Migration) *Migrator {
	return &Migrator{
		db:         db,
		dialect:    dialect,
		table:      DefaultTable,
		migrations: migrations,
	}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	ts := "DATETIME"
	if m.dialect == Postgres {
		ts = "TIMESTAMP"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version INTEGER PRIMARY KEY,
		applied_at %s DEFAULT CURRENT_TIMESTAMP
	)`, m.table, ts)
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// Version returns the highest applied migration version, 0 when none
func (m *Migrator) Version(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	var version int
	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", m.table)
	if err := m.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Pending returns the migrations newer than the applied version
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in version order
func (m *Migrator) Up(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		if err := m.apply(ctx, mig.Version, mig.Name, mig.Up, mig.Version); err != nil {
			return err
		}
	}
	return nil
}

// Down reverts applied migrations newer than target, newest first
func (m *Migrator) Down(ctx context.Context, target int) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if target >= current {
		return fmt.Errorf("target version %d must be less than current version %d", target, current)
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version <= target || mig.Version > current {
			continue
		}
		if mig.Down == "" {
			return fmt.Errorf("migration %d has no down SQL", mig.Version)
		}
		if err := m.apply(ctx, mig.Version, mig.Name, mig.Down, mig.Version-1); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one migration body and records the resulting version in the
// same transaction.
func (m *Migrator) apply(ctx context.Context, version int, name, body string, newVersion int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("migration %d (%s): %w", version, name, err)
	}
	if err := m.setVersion(ctx, tx, newVersion); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}

	log.Infow("applied migration", "version", version, "name", name, "now_at", newVersion)
	return nil
}

func (m *Migrator) setVersion(ctx context.Context, tx *sql.Tx, version int) error {
	var err error
	switch {
	case version == 0:
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", m.table))
	case m.dialect == Postgres:
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version > $1", m.table), version)
		if err == nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (version, applied_at)
				VALUES ($1, CURRENT_TIMESTAMP)
				ON CONFLICT (version) DO UPDATE SET applied_at = CURRENT_TIMESTAMP`, m.table), version)
		}
	default:
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version > ?", m.table), version)
		if err == nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (version, applied_at)
				VALUES (?, CURRENT_TIMESTAMP)`, m.table), version)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}
