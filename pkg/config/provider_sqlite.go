package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/telemetrychart/pkg/migrate"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Settings live in the config_values (section, key, value) table, which is
// created on open if missing.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrations, err := migrate.Schema(migrate.ConfigSchema)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.NewMigrator(db, migrate.SQLite, migrations).Up(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate config database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	rows, err := s.db.Query(`SELECT section, key, value FROM config_values ORDER BY section, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query config values: %w", err)
	}
	defer rows.Close()

	cfg := &ConfigData{}
	for rows.Next() {
		var section, key string
		var value sql.NullString
		if err := rows.Scan(&section, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		if !value.Valid {
			continue
		}
		if err := cfg.set(section, key, value.String); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config values: %w", err)
	}

	return cfg, nil
}

// SetValue stores one setting. Unknown keys and malformed values are
// rejected before anything is written.
func (s *SQLiteProvider) SetValue(section, key, value string) error {
	var scratch ConfigData
	if err := scratch.set(section, key, value); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO config_values (section, key, value) VALUES (?, ?, ?)`,
		section, key, value)
	if err != nil {
		return fmt.Errorf("failed to store %s.%s: %w", section, key, err)
	}
	return nil
}

// Value is one row of the config_values table
type Value struct {
	Section string
	Key     string
	Value   string
}

// Values flattens every non-empty setting into config_values rows
func (c *ConfigData) Values() []Value {
	var out []Value
	add := func(section, key, value string) {
		if value != "" {
			out = append(out, Value{Section: section, Key: key, Value: value})
		}
	}
	itoa := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}

	add("server", "listen_addr", c.Server.ListenAddr)
	add("server", "port", itoa(c.Server.Port))
	add("server", "cert", c.Server.Cert)
	add("server", "key", c.Server.Key)
	add("data", "root_dir", c.Data.RootDir)
	add("data", "thumbnail_size", itoa(c.Data.ThumbnailSize))
	add("chart", "width_px", itoa(c.Chart.WidthPx))
	add("chart", "height_px", itoa(c.Chart.HeightPx))
	if c.Chart.LineWidth != 0 {
		add("chart", "line_width", strconv.FormatFloat(c.Chart.LineWidth, 'g', -1, 64))
	}
	add("chart", "ramp", c.Chart.Ramp)
	add("chart", "leading_color", c.Chart.LeadingColor)
	if ts := c.Storage.TimescaleDB; ts != nil {
		add("storage", "timescaledb_connection_string", ts.ConnectionString)
		add("storage", "timescaledb_group", ts.Group)
	}
	return out
}

func (c *ConfigData) set(section, key, value string) error {
	name := section + "." + key
	atoi := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
		return nil
	}

	switch name {
	case "server.listen_addr":
		c.Server.ListenAddr = value
	case "server.port":
		return atoi(&c.Server.Port)
	case "server.cert":
		c.Server.Cert = value
	case "server.key":
		c.Server.Key = value
	case "data.root_dir":
		c.Data.RootDir = value
	case "data.thumbnail_size":
		return atoi(&c.Data.ThumbnailSize)
	case "chart.width_px":
		return atoi(&c.Chart.WidthPx)
	case "chart.height_px":
		return atoi(&c.Chart.HeightPx)
	case "chart.line_width":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		c.Chart.LineWidth = f
	case "chart.ramp":
		c.Chart.Ramp = value
	case "chart.leading_color":
		c.Chart.LeadingColor = value
	case "storage.timescaledb_connection_string":
		c.timescale().ConnectionString = value
	case "storage.timescaledb_group":
		c.timescale().Group = value
	default:
		return fmt.Errorf("unknown configuration key %s", name)
	}
	return nil
}

func (c *ConfigData) timescale() *TimescaleDBData {
	if c.Storage.TimescaleDB == nil {
		c.Storage.TimescaleDB = &TimescaleDBData{}
	}
	return c.Storage.TimescaleDB
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
