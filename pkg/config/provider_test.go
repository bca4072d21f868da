package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestYAMLProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
data:
  root_dir: /srv/runs
chart:
  ramp: kindlmann
  leading_color: "#00aa00"
storage:
  timescaledb:
    connection_string: postgres://localhost/telemetry
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewYAMLProvider(path)
	defer p.Close()
	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Data.RootDir != "/srv/runs" || cfg.Chart.Ramp != "kindlmann" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Storage.TimescaleDB == nil || cfg.Storage.TimescaleDB.ConnectionString != "postgres://localhost/telemetry" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}

	filled := cfg.FillDefaults()
	if cfg.Server.ListenAddr != DefaultListenAddr || cfg.Server.Port != 9090 {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Storage.TimescaleDB.Group != DefaultDatabaseGroup {
		t.Errorf("expected default database group, got %q", cfg.Storage.TimescaleDB.Group)
	}
	for _, key := range filled {
		if key == "server.port" || key == "data.root_dir" {
			t.Errorf("configured key %s reported as defaulted", key)
		}
	}
}

func TestYAMLProviderRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  prot: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAMLProvider(path).LoadConfig(); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestSQLiteProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.db")
	p, err := NewSQLiteProvider(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	values := []Value{
		{"server", "port", "8181"},
		{"data", "root_dir", "runs"},
		{"chart", "line_width", "2.5"},
		{"storage", "timescaledb_group", "laps"},
	}
	for _, v := range values {
		if err := p.SetValue(v.Section, v.Key, v.Value); err != nil {
			t.Fatalf("SetValue(%+v): %v", v, err)
		}
	}
	if _, err := p.db.Exec(`INSERT INTO config_values VALUES ('chart', 'ramp', NULL)`); err != nil {
		t.Fatal(err)
	}

	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8181 || cfg.Data.RootDir != "runs" || cfg.Chart.LineWidth != 2.5 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Chart.Ramp != "" {
		t.Errorf("NULL value should be skipped, got %q", cfg.Chart.Ramp)
	}
	if cfg.Storage.TimescaleDB == nil || cfg.Storage.TimescaleDB.Group != "laps" {
		t.Errorf("unexpected storage %+v", cfg.Storage.TimescaleDB)
	}
	if p.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}

	if err := p.SetValue("server", "port", "eighty"); err == nil {
		t.Error("expected malformed value to be rejected")
	}
}

func TestValuesRoundTrip(t *testing.T) {
	in := ConfigData{
		Server: ServerData{ListenAddr: "127.0.0.1", Port: 9000},
		Data:   DataSourceData{RootDir: "/srv/runs"},
		Chart:  ChartData{LineWidth: 0.75, Ramp: "blackbody"},
		Storage: StorageData{TimescaleDB: &TimescaleDBData{
			ConnectionString: "postgres://db/telemetry",
		}},
	}

	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	for _, v := range in.Values() {
		if err := p.SetValue(v.Section, v.Key, v.Value); err != nil {
			t.Fatalf("SetValue(%+v): %v", v, err)
		}
	}

	out, err := p.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if out.Server != in.Server || out.Data != in.Data || out.Chart != in.Chart {
		t.Errorf("got %+v, want %+v", out, in)
	}
	if out.Storage.TimescaleDB == nil || *out.Storage.TimescaleDB != *in.Storage.TimescaleDB {
		t.Errorf("unexpected storage %+v", out.Storage.TimescaleDB)
	}
}

func TestConfigSetErrors(t *testing.T) {
	var cfg ConfigData
	if err := cfg.set("server", "port", "eighty"); err == nil {
		t.Error("expected error for non-numeric port")
	}
	if err := cfg.set("server", "colour", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}
