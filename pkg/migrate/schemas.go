package migrate

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sql
var schemas embed.FS

// Schema names accepted by Schema
const (
	ConfigSchema    = "config"
	TelemetrySchema = "telemetry"
)

// Schema returns the bundled migrations for a named schema
func Schema(name string) ([]Migration, error) {
	switch name {
	case ConfigSchema, TelemetrySchema:
	default:
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	sub, err := fs.Sub(schemas, "sql/"+name)
	if err != nil {
		return nil, err
	}
	return Load(sub)
}
