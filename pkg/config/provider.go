package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server  ServerData     `json:"server" yaml:"server"`
	Data    DataSourceData `json:"data" yaml:"data"`
	Chart   ChartData      `json:"chart" yaml:"chart"`
	Storage StorageData    `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// ServerData configures the HTTP listener
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
}

// DataSourceData configures where track files are discovered
type DataSourceData struct {
	RootDir       string `json:"root_dir,omitempty" yaml:"root_dir,omitempty"`
	ThumbnailSize int    `json:"thumbnail_size,omitempty" yaml:"thumbnail_size,omitempty"`
}

// ChartData holds rendering defaults
type ChartData struct {
	WidthPx      int     `json:"width_px,omitempty" yaml:"width_px,omitempty"`
	HeightPx     int     `json:"height_px,omitempty" yaml:"height_px,omitempty"`
	LineWidth    float64 `json:"line_width,omitempty" yaml:"line_width,omitempty"`
	Ramp         string  `json:"ramp,omitempty" yaml:"ramp,omitempty"`
	LeadingColor string  `json:"leading_color,omitempty" yaml:"leading_color,omitempty"`
}

// StorageData holds optional database-backed track sources
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

// TimescaleDBData configures the telemetry_samples source
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	// Group is the logical group name runs from the database appear under
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

// Defaults used when a value is not configured
const (
	DefaultListenAddr    = "0.0.0.0"
	DefaultPort          = 8080
	DefaultRootDir       = "data"
	DefaultThumbnailSize = 200
	DefaultWidthPx       = 640
	DefaultHeightPx      = 480
	DefaultLineWidth     = 1.5
	DefaultDatabaseGroup = "database"
)

// FillDefaults sets every unset value to its default and returns the dotted
// names of the keys it filled, so callers can log them.
func (c *ConfigData) FillDefaults() []string {
	var filled []string
	setString := func(v *string, def, name string) {
		if *v == "" {
			*v = def
			filled = append(filled, name)
		}
	}
	setInt := func(v *int, def int, name string) {
		if *v <= 0 {
			*v = def
			filled = append(filled, name)
		}
	}

	setString(&c.Server.ListenAddr, DefaultListenAddr, "server.listen_addr")
	setInt(&c.Server.Port, DefaultPort, "server.port")
	setString(&c.Data.RootDir, DefaultRootDir, "data.root_dir")
	setInt(&c.Data.ThumbnailSize, DefaultThumbnailSize, "data.thumbnail_size")
	setInt(&c.Chart.WidthPx, DefaultWidthPx, "chart.width_px")
	setInt(&c.Chart.HeightPx, DefaultHeightPx, "chart.height_px")
	if c.Chart.LineWidth <= 0 {
		c.Chart.LineWidth = DefaultLineWidth
		filled = append(filled, "chart.line_width")
	}
	if c.Storage.TimescaleDB != nil {
		setString(&c.Storage.TimescaleDB.Group, DefaultDatabaseGroup, "storage.timescaledb.group")
	}
	return filled
}
