package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Map         MapConfig         `toml:"map"`
	Editor      EditorConfig      `toml:"editor"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Export      ExportConfig      `toml:"export"`
	Log         LogConfig         `toml:"log"`
}

// APIConfig points the client at the course backend.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	FrontendURL string `toml:"frontend_url"`
}

// CredentialsConfig contains provider-specific credentials.
type CredentialsConfig struct {
	Kakao KakaoConfig `toml:"kakao"`
}

// KakaoConfig contains Kakao OAuth settings.
type KakaoConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	BackendFlow bool   `toml:"backend_flow"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MapConfig holds the fallback viewport and terminal grid size.
type MapConfig struct {
	DefaultLat  float64 `toml:"default_lat"`
	DefaultLng  float64 `toml:"default_lng"`
	DefaultZoom int     `toml:"default_zoom"`
	GridWidth   int     `toml:"grid_width"`
	GridHeight  int     `toml:"grid_height"`
}

// EditorConfig holds course editor limits.
type EditorConfig struct {
	MinSpots       int `toml:"min_spots"`
	MaxTitleLength int `toml:"max_title_length"`
	ImageMaxWidth  int `toml:"image_max_width"`
}

// CatalogConfig lists category names excluded from pickers when the backend does not flag them.
type CatalogConfig struct {
	HiddenCategories []string `toml:"hidden_categories"`
}

// ExportConfig contains bulk export defaults.
type ExportConfig struct {
	OutputDir string  `toml:"output_dir"`
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
	Format    string  `toml:"format"`
}

// LogConfig contains log level and TUI log file location.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if c.Editor.MinSpots < 1 {
		return fmt.Errorf("%w: editor.min_spots must be at least 1", ErrInvalidConfig)
	}
	if c.Export.Workers < 0 {
		return fmt.Errorf("%w: export.workers cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveConfig encodes c as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, c *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
