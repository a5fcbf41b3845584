// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAssetDir    = "DIGEST_ASSET_DIR"
	EnvWorkers     = "DIGEST_WORKERS"
	EnvLogLevel    = "DIGEST_LOG_LEVEL"
	EnvScreenshots = "DIGEST_SCREENSHOTS"
)

// Tools names the external executables. Empty values resolve on PATH.
type Tools struct {
	YTDLP     string `yaml:"yt_dlp,omitempty"`
	PdfInfo   string `yaml:"pdfinfo,omitempty"`
	PdfToText string `yaml:"pdftotext,omitempty"`
	PdfToPPM  string `yaml:"pdftoppm,omitempty"`

	// Ghostscript counts pages when pdfinfo fails
	Ghostscript string `yaml:"gs,omitempty"`
	Chrome      string `yaml:"chrome,omitempty"`
}

// Config represents the CLI configuration that can be loaded from a YAML file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	AssetDir       string        `yaml:"asset_dir,omitempty" validate:"required"`      // Cache directory, one file per index and kind
	SentinelImage  string        `yaml:"sentinel_image,omitempty" validate:"required"` // Image used when a story has none
	Workers        int           `yaml:"workers,omitempty" validate:"min=1,max=64"`
	LogLevel       string        `yaml:"log_level,omitempty" validate:"oneof=trace debug info warn error"`
	Screenshots    *bool         `yaml:"screenshots,omitempty"` // Capture page screenshots with a headless browser
	HTTPTimeout    time.Duration `yaml:"http_timeout,omitempty" validate:"gt=0"`
	BrowserTimeout time.Duration `yaml:"browser_timeout,omitempty" validate:"gt=0"`
	ToolTimeout    time.Duration `yaml:"tool_timeout,omitempty" validate:"gt=0"`
	Tools          Tools         `yaml:"tools,omitempty"`
}

// Defaults returns the configuration used for every unset field.
func Defaults() Config {
	screenshots := true
	return Config{
		AssetDir:       "assets",
		SentinelImage:  "notfound.png",
		Workers:        1,
		LogLevel:       "info",
		Screenshots:    &screenshots,
		HTTPTimeout:    30 * time.Second,
		BrowserTimeout: 30 * time.Second,
		ToolTimeout:    60 * time.Second,
	}
}

// Load reads the YAML file at path, when given, then fills unset fields from
// the environment and from Defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &Error{Message: "failed to get current directory", Cause: err}
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "failed to parse config YAML", Cause: err}
	}

	return &cfg, nil
}

// ApplyEnv fills fields the file left unset from DIGEST_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAssetDir); ok && c.AssetDir == "" {
		c.AssetDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && c.LogLevel == "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvWorkers); ok && c.Workers == 0 {
		workers, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &Error{Message: fmt.Sprintf("invalid %s", EnvWorkers), Cause: err}
		}
		c.Workers = workers
	}
	if v, ok := lookup(EnvScreenshots); ok && c.Screenshots == nil {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &Error{Message: fmt.Sprintf("invalid %s", EnvScreenshots), Cause: err}
		}
		c.Screenshots = &enabled
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return &Error{Message: "invalid configuration", Cause: err}
	}
	return nil
}

// ScreenshotsEnabled reports whether page screenshots should be captured.
func (c *Config) ScreenshotsEnabled() bool {
	return c.Screenshots == nil || *c.Screenshots
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.AssetDir == "" {
		result.AssetDir = defaults.AssetDir
	}
	if result.SentinelImage == "" {
		result.SentinelImage = defaults.SentinelImage
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Tools.YTDLP == "" {
		result.Tools.YTDLP = defaults.Tools.YTDLP
	}
	if result.Tools.PdfInfo == "" {
		result.Tools.PdfInfo = defaults.Tools.PdfInfo
	}
	if result.Tools.PdfToText == "" {
		result.Tools.PdfToText = defaults.Tools.PdfToText
	}
	if result.Tools.PdfToPPM == "" {
		result.Tools.PdfToPPM = defaults.Tools.PdfToPPM
	}
	if result.Tools.Ghostscript == "" {
		result.Tools.Ghostscript = defaults.Tools.Ghostscript
	}
	if result.Tools.Chrome == "" {
		result.Tools.Chrome = defaults.Tools.Chrome
	}

	// Numeric fields: use default if zero
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.HTTPTimeout == 0 {
		result.HTTPTimeout = defaults.HTTPTimeout
	}
	if result.BrowserTimeout == 0 {
		result.BrowserTimeout = defaults.BrowserTimeout
	}
	if result.ToolTimeout == 0 {
		result.ToolTimeout = defaults.ToolTimeout
	}

	if result.Screenshots == nil {
		result.Screenshots = defaults.Screenshots
	}

	return result
}

// Error represents a configuration error.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
