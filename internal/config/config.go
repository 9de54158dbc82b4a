package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/byteowlz/strle/internal/text"
)

type Config struct {
	Extraction  ExtractionConfig  `mapstructure:"extraction" toml:"extraction"`
	CSV         CSVConfig         `mapstructure:"csv" toml:"csv"`
	PostProcess PostProcessConfig `mapstructure:"postprocess" toml:"postprocess"`
	Output      OutputConfig      `mapstructure:"output" toml:"output"`
	Network     NetworkConfig     `mapstructure:"network" toml:"network"`
	Browser     BrowserConfig     `mapstructure:"browser" toml:"browser"`
	Safety      SafetyConfig      `mapstructure:"safety" toml:"safety"`
	Logging     LoggingConfig     `mapstructure:"logging" toml:"logging"`
}

type ExtractionConfig struct {
	CSVHasHeader    bool `mapstructure:"csv_has_header" toml:"csv_has_header"`
	CSVColumnIndex  int  `mapstructure:"csv_column_index" toml:"csv_column_index"` // -1 = all columns
	RepairJSON      bool `mapstructure:"repair_json" toml:"repair_json"`
	ShowParseErrors bool `mapstructure:"show_parse_errors" toml:"show_parse_errors"`
}

type CSVConfig struct {
	StreamingEnabled bool `mapstructure:"streaming_enabled" toml:"streaming_enabled"`
}

type PostProcessConfig struct {
	DedupeEnabled bool   `mapstructure:"dedupe_enabled" toml:"dedupe_enabled"`
	SortEnabled   bool   `mapstructure:"sort_enabled" toml:"sort_enabled"`
	SortMode      string `mapstructure:"sort_mode" toml:"sort_mode"`
}

type OutputConfig struct {
	DefaultFormat string `mapstructure:"default_format" toml:"default_format"`
	Separator     string `mapstructure:"separator" toml:"separator"`
}

type NetworkConfig struct {
	Timeout         int    `mapstructure:"timeout" toml:"timeout"`
	UserAgent       string `mapstructure:"user_agent" toml:"user_agent"`
	BrowserAgent    string `mapstructure:"browser_agent" toml:"browser_agent"`
	FollowRedirects bool   `mapstructure:"follow_redirects" toml:"follow_redirects"`
}

type BrowserConfig struct {
	Default string            `mapstructure:"default" toml:"default"`
	Paths   map[string]string `mapstructure:"paths" toml:"paths"`
}

type SafetyConfig struct {
	Enabled                   bool  `mapstructure:"enabled" toml:"enabled"`
	FileSizeWarnBytes         int64 `mapstructure:"file_size_warn_bytes" toml:"file_size_warn_bytes"`
	LargeOutputLinesThreshold int   `mapstructure:"large_output_lines_threshold" toml:"large_output_lines_threshold"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			CSVHasHeader:    false,
			CSVColumnIndex:  -1,
			RepairJSON:      false,
			ShowParseErrors: false,
		},
		CSV: CSVConfig{
			StreamingEnabled: false,
		},
		PostProcess: PostProcessConfig{
			DedupeEnabled: false,
			SortEnabled:   false,
			SortMode:      string(text.SortOff),
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			Separator:     "---",
		},
		Network: NetworkConfig{
			Timeout:         30,
			UserAgent:       "",
			BrowserAgent:    "",
			FollowRedirects: true,
		},
		Browser: BrowserConfig{
			Default: "none",
			Paths:   map[string]string{},
		},
		Safety: SafetyConfig{
			Enabled:                   true,
			FileSizeWarnBytes:         1_000_000,
			LargeOutputLinesThreshold: 50_000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/strle/config.toml, or "" when no home
// directory can be found.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "strle", "config.toml")
}

// Load reads configFile, or the default location when empty, on top of
// Default(). A missing file is not an error. STRLE_* environment variables
// override file values.
func Load(configFile string) (*Config, error) {
	return load(viper.New(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	cfg := Default()
	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		defaultPath := DefaultPath()
		if defaultPath == "" {
			return cfg, fmt.Errorf("error finding home directory")
		}
		v.AddConfigPath(filepath.Dir(defaultPath))
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STRLE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config falls back to defaults, an explicit path must exist
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || (!errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist)) {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("extraction.csv_has_header", cfg.Extraction.CSVHasHeader)
	v.SetDefault("extraction.csv_column_index", cfg.Extraction.CSVColumnIndex)
	v.SetDefault("extraction.repair_json", cfg.Extraction.RepairJSON)
	v.SetDefault("extraction.show_parse_errors", cfg.Extraction.ShowParseErrors)
	v.SetDefault("csv.streaming_enabled", cfg.CSV.StreamingEnabled)
	v.SetDefault("postprocess.dedupe_enabled", cfg.PostProcess.DedupeEnabled)
	v.SetDefault("postprocess.sort_enabled", cfg.PostProcess.SortEnabled)
	v.SetDefault("postprocess.sort_mode", cfg.PostProcess.SortMode)
	v.SetDefault("output.default_format", cfg.Output.DefaultFormat)
	v.SetDefault("output.separator", cfg.Output.Separator)
	v.SetDefault("network.timeout", cfg.Network.Timeout)
	v.SetDefault("network.user_agent", cfg.Network.UserAgent)
	v.SetDefault("network.browser_agent", cfg.Network.BrowserAgent)
	v.SetDefault("network.follow_redirects", cfg.Network.FollowRedirects)
	v.SetDefault("browser.default", cfg.Browser.Default)
	v.SetDefault("safety.enabled", cfg.Safety.Enabled)
	v.SetDefault("safety.file_size_warn_bytes", cfg.Safety.FileSizeWarnBytes)
	v.SetDefault("safety.large_output_lines_threshold", cfg.Safety.LargeOutputLinesThreshold)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// normalize replaces out-of-range values with safe defaults
func (c *Config) normalize() {
	c.PostProcess.SortMode = string(text.ParseSortMode(c.PostProcess.SortMode))
	if c.Extraction.CSVColumnIndex < 0 {
		c.Extraction.CSVColumnIndex = -1
	}
	if c.Network.Timeout <= 0 {
		c.Network.Timeout = 30
	}
	if c.Safety.FileSizeWarnBytes < 0 {
		c.Safety.FileSizeWarnBytes = 0
	}
	if c.Safety.LargeOutputLinesThreshold < 0 {
		c.Safety.LargeOutputLinesThreshold = 0
	}
}

// SortMode returns the configured sort mode, or SortOff when sorting is
// disabled.
func (c *Config) SortMode() text.SortMode {
	if !c.PostProcess.SortEnabled {
		return text.SortOff
	}
	return text.ParseSortMode(c.PostProcess.SortMode)
}

// CreateExampleConfig writes a commented example config to configPath
func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# strle configuration file

[extraction]
csv_has_header = false     # Skip the first CSV row
csv_column_index = -1      # Only extract this CSV column (-1 = all columns)
repair_json = false        # Retry invalid JSON after repairing it
show_parse_errors = false  # Log parse diagnostics as warnings

[csv]
streaming_enabled = false  # Stream large CSV inputs row by row

[postprocess]
dedupe_enabled = false
sort_enabled = false
sort_mode = "off"          # off, alpha-asc, alpha-desc, length-asc, length-desc

[output]
default_format = "text"    # text, json, yaml, markdown
separator = "---"          # Separator between outputs of multiple sources

[network]
timeout = 30               # seconds, for remote sources
user_agent = ""            # Custom user agent (empty = browser agent)
browser_agent = ""         # auto, chrome, firefox, safari, edge
follow_redirects = true

[browser]
# Browser whose cookies are sent with remote sources
default = "none"           # none, auto, chrome, firefox, safari

[browser.paths]
chrome = ""
firefox = ""
safari = ""

[safety]
enabled = true
file_size_warn_bytes = 1000000
large_output_lines_threshold = 50000

[logging]
level = "info"             # debug, info, warn, error
file = ""                  # Log file path (empty = stderr only)
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}
