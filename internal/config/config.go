package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Filter    FilterConfig    `yaml:"filter" envconfig:"FILTER"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourceConfig describes where the climbing log is pulled from
type SourceConfig struct {
	Kind              string        `yaml:"kind" envconfig:"KIND" validate:"oneof=sheets workbook"`
	SpreadsheetName   string        `yaml:"spreadsheet_name" envconfig:"SPREADSHEET_NAME" validate:"required_without=SpreadsheetID"`
	SpreadsheetID     string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CredentialsFile   string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	WorkbookPath      string        `yaml:"workbook_path" envconfig:"WORKBOOK_PATH" validate:"required_if=Kind workbook"`
	ClimbsSheet       string        `yaml:"climbs_sheet" envconfig:"CLIMBS_SHEET" validate:"required"`
	ClimbsRange       string        `yaml:"climbs_range" envconfig:"CLIMBS_RANGE" validate:"required"`
	SessionsSheet     string        `yaml:"sessions_sheet" envconfig:"SESSIONS_SHEET" validate:"required"`
	SessionsRange     string        `yaml:"sessions_range" envconfig:"SESSIONS_RANGE" validate:"required"`
	OutdoorSheet      string        `yaml:"outdoor_sheet" envconfig:"OUTDOOR_SHEET" validate:"required"`
	CacheTTL          time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE" validate:"gt=0"`
}

// PipelineConfig is the configuration surface of the preprocessing core
type PipelineConfig struct {
	Seed         int64 `yaml:"seed" envconfig:"SEED"`
	DropBeginner bool  `yaml:"drop_beginner" envconfig:"DROP_BEGINNER"`
	TopK         []int `yaml:"top_k" envconfig:"TOP_K" validate:"min=1,unique,dive,gt=0"`
}

// FilterConfig narrows the input tables before they reach the core
type FilterConfig struct {
	Range    string   `yaml:"range" envconfig:"RANGE" validate:"oneof=all YTD 1y 6m custom"`
	Start    string   `yaml:"start" envconfig:"START" validate:"required_if=Range custom"`
	End      string   `yaml:"end" envconfig:"END" validate:"required_if=Range custom"`
	Workouts []string `yaml:"workouts" envconfig:"WORKOUTS"`
}

// OutputConfig controls where and how derived tables are written
type OutputConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR" validate:"required"`
	CSV         bool   `yaml:"csv" envconfig:"CSV"`
	XLSX        bool   `yaml:"xlsx" envconfig:"XLSX"`
	JSON        bool   `yaml:"json" envconfig:"JSON"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig toggles tracing of pipeline stages
type TelemetryConfig struct {
	Tracing bool `yaml:"tracing" envconfig:"TRACING"`
}

// Load resolves configuration from defaults, the YAML file at path (when
// non-empty, otherwise a well-known location if present) and environment
// variables, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Resolve is Load without validation, for callers that overlay further
// settings (command-line flags) before calling Validate.
func Resolve(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Struct tags carry no defaults, so unset variables leave file values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"crvx.yaml",
		"configs/crvx.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:              SourceKindSheets,
			SpreadsheetName:   DefaultSpreadsheetName,
			ClimbsSheet:       DefaultClimbsSheet,
			ClimbsRange:       DefaultClimbsRange,
			SessionsSheet:     DefaultSessionsSheet,
			SessionsRange:     DefaultSessionsRange,
			OutdoorSheet:      DefaultOutdoorSheet,
			CacheTTL:          DefaultCacheTTL,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Pipeline: PipelineConfig{
			Seed:         DefaultSeed,
			DropBeginner: DefaultDropBeginner,
			TopK:         append([]int(nil), DefaultTopK...),
		},
		Filter: FilterConfig{
			Range: RangeAll,
		},
		Output: OutputConfig{
			Dir:  "out",
			CSV:  true,
			XLSX: true,
			JSON: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/crvx.log",
		},
	}
}
