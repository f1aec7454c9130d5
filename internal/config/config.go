package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/makutaku/bundlefix/internal/version"
)

// ToolsConfig names the external executables the pipeline delegates to.
type ToolsConfig struct {
	// Rcedit is the Windows resource editor used for the metadata fix.
	Rcedit string `yaml:"rcedit"`
	// Iscc is the Inno Setup command-line compiler.
	Iscc string `yaml:"iscc"`
	// IconConverter converts the bundle icon to .ico format.
	IconConverter string `yaml:"icon_converter"`
}

// UpdateConfig controls the release update check.
type UpdateConfig struct {
	Disabled bool   `yaml:"disabled"`
	URL      string `yaml:"url"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is a logrus level name; defaults to "info".
	Level string `yaml:"level"`
	// File, when set, sends logs to a rotating file instead of stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Config is the tool's runtime configuration. The pipeline never reads
// ambient process state; everything it needs arrives through this record.
type Config struct {
	Tools  ToolsConfig  `yaml:"tools"`
	Update UpdateConfig `yaml:"update"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the configuration used when no file is supplied. Tool
// names resolve through PATH.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			Rcedit:        "rcedit",
			Iscc:          "iscc",
			IconConverter: "magick",
		},
		Update: UpdateConfig{
			URL: version.DefaultUpdateURL,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log level %q in %s", cfg.Log.Level, path)
	}

	return cfg, nil
}

// ConfigureLogging applies the log section to the global logger. verbose
// forces debug level regardless of the configured one.
func ConfigureLogging(cfg LogConfig, verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
}
