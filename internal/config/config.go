// Package config loads bkm10r settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SerialConfig selects the device.
type SerialConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// LumberjackConfig is the optional rolling log file. An empty Filename
// disables it.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets level and format.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// HistoryConfig is the interactive prompt's history file.
type HistoryConfig struct {
	File string `mapstructure:"file"`
}

// RecordConfig captures emitted frames to File when set.
type RecordConfig struct {
	File string `mapstructure:"file"`
}

// Config is the top level.
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	History HistoryConfig `mapstructure:"history"`
	Record  RecordConfig  `mapstructure:"record"`
}

// FlagKeys maps command line flag names onto config keys.
var FlagKeys = map[string]string{
	"device":       "serial.device",
	"baud":         "serial.baud",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-file":     "logging.file.filename",
	"metrics-addr": "metrics.addr",
	"record":       "record.file",
	"history":      "history.file",
}

// Load reads path (or $BKM10R_CONFIG, or bkm10r.yaml in . and ./configs),
// applies BKM10R_* environment overrides and then any flags from fs that
// were set explicitly. A missing default file is not an error.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("BKM10R")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("bkm10r")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if fs != nil {
		for flag, key := range FlagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.device", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 38400)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("history.file", ".bkm10r_history")
	v.SetDefault("record.file", "")
}
