// Package config loads facilitydir settings from defaults, an optional YAML
// file, FACILITYDIR_* environment variables and command-line flags.
package config

import "time"

// Config holds all runtime settings.
type Config struct {
	Database  string        `koanf:"database"`
	Dataset   string        `koanf:"dataset"` // empty uses the bundled dataset
	PageSize  int           `koanf:"page_size"`
	Debounce  time.Duration `koanf:"debounce"`
	LogLevel  string        `koanf:"log_level"`
	LogFormat string        `koanf:"log_format"` // text, json or auto
	Output    string        `koanf:"output"`     // table, json, csv or md
	Server    ServerConfig  `koanf:"server"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	Watch             bool          `koanf:"watch"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// File names searched in the working directory, in order.
const (
	ConfigFileName    = "facilitydir.yaml"
	ConfigFileNameAlt = "facilitydir.yml"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FACILITYDIR_"

// Default configuration values.
const (
	DefaultDatabase          = "facilitydir.db"
	DefaultPageSize          = 20
	DefaultDebounce          = 300 * time.Millisecond
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "auto"
	DefaultOutput            = "table"
	DefaultAddr              = "127.0.0.1:8080"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Database:  DefaultDatabase,
		PageSize:  DefaultPageSize,
		Debounce:  DefaultDebounce,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Output:    DefaultOutput,
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
	}
}

func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"database":                   d.Database,
		"dataset":                    d.Dataset,
		"page_size":                  d.PageSize,
		"debounce":                   d.Debounce,
		"log_level":                  d.LogLevel,
		"log_format":                 d.LogFormat,
		"output":                     d.Output,
		"server.addr":                d.Server.Addr,
		"server.watch":               d.Server.Watch,
		"server.read_header_timeout": d.Server.ReadHeaderTimeout,
		"server.shutdown_timeout":    d.Server.ShutdownTimeout,
	}
}
