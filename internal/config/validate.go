package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Accepted enumerations.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"text", "json", "auto"}
	OutputFormats = []string{"table", "json", "csv", "md"}
)

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page_size must be at least 1, got %d", c.PageSize))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level %q is not one of %s", c.LogLevel, strings.Join(LogLevels, ", ")))
	}
	if !slices.Contains(LogFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("log_format %q is not one of %s", c.LogFormat, strings.Join(LogFormats, ", ")))
	}
	if !slices.Contains(OutputFormats, strings.ToLower(c.Output)) {
		errs = append(errs, fmt.Errorf("output %q is not one of %s", c.Output, strings.Join(OutputFormats, ", ")))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
