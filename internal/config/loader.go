package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps flag names onto config keys where they differ.
var flagKeys = map[string]string{
	"addr":  "server.addr",
	"watch": "server.watch",
}

// pathKeys hold file paths. Relative values from a config file are resolved
// against the file's directory.
var pathKeys = []string{"database", "dataset"}

// Result is a loaded configuration and where it came from.
type Result struct {
	Config   *Config
	FileUsed string // empty when no config file was read
}

// FindConfigFile returns the config file to use.
// Priority: explicit path > facilitydir.yaml > facilitydir.yml in dir.
func FindConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): changed flags > env vars > config file > defaults.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Result, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed := FindConfigFile(cfgFile, ".")
	fileK := koanf.New(".")
	if fileUsed != "" {
		if err := fileK.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
		if err := k.Merge(fileK); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	// 3. Environment: FACILITYDIR_PAGE_SIZE -> page_size, FACILITYDIR_SERVER_ADDR -> server.addr
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags the user actually set
	if flags != nil {
		known := defaultsMap()
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if _, isConfig := known[key]; !isConfig {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths that came from the file
	if fileUsed != "" {
		baseDir := filepath.Dir(fileUsed)
		for _, key := range pathKeys {
			if !fileK.Exists(key) || fileK.String(key) != k.String(key) {
				continue
			}
			switch key {
			case "database":
				cfg.Database = resolvePathRelativeTo(cfg.Database, baseDir)
			case "dataset":
				cfg.Dataset = resolvePathRelativeTo(cfg.Dataset, baseDir)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Result{Config: &cfg, FileUsed: fileUsed}, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "server_"); ok {
		return "server." + rest
	}
	return key
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Empty, absolute and in-memory paths are returned unchanged.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
