// Package config loads CLI configuration.
//
// Values are layered, lowest to highest priority: built-in defaults, the
// vanilla.yaml config file, VANILLA_* environment variables, and flags
// that were explicitly set on the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultDatabase     = "vanilla.db"
	DefaultSpecsDir     = "specs"
	DefaultPostsPerPage = 10
	DefaultFormat       = "text"

	// MemoryDatabase selects a throwaway in-memory store.
	MemoryDatabase = ":memory:"

	envPrefix = "VANILLA_"
)

// configNames are looked up in the working directory when no config file
// is given.
var configNames = []string{"vanilla.yaml", "vanilla.yml"}

// flagKeys maps flag names whose config key differs from the
// snake_cased flag name.
var flagKeys = map[string]string{
	"db":       "database",
	"specs":    "specs_dir",
	"per-page": "posts_per_page",
}

// Config is the resolved CLI configuration.
type Config struct {
	SiteURL      string `koanf:"site_url"`
	Database     string `koanf:"database"`
	SpecsDir     string `koanf:"specs_dir"`
	PostsPerPage int64  `koanf:"posts_per_page"`
	Verbose      bool   `koanf:"verbose"`
	Format       string `koanf:"format"`

	// File is the config file that was loaded, empty when none was.
	File string `koanf:"-"`
}

// Load resolves configuration. cfgFile names an explicit config file;
// when empty, vanilla.yaml or vanilla.yml in the working directory is
// used if present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"site_url":       "",
		"database":       DefaultDatabase,
		"specs_dir":      DefaultSpecsDir,
		"posts_per_page": DefaultPostsPerPage,
		"verbose":        false,
		"format":         DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cfgFile = findConfigFile(cfgFile)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: VANILLA_SPECS_DIR -> specs_dir
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Explicitly set flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	// Paths from the config file are relative to the file; paths from
	// flags and env stay relative to the working directory.
	if cfgFile != "" {
		base := filepath.Dir(cfgFile)
		if !fromFlag(flags, "specs", "specs-dir") && os.Getenv(envPrefix+"SPECS_DIR") == "" {
			cfg.SpecsDir = resolvePath(cfg.SpecsDir, base)
		}
		if !fromFlag(flags, "db", "database") && os.Getenv(envPrefix+"DATABASE") == "" {
			cfg.Database = resolvePath(cfg.Database, base)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be \"text\" or \"json\"", c.Format)
	}
	if c.PostsPerPage == 0 || c.PostsPerPage < -1 {
		return fmt.Errorf("invalid posts_per_page %d: must be positive or -1", c.PostsPerPage)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func fromFlag(flags *pflag.FlagSet, names ...string) bool {
	if flags == nil {
		return false
	}
	for _, name := range names {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

// resolvePath joins a relative path onto base. Empty, absolute and
// in-memory paths are returned unchanged.
func resolvePath(path, base string) string {
	if path == "" || path == MemoryDatabase || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
