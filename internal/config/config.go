// Package config resolves CLI settings from flags, FOLIO_* environment
// variables and an optional folio.yaml file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/folio/internal/platform"
	"github.com/aretw0/folio/pkg/core"
)

const (
	// EnvPrefix prefixes every environment override, e.g. FOLIO_BACKEND.
	EnvPrefix = "FOLIO"
	// EnvConfigFile points at an explicit config file.
	EnvConfigFile = "FOLIO_CONFIG"
	// FileName is the config file searched for, without extension.
	FileName = "folio"
)

// Config is the resolved CLI configuration.
type Config struct {
	Dir         string        `mapstructure:"dir"`
	Backend     string        `mapstructure:"backend"`
	Format      string        `mapstructure:"format"`
	Collection  string        `mapstructure:"collection"`
	Autosave    time.Duration `mapstructure:"autosave"`
	LogLevel    string        `mapstructure:"log_level"`
	ReadOnly    bool          `mapstructure:"read_only"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// New returns a viper instance with defaults, env binding and file discovery set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("dir", "")
	v.SetDefault("backend", "fs")
	v.SetDefault("format", "json")
	v.SetDefault("collection", core.DefaultCollection)
	v.SetDefault("autosave", core.DefaultAutosaveDelay)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_only", false)
	v.SetDefault("lock_timeout", time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := os.Getenv(EnvConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, platform.DataDirName))
		}
	}
	return v
}

// Load binds flags (flag names use dashes, keys use underscores), reads the
// config file when present and decodes the result.
// A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper, flags *pflag.FlagSet) (Config, error) {
	if flags != nil {
		for _, key := range Keys {
			f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, cfg.Validate()
}

// Keys lists every configuration key.
var Keys = []string{"dir", "backend", "format", "collection", "autosave", "log_level", "read_only", "lock_timeout"}

// Validate rejects values the adapters would not understand.
func (c Config) Validate() error {
	switch c.Backend {
	case "fs", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown backend %q (want fs, sqlite or memory)", c.Backend)
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", c.Format)
	}
	if c.Autosave < 0 {
		return fmt.Errorf("autosave must not be negative: %s", c.Autosave)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level; verbose forces Debug.
func (c Config) Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// DataDir returns the configured directory or discovers the nearest .folio from cwd.
func (c Config) DataDir(cwd string) (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return platform.ResolveDataDir(cwd)
}

// Options converts the configuration into folio options.
func (c Config) Options(logger *slog.Logger) []platform.Option {
	return []platform.Option{
		platform.WithLogger(logger),
		platform.WithAdapter(c.Backend),
		platform.WithFormat(c.Format),
		platform.WithCollection(c.Collection),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithLockTimeout(c.LockTimeout),
		platform.WithAutosaveDelay(c.Autosave),
	}
}
