// Package config resolves flashdeck settings from a YAML file, a .env file
// and the environment.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// environment variables, the config file, built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
)

// Environment variables read by ApplyEnv.
const (
	EnvCatalog    = "FLASHDECK_CATALOG"
	EnvDatabase   = "FLASHDECK_DB"
	EnvStorageKey = "FLASHDECK_STORAGE_KEY"
	EnvMode       = "FLASHDECK_MODE"
)

// DefaultFile is the config file picked up from the working directory when
// no --config flag is given.
const DefaultFile = "flashdeck.yaml"

// DefaultEnvFile is loaded into the environment when present.
const DefaultEnvFile = ".env"

// Config holds every setting the CLI needs.
type Config struct {
	// Catalog is the path of the card catalog (.json, .yaml, .yml or .xlsx).
	Catalog string `yaml:"catalog"`

	// Database is the SQLite file holding progress. ":memory:" keeps
	// progress for the current process only.
	Database string `yaml:"database"`

	// StorageKey is the blob key progress is stored under.
	StorageKey string `yaml:"storage_key"`

	// Mode is the default study mode (full or srs).
	Mode string `yaml:"mode"`

	// Highlight is the marker wrapped around search matches.
	Highlight search.Marker `yaml:"highlight"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Catalog:    "flashcards.json",
		Database:   "flashdeck.db",
		StorageKey: progress.DefaultKey,
		Mode:       "srs",
		Highlight:  search.DefaultMarker,
	}
}

// Load reads a YAML config file on top of Default. Unknown keys are an
// error. Fields left empty keep their default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of Default.
func Parse(data []byte) (Config, error) {
	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return merge(Default(), file), nil
}

// ApplyEnv overrides cfg with any FLASHDECK_* variables lookup reports.
// Pass os.LookupEnv in production.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.Catalog, EnvCatalog)
	set(&cfg.Database, EnvDatabase)
	set(&cfg.StorageKey, EnvStorageKey)
	set(&cfg.Mode, EnvMode)
	return cfg
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Resolve builds the effective config: .env, then the config file at path
// (or DefaultFile when path is empty and that file exists), then the
// environment.
func Resolve(path string) (Config, error) {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	return ApplyEnv(cfg, os.LookupEnv), nil
}

func merge(base, over Config) Config {
	if over.Catalog != "" {
		base.Catalog = over.Catalog
	}
	if over.Database != "" {
		base.Database = over.Database
	}
	if over.StorageKey != "" {
		base.StorageKey = over.StorageKey
	}
	if over.Mode != "" {
		base.Mode = over.Mode
	}
	if over.Highlight.Open != "" || over.Highlight.Close != "" {
		base.Highlight = over.Highlight
	}
	return base
}
