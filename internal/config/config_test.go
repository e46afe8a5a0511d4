package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "flashcards.json", cfg.Catalog)
	assert.Equal(t, "flashdeck.db", cfg.Database)
	assert.Equal(t, progress.DefaultKey, cfg.StorageKey)
	assert.Equal(t, "srs", cfg.Mode)
	assert.Equal(t, search.DefaultMarker, cfg.Highlight)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
catalog: cards/crisc.yaml
storage_key: crisc
highlight:
  open: "**"
  close: "**"
`))
	require.NoError(t, err)
	assert.Equal(t, "cards/crisc.yaml", cfg.Catalog)
	assert.Equal(t, "flashdeck.db", cfg.Database, "unset field keeps default")
	assert.Equal(t, "crisc", cfg.StorageKey)
	assert.Equal(t, search.Marker{Open: "**", Close: "**"}, cfg.Highlight)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("catalgo: typo.json\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: progress.db\nmode: full\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "progress.db", cfg.Database)
	assert.Equal(t, "full", cfg.Mode)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCatalog:    "env.json",
		EnvDatabase:   "  ",
		EnvStorageKey: "k2",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := ApplyEnv(Default(), lookup)
	assert.Equal(t, "env.json", cfg.Catalog)
	assert.Equal(t, "flashdeck.db", cfg.Database, "blank env value is ignored")
	assert.Equal(t, "k2", cfg.StorageKey)
	assert.Equal(t, "srs", cfg.Mode)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLASHDECK_TEST_ONLY=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FLASHDECK_TEST_ONLY") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("FLASHDECK_TEST_ONLY"))
}

func TestResolve_ExplicitFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: file.json\ndatabase: file.db\n"), 0o644))
	t.Setenv(EnvDatabase, "env.db")

	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "file.json", cfg.Catalog)
	assert.Equal(t, "env.db", cfg.Database, "env beats file")
}
