// config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Run from an empty directory so no stray config.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	require.NoError(t, LoadConfig(""))

	assert.Equal(t, "sqlite", AppConfig.Database.Driver)
	assert.Equal(t, "spartan_ftir_hips.db", AppConfig.Database.Path)
	assert.Equal(t, ".", AppConfig.DataDir)
	assert.Contains(t, AppConfig.NaTokens, "NA")
	assert.Contains(t, AppConfig.NaTokens, "")
	assert.True(t, AppConfig.Pipeline.CreateMissingFilters)
	assert.Equal(t, "ETAD_data_2023.csv", AppConfig.Sources.FileFor("etad"))
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
database:
  driver: sqlite
  path: out/test.db
data_dir: /data/spartan
sources:
  sample: sample.csv
  etad: ""
na_tokens: ["-", "missing"]
pipeline:
  create_missing_filters: false
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	require.NoError(t, LoadConfig(path))

	assert.Equal(t, "out/test.db", AppConfig.Database.Path)
	assert.Equal(t, "/data/spartan", AppConfig.DataDir)
	assert.Equal(t, "sample.csv", AppConfig.Sources.Sample)
	// The file explicitly disables the etad source.
	assert.Equal(t, "", AppConfig.Sources.Etad)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "SPARTAN_FTIR_&_HIPS_FTIR_Batches_3_4_5_BLANK.csv", AppConfig.Sources.Blank)
	assert.Equal(t, []string{"-", "missing"}, AppConfig.NaTokens)
	assert.False(t, AppConfig.Pipeline.CreateMissingFilters)
	assert.Equal(t, "debug", AppConfig.LogLevel)

	// The database file's directory is created up front.
	_, err = os.Stat(filepath.Join(dir, "out"))
	assert.NoError(t, err)
}

func TestLoadConfigExplicitPathMissing(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("SPARTANDB_DB_PATH", "env.db")
	t.Setenv("SPARTANDB_DATA_DIR", "/env/data")

	require.NoError(t, LoadConfig(""))
	assert.Equal(t, "env.db", AppConfig.Database.Path)
	assert.Equal(t, "/env/data", AppConfig.DataDir)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("SPARTANDB_DB_DRIVER", "postgres")
	assert.Error(t, LoadConfig(""))
}
