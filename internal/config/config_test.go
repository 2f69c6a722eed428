package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"input": "customers.xlsx",
		"service_id": "saju-premium",
		"workers": 8,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "customers.xlsx", cfg.Input)
	assert.Equal(t, "saju-premium", cfg.ServiceID)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	input := writeConfig(t, "name,year,month,day\n")

	cfg := &Config{Input: input, Workers: 4}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{Workers: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Input: filepath.Join(t.TempDir(), "missing.csv")}
	assert.Error(t, cfg.Validate())

	cfg = &Config{SendGridAPIKey: "key"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail_from")
}

func TestConfig_MergeWithDefaults(t *testing.T) {
	cfg := Config{ServiceID: "saju-premium"}
	merged := cfg.MergeWithDefaults(Config{
		ServiceID: "ignored",
		Input:     "customers.csv",
		Workers:   6,
		Verbose:   true,
	})

	assert.Equal(t, "saju-premium", merged.ServiceID)
	assert.Equal(t, "customers.csv", merged.Input)
	assert.Equal(t, 6, merged.Workers)
	assert.True(t, merged.Verbose)
}

func TestConfig_MergeWithDefaults_BuiltIns(t *testing.T) {
	merged := (&Config{}).MergeWithDefaults(Config{})
	assert.Equal(t, 4, merged.Workers)
	assert.Equal(t, "reports", merged.OutputDir)
	assert.Equal(t, ":8080", merged.ListenAddr)
}
