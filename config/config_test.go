package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var allVars = []string{
	"ACCESS_KEY", "SECRET_KEY", "BUCKET", "bucket", "OPENWEATHER_APIKEY", "openweather_apikey",
	"AWS_REGION", "STORAGE_CLASS", "STAGING_DIR", "GEOCODE_URL", "GEOCODE_TIMEOUT",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allVars {
		t.Setenv(v, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_KEY", "AKIA")
	t.Setenv("SECRET_KEY", "secret")
	t.Setenv("BUCKET", "photos")
	t.Setenv("OPENWEATHER_APIKEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "AKIA", cfg.AccessKey)
	assert.Equal(t, "photos", cfg.Bucket)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultStorageClass, cfg.StorageClass)
	assert.Equal(t, filepath.Join(os.TempDir(), "backup"), cfg.StagingDir)
	assert.Equal(t, DefaultGeocodeURL, cfg.GeocodeURL)
	assert.Equal(t, DefaultGeocodeTimeout, cfg.GeocodeTimeout)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.CatalogEnabled())
}

func TestLoadReportsEveryMissingVariable(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	for _, name := range []string{"ACCESS_KEY", "SECRET_KEY", "BUCKET", "OPENWEATHER_APIKEY"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestLoadLowercaseAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_KEY", "AKIA")
	t.Setenv("SECRET_KEY", "secret")
	t.Setenv("bucket", "legacy-bucket")
	t.Setenv("openweather_apikey", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-bucket", cfg.Bucket)
	assert.Equal(t, "legacy-key", cfg.GeocodeAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("STORAGE_CLASS", "glacier_ir")
	t.Setenv("GEOCODE_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "GLACIER_IR", cfg.StorageClass)
	assert.Equal(t, 3*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.CatalogEnabled())
}

func TestLoadStorageClassNone(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("STORAGE_CLASS", "none")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.StorageClass)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("GEOCODE_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, so unset
	// the ones the file provides.
	os.Unsetenv("ACCESS_KEY")
	os.Unsetenv("bucket")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ACCESS_KEY=from-file\nbucket=file-bucket\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ACCESS_KEY")
		os.Unsetenv("bucket")
	})

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("ACCESS_KEY"))
	assert.Equal(t, "file-bucket", os.Getenv("bucket"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
