package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PHOTODROP_ADDRESS", "PORT", "PHOTODROP_STORAGE_DIR", "PHOTODROP_UPLOAD_TOKEN",
		"PHOTODROP_SEED_TOKEN", "PHOTODROP_MAX_FILES", "PHOTODROP_THUMB_QUALITY",
	} {
		t.Setenv(key, "")
	}
	cfg := fromEnv()
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "./photos", cfg.StorageDir)
	assert.Equal(t, filepath.Join("./photos", "thumbs"), cfg.ThumbDir())
	assert.Equal(t, int64(20<<20), cfg.MaxFileSize)
	assert.Equal(t, 20, cfg.MaxFiles)
	assert.Equal(t, 10, cfg.DateConcurrency)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.False(t, cfg.SeedEnabled)
	assert.Empty(t, cfg.SeedToken)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("PHOTODROP_ADDRESS", "")
	t.Setenv("PORT", "9090")
	t.Setenv("PHOTODROP_UPLOAD_TOKEN", " s3cret ")
	t.Setenv("PHOTODROP_SEED_TOKEN", "")
	t.Setenv("PHOTODROP_MAX_FILES", "-4")
	t.Setenv("PHOTODROP_THUMB_QUALITY", "250")
	t.Setenv("PHOTODROP_RATE_WINDOW", "30s")
	t.Setenv("PHOTODROP_SEED_ENABLED", "true")

	cfg := fromEnv()
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "s3cret", cfg.UploadToken)
	assert.Equal(t, "s3cret", cfg.SeedToken, "seed token falls back to the upload token")
	assert.Equal(t, 20, cfg.MaxFiles)
	assert.Equal(t, 80, cfg.ThumbQuality)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.True(t, cfg.SeedEnabled)
}

func TestLoadFileReadsDotenv(t *testing.T) {
	t.Setenv("PHOTODROP_STORAGE_DIR", "")
	require.NoError(t, os.Unsetenv("PHOTODROP_STORAGE_DIR"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PHOTODROP_STORAGE_DIR=/srv/gallery\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/gallery", cfg.StorageDir)
	require.NoError(t, os.Unsetenv("PHOTODROP_STORAGE_DIR"))
}
