package thumbnail

import (
	"bytes"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/PhotoDrop/internal/testutil"
)

func TestGenerateResizesToWidth(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "wide.png", testutil.PNG(t, 800, 600))
	dst := filepath.Join(dir, "wide.thumb.jpg")

	require.NoError(t, New(400, 80).Generate(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestGenerateScalesSmallImagesUpToWidth(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "small.png", testutil.PNG(t, 30, 20))
	dst := filepath.Join(dir, "small.thumb.jpg")

	require.NoError(t, New(64, 80).Generate(src, dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.InDelta(t, 43, cfg.Height, 1)
}

func TestGenerateOnePixel(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "tiny.png", testutil.OnePixelPNG)
	dst := filepath.Join(dir, "tiny.thumb.jpg")

	require.NoError(t, New(40, 80).Generate(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestGenerateCorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "broken.png", append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage garbage")...))
	dst := filepath.Join(dir, "broken.thumb.jpg")

	assert.Error(t, New(400, 80).Generate(src, dst))
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
