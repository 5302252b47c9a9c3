package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
	"github.com/dharsanguruparan/PhotoDrop/internal/thumbnail"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"dusk.png", "harbor.png", "meadow.png"}, Names())
}

func TestSeedIsIdempotent(t *testing.T) {
	store, err := storage.New(t.TempDir(), thumbnail.New(64, 80))
	require.NoError(t, err)

	first := Seed(store)
	assert.True(t, first.Success)
	assert.Empty(t, first.Errors)
	require.Len(t, first.Items, 3)
	for _, item := range first.Items {
		assert.False(t, item.Skipped, item.Filename)
		assert.NotEmpty(t, item.Thumbnail, item.Filename)
	}
	before, err := os.ReadFile(filepath.Join(store.Root(), "harbor.png"))
	require.NoError(t, err)

	second := Seed(store)
	assert.True(t, second.Success)
	require.Len(t, second.Items, 3)
	for _, item := range second.Items {
		assert.True(t, item.Skipped, item.Filename)
	}
	after, err := os.ReadFile(filepath.Join(store.Root(), "harbor.png"))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	names, err := store.ListOriginals()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}
