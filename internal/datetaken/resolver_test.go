package datetaken

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/testutil"
	"github.com/dharsanguruparan/PhotoDrop/internal/thumbnail"
)

type stubMeta struct {
	blob  []byte
	calls int
}

func (s *stubMeta) Metadata(string) ([]byte, error) {
	s.calls++
	if s.blob == nil {
		return nil, thumbnail.ErrNoMetadata
	}
	return s.blob, nil
}

func TestResolveFromJPEGHead(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.jpg", testutil.JPEGWithDate(t, 16, 16, "2024:06:01 12:30:00"))
	meta := &stubMeta{}

	info := New(meta).Resolve(path)

	assert.Equal(t, model.DateSourceExif, info.Source)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.Local), info.Taken)
	assert.Equal(t, 0, meta.calls, "processor fallback not needed")
}

func TestResolveUsesProcessorMetadata(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.png", testutil.PNGWithDate(t, 16, 16, "2023:12:24 18:00:00"))

	info := New(thumbnail.New(400, 80)).Resolve(path)

	assert.Equal(t, model.DateSourceExif, info.Source)
	assert.Equal(t, time.Date(2023, 12, 24, 18, 0, 0, 0, time.Local), info.Taken)
}

func TestResolveFallsBackToMtime(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "plain.png", testutil.OnePixelPNG)
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	meta := &stubMeta{}

	info := New(meta).Resolve(path)

	assert.Equal(t, model.DateSourceMtime, info.Source)
	assert.True(t, info.Taken.Equal(mtime))
	assert.Equal(t, 1, meta.calls)
}

func TestResolveMissingFile(t *testing.T) {
	info := New(nil).Resolve(filepath.Join(t.TempDir(), "gone.jpg"))
	assert.Equal(t, model.DateSourceUnknown, info.Source)
	assert.True(t, info.Taken.IsZero())
	assert.False(t, info.Known())
}

func TestDateFromExifFieldPriority(t *testing.T) {
	blob := testutil.ExifDateBlock("2020:02:02 02:02:02")
	got, ok := DateFromExif(blob)
	require.True(t, ok)
	assert.Equal(t, 2020, got.Year())
	assert.Equal(t, time.Local, got.Location())

	_, ok = DateFromExif(testutil.ExifDateBlock("0000:00:00 00:00:00"))
	assert.False(t, ok, "unset camera clocks are skipped")

	_, ok = DateFromExif([]byte("II*\x00garbage"))
	assert.False(t, ok)
}
