// Package datetaken works out when a photo was taken, for gallery ordering
// only. Sources are tried in order: EXIF in the head of the file, EXIF the
// image processor extracts from the whole file, the file's modification time,
// and finally the zero time.
package datetaken

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

// HeadSize bounds the prefix read for the fast EXIF pass.
const HeadSize = 64 << 10

const exifLayout = "2006:01:02 15:04:05"

// dateFields is the capture-time priority order: original capture, create
// (digitized), modify.
var dateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// MetadataSource hands back the raw EXIF block the image processor found in a
// file.
type MetadataSource interface {
	Metadata(path string) ([]byte, error)
}

// Resolver resolves dates for files on disk. Its zero value skips the
// processor fallback.
type Resolver struct {
	meta MetadataSource
}

// New returns a Resolver that falls back to meta when the file head holds no
// usable date. meta may be nil.
func New(meta MetadataSource) *Resolver {
	return &Resolver{meta: meta}
}

// Resolve never fails: a file that cannot be read or stat'd resolves to the
// zero time with source unknown.
func (r *Resolver) Resolve(path string) model.DateInfo {
	if t, ok := r.fromHead(path); ok {
		return model.DateInfo{Taken: t, Source: model.DateSourceExif}
	}
	if t, ok := r.fromProcessor(path); ok {
		return model.DateInfo{Taken: t, Source: model.DateSourceExif}
	}
	st, err := os.Stat(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("stat failed, date unknown")
		return model.DateInfo{Source: model.DateSourceUnknown}
	}
	return model.DateInfo{Taken: st.ModTime(), Source: model.DateSourceMtime}
}

func (r *Resolver) fromHead(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return time.Time{}, false
	}
	return DateFromExif(head[:n])
}

func (r *Resolver) fromProcessor(path string) (time.Time, bool) {
	if r.meta == nil {
		return time.Time{}, false
	}
	blob, err := r.meta.Metadata(path)
	if err != nil || len(blob) == 0 {
		return time.Time{}, false
	}
	return DateFromExif(blob)
}

// DateFromExif decodes data (a JPEG prefix or a raw TIFF/EXIF block) and
// returns the first populated capture-time field.
//
// EXIF timestamps carry no zone; they are read as local time of this process
// and offset tags are not consulted.
func DateFromExif(data []byte) (t time.Time, ok bool) {
	if len(data) == 0 {
		return time.Time{}, false
	}
	// goexif can panic on truncated or hostile IFDs.
	defer func() {
		if rec := recover(); rec != nil {
			t, ok = time.Time{}, false
		}
	}()
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return time.Time{}, false
	}
	if err != nil && exif.IsCriticalError(err) {
		return time.Time{}, false
	}
	for _, field := range dateFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
		if s == "" {
			continue
		}
		parsed, err := time.ParseInLocation(exifLayout, s, time.Local)
		if err != nil || parsed.IsZero() {
			continue
		}
		return parsed, true
	}
	return time.Time{}, false
}
