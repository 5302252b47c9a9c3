// Package model contains the small set of types shared across packages. None
// of them are persisted: an Image is rebuilt from the directory listing every
// time it is needed.
package model

import (
	"encoding/json"
	"time"
)

// DateSource records where an image's date came from.
type DateSource string

const (
	DateSourceExif    DateSource = "exif"
	DateSourceMtime   DateSource = "mtime"
	DateSourceUnknown DateSource = "unknown"
)

// DateInfo is the outcome of resolving an image's capture date. A zero Taken
// means no usable date was found and sorts oldest.
type DateInfo struct {
	Taken  time.Time
	Source DateSource
}

// Known reports whether Taken carries a real timestamp.
func (d DateInfo) Known() bool {
	return !d.Taken.IsZero() && d.Source != DateSourceUnknown
}

// Image is a gallery entry reconstructed from the originals directory.
type Image struct {
	Original   string     `json:"original"`
	Thumb      *string    `json:"thumb"`
	DateTaken  *string    `json:"date_taken"`
	DateSource DateSource `json:"date_source"`

	// Taken drives ordering; it is not part of the JSON contract.
	Taken time.Time `json:"-"`
}

// StoreOptions tunes a single store operation.
type StoreOptions struct {
	// ForceBasename pins the stored name instead of generating one. Used by
	// fixture import so repeated runs land on the same file.
	ForceBasename string
	// Overwrite replaces an existing file with the same name. When false an
	// existing file makes the call an idempotent skip.
	Overwrite bool
}

// StoreResult reports a stored original. ThumbnailErr is a secondary outcome:
// the original is stored even when it is set.
type StoreResult struct {
	Filename     string `json:"filename"`
	Thumbnail    string `json:"thumbnail"`
	Skipped      bool   `json:"skipped"`
	ThumbnailErr error  `json:"-"`
}

// MarshalJSON renders a missing thumbnail as null.
func (r StoreResult) MarshalJSON() ([]byte, error) {
	var thumb *string
	if r.Thumbnail != "" {
		thumb = &r.Thumbnail
	}
	return json.Marshal(struct {
		Filename  string  `json:"filename"`
		Thumbnail *string `json:"thumbnail"`
		Skipped   bool    `json:"skipped"`
	}{r.Filename, thumb, r.Skipped})
}

// ItemError is a per-file failure inside a batch.
type ItemError struct {
	File  string `json:"file"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// BatchResult collects the outcome of a multi-file upload or seed run.
type BatchResult struct {
	Success bool          `json:"success"`
	Items   []StoreResult `json:"items"`
	Errors  []ItemError   `json:"errors"`
}

// Add records a per-file outcome; Success flips once any item lands.
func (b *BatchResult) Add(file string, res *StoreResult, err error) {
	if err != nil {
		b.Errors = append(b.Errors, ItemError{File: file, Error: err.Error(), Kind: ErrorKind(err)})
		return
	}
	b.Items = append(b.Items, *res)
	b.Success = true
}

// DeleteResult reports the two halves of a delete independently.
type DeleteResult struct {
	PhotoDeleted     bool `json:"photo_deleted"`
	ThumbnailDeleted bool `json:"thumbnail_deleted"`
}
