package model

import "errors"

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrInvalidImage     = errors.New("file content is not a recognized image")
	ErrUnauthorized     = errors.New("invalid or missing Authorization bearer token")
	ErrProcessingFailed = errors.New("processing failed")
	ErrThumbnailFailed  = errors.New("thumbnail generation failed")
	ErrNotFound         = errors.New("file not found")
	ErrListing          = errors.New("listing failed")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrUnsupportedType, "UnsupportedType"},
	{ErrInvalidImage, "InvalidImage"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrThumbnailFailed, "ThumbnailGenerationFailed"},
	{ErrNotFound, "NotFound"},
	{ErrListing, "InternalListingError"},
	{ErrProcessingFailed, "ProcessingFailed"},
}

// ErrorKind maps an error onto its taxonomy name. Anything unrecognized is a
// ProcessingFailed.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "ProcessingFailed"
}
