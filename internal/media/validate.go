// Package media holds the cheap checks and naming rules applied to image
// files before anything touches the disk.
package media

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

// minHeaderLen is the shortest buffer that can carry any accepted signature.
const minHeaderLen = 12

var acceptedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	gif87a    = []byte("GIF87a")
	gif89a    = []byte("GIF89a")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// Extension returns the lower-cased extension of name, including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Accepted reports whether ext (with leading dot, any case) is in the
// accepted set.
func Accepted(ext string) bool {
	return acceptedExtensions[strings.ToLower(ext)]
}

// AcceptedName reports whether name carries an accepted extension.
func AcceptedName(name string) bool {
	return Accepted(Extension(name))
}

// HasImageSignature reports whether buf starts with a JPEG, PNG, GIF or WEBP
// signature. It does not verify anything past the magic bytes.
func HasImageSignature(buf []byte) bool {
	if len(buf) < minHeaderLen {
		return false
	}
	switch {
	case bytes.HasPrefix(buf, jpegMagic):
		return true
	case bytes.HasPrefix(buf, pngMagic):
		return true
	case bytes.HasPrefix(buf, gif87a), bytes.HasPrefix(buf, gif89a):
		return true
	case bytes.HasPrefix(buf, riffMagic) && bytes.Equal(buf[8:12], webpMagic):
		return true
	}
	return false
}

// Validate reports whether buf plausibly is an image stored under ext.
func Validate(buf []byte, ext string) bool {
	return Check(buf, ext) == nil
}

// Check runs both gates and says which one failed: ErrUnsupportedType for the
// extension, ErrInvalidImage for the content.
//
// The signature only has to match one of the accepted formats, and a
// signature that belongs to a different accepted format than ext is
// rejected as well, so a PNG cannot be stored as .jpg.
func Check(buf []byte, ext string) error {
	if !Accepted(ext) {
		if ext == "" {
			return fmt.Errorf("missing extension: %w", model.ErrUnsupportedType)
		}
		return fmt.Errorf("%s: %w", ext, model.ErrUnsupportedType)
	}
	if !HasImageSignature(buf) {
		return fmt.Errorf("signature mismatch for %s: %w", ext, model.ErrInvalidImage)
	}
	if format := sniffFormat(buf); format != formatOf(ext) {
		return fmt.Errorf("%s content stored as %s: %w", format, ext, model.ErrInvalidImage)
	}
	return nil
}

func sniffFormat(buf []byte) string {
	switch {
	case bytes.HasPrefix(buf, jpegMagic):
		return "jpeg"
	case bytes.HasPrefix(buf, pngMagic):
		return "png"
	case bytes.HasPrefix(buf, gif87a), bytes.HasPrefix(buf, gif89a):
		return "gif"
	default:
		return "webp"
	}
}

func formatOf(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return strings.TrimPrefix(strings.ToLower(ext), ".")
	}
}
