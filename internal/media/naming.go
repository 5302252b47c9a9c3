package media

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// randomBytes gives 64 bits of entropy in the name suffix.
const randomBytes = 8

const (
	thumbSuffix  = ".thumb.jpg"
	legacySuffix = ".jpg"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewName returns "<YYYYMMDDTHHMMSSZ>_<hex>" + ext. Names are not checked
// against the directory; the random suffix makes collisions negligible even
// within one second.
func NewName(ext string) string {
	return newName(time.Now(), ext)
}

func newName(now time.Time, ext string) string {
	stamp := now.UTC().Truncate(time.Second).Format("20060102T150405Z")
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms; keep the name
		// unique per nanosecond if it ever does.
		return stamp + "_" + strings.TrimLeft(now.Format(".000000000"), ".") + ext
	}
	return stamp + "_" + hex.EncodeToString(buf) + ext
}

// SanitizeBasename turns a caller supplied base into a safe file name with
// ext appended. The extension already present on base, if any, is dropped.
// An empty result falls back to "image".
func SanitizeBasename(base, ext string) string {
	base = filepath.Base(strings.ReplaceAll(base, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._-")
	if base == "" {
		base = "image"
	}
	return base + strings.ToLower(ext)
}

// SafeName reports whether name can be joined onto a storage directory
// without escaping it.
func SafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return !strings.HasPrefix(name, ".")
}

// Base strips the extension from an original's name.
func Base(original string) string {
	return strings.TrimSuffix(original, filepath.Ext(original))
}

// ThumbName is the only thumbnail name ever written for original.
func ThumbName(original string) string {
	return Base(original) + thumbSuffix
}

// ThumbCandidates lists, in lookup order, the thumbnail names that may belong
// to original. The second entry is the legacy "<base>.jpg" layout which is
// still read but never produced.
func ThumbCandidates(original string) []string {
	base := Base(original)
	return []string{base + thumbSuffix, base + legacySuffix}
}

// IsThumbName reports whether name follows the current thumbnail convention.
func IsThumbName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), thumbSuffix)
}

// ThumbBase recovers the original's base from a thumbnail name of either
// convention.
func ThumbBase(thumb string) string {
	if IsThumbName(thumb) {
		return thumb[:len(thumb)-len(thumbSuffix)]
	}
	return Base(thumb)
}
