package media

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var namePattern = regexp.MustCompile(`^\d{8}T\d{6}Z_[0-9a-f]{16}\.png$`)

func TestNewNameDistinct(t *testing.T) {
	a := NewName(".png")
	b := NewName(".png")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.True(t, strings.HasSuffix(b, ".png"))
	assert.Regexp(t, namePattern, a)
}

func TestNewNameTimestampIsUTCSeconds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 6, 1, 14, 30, 15, 999_000_000, loc)
	name := newName(now, ".jpg")
	assert.True(t, strings.HasPrefix(name, "20240601T123015Z_"), name)
}

func TestSanitizeBasename(t *testing.T) {
	cases := []struct{ base, ext, want string }{
		{"f.png", ".png", "f.png"},
		{"../../etc/passwd", ".jpg", "passwd.jpg"},
		{"sunset at the beach", ".JPG", "sunset_at_the_beach.jpg"},
		{"...", ".png", "image.png"},
		{`C:\photos\cat.gif`, ".gif", "cat.gif"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeBasename(c.base, c.ext), c.base)
	}
}

func TestSafeName(t *testing.T) {
	assert.True(t, SafeName("20240101T000000Z_ab.png"))
	for _, bad := range []string{"", ".", "..", "../x.png", "a/b.png", `a\b.png`, ".hidden.png"} {
		assert.False(t, SafeName(bad), bad)
	}
}

func TestThumbConvention(t *testing.T) {
	assert.Equal(t, "a.thumb.jpg", ThumbName("a.png"))
	assert.Equal(t, []string{"a.thumb.jpg", "a.jpg"}, ThumbCandidates("a.webp"))
	assert.True(t, IsThumbName("a.thumb.jpg"))
	assert.False(t, IsThumbName("a.jpg"))
}

func TestThumbBase(t *testing.T) {
	assert.Equal(t, "a", ThumbBase("a.thumb.jpg"))
	assert.Equal(t, "a", ThumbBase("a.THUMB.JPG"))
	assert.Equal(t, "a", ThumbBase("a.jpg"))
}
