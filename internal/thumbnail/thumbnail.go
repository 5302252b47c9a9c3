// Package thumbnail renders gallery thumbnails with disintegration/imaging:
// decode, apply the EXIF orientation, shrink to a fixed width and re-encode as
// JPEG at a fixed quality.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	// Registers the WEBP decoder with image.Decode, which imaging relies on.
	_ "golang.org/x/image/webp"
)

// Generator produces a thumbnail for an original on disk.
type Generator interface {
	Generate(src, dst string) error
}

// Imaging is the Generator used in production.
type Imaging struct {
	Width   int
	Quality int
}

// New returns an Imaging generator for the given width and JPEG quality.
func New(width, quality int) *Imaging {
	return &Imaging{Width: width, Quality: quality}
}

// Generate reads src and writes the JPEG thumbnail to dst. The file is
// written next to dst and renamed into place so readers never see a partial
// thumbnail.
func (g *Imaging) Generate(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(src), err)
	}
	return g.write(g.resize(img), dst)
}

// resize scales img to the configured width in either direction, keeping the
// aspect ratio.
func (g *Imaging) resize(img image.Image) image.Image {
	if img.Bounds().Dx() == g.Width {
		return img
	}
	return imaging.Resize(img, g.Width, 0, imaging.Lanczos)
}

func (g *Imaging) write(img image.Image, dst string) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.Quality)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close thumbnail: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename thumbnail: %w", err)
	}
	return nil
}
