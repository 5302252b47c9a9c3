// Package testutil builds small image fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// OnePixelPNG is a complete 1x1 RGBA PNG.
var OnePixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x64, 0x60, 0xf8, 0x5f,
	0x0f, 0x00, 0x02, 0x87, 0x01, 0x80, 0xeb, 0x47, 0xba, 0x92, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

// PNG encodes a w x h gradient.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG encodes a w x h gradient without metadata.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// JPEGWithDate returns a JPEG whose APP1 segment carries DateTimeOriginal.
// date uses the EXIF layout "2006:01:02 15:04:05".
func JPEGWithDate(t testing.TB, w, h int, date string) []byte {
	t.Helper()
	plain := JPEG(t, w, h)
	seg := append([]byte("Exif\x00\x00"), ExifDateBlock(date)...)
	app1 := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(app1[2:], uint16(len(seg)+2))
	out := append([]byte{}, plain[:2]...)
	out = append(out, app1...)
	out = append(out, seg...)
	return append(out, plain[2:]...)
}

// PNGWithDate returns a PNG that carries the EXIF block in an eXIf chunk.
func PNGWithDate(t testing.TB, w, h int, date string) []byte {
	t.Helper()
	plain := PNG(t, w, h)
	blob := ExifDateBlock(date)
	chunk := make([]byte, 8, 12+len(blob))
	binary.BigEndian.PutUint32(chunk[:4], uint32(len(blob)))
	copy(chunk[4:], "eXIf")
	chunk = append(chunk, blob...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)
	// Insert right after IHDR: 8 byte signature + 25 byte IHDR chunk.
	out := append([]byte{}, plain[:33]...)
	out = append(out, chunk...)
	return append(out, plain[33:]...)
}

// ExifDateBlock builds a little-endian TIFF block with an Exif sub-IFD that
// holds a single DateTimeOriginal (0x9003) ASCII value.
func ExifDateBlock(date string) []byte {
	value := append([]byte(date), 0)
	le := binary.LittleEndian
	b := make([]byte, 0, 44+len(value))
	b = append(b, 'I', 'I', 0x2A, 0x00)
	b = le.AppendUint32(b, 8)
	// IFD0 at 8: one entry pointing at the Exif IFD.
	b = le.AppendUint16(b, 1)
	b = le.AppendUint16(b, 0x8769)
	b = le.AppendUint16(b, 4)
	b = le.AppendUint32(b, 1)
	b = le.AppendUint32(b, 26)
	b = le.AppendUint32(b, 0)
	// Exif IFD at 26.
	b = le.AppendUint16(b, 1)
	b = le.AppendUint16(b, 0x9003)
	b = le.AppendUint16(b, 2)
	b = le.AppendUint32(b, uint32(len(value)))
	b = le.AppendUint32(b, 44)
	b = le.AppendUint32(b, 0)
	return append(b, value...)
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
