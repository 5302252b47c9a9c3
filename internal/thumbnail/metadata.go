package thumbnail

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoMetadata is returned when a file carries no embedded EXIF block.
var ErrNoMetadata = errors.New("no embedded metadata")

// maxBlob bounds the EXIF block read into memory.
const maxBlob = 4 << 20

var (
	exifHeader = []byte("Exif\x00\x00")
	jpegSOI    = []byte{0xFF, 0xD8}
	pngSig     = []byte("\x89PNG\r\n\x1a\n")
)

// Metadata returns the raw TIFF-structured EXIF block embedded in path. It
// understands JPEG APP1 segments before the start of scan, the PNG eXIf chunk
// before image data and the WEBP EXIF chunk.
func (g *Imaging) Metadata(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

// ExtractMetadata is Metadata for bytes already in memory.
func ExtractMetadata(data []byte) ([]byte, error) {
	return ReadMetadata(bytes.NewReader(data))
}

// ReadMetadata scans r for the EXIF block and stops reading as soon as the
// container can no longer hold one.
func ReadMetadata(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	var (
		blob []byte
		err  error
	)
	switch {
	case bytes.HasPrefix(head, jpegSOI):
		blob, err = jpegExif(br)
	case bytes.HasPrefix(head, pngSig):
		blob, err = pngExif(br)
	case len(head) == 12 && bytes.HasPrefix(head, []byte("RIFF")) && string(head[8:12]) == "WEBP":
		blob, err = webpExif(br)
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	blob = bytes.TrimPrefix(blob, exifHeader)
	if len(blob) < 8 || !isTIFF(blob) {
		return nil, ErrNoMetadata
	}
	return blob, nil
}

func isTIFF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
}

func readN(r io.Reader, n int64) ([]byte, error) {
	if n < 0 || n > maxBlob {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func skip(br *bufio.Reader, n int64) error {
	for n > 0 {
		step := min(n, 1<<30)
		if _, err := br.Discard(int(step)); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// jpegExif walks the marker segments up to the start of scan.
func jpegExif(br *bufio.Reader) ([]byte, error) {
	if _, err := br.Discard(2); err != nil {
		return nil, err
	}
	var hdr [2]byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != 0xFF {
			return nil, nil
		}
		marker, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		for marker == 0xFF {
			if marker, err = br.ReadByte(); err != nil {
				return nil, err
			}
		}
		switch {
		case marker == 0xD9 || marker == 0xDA:
			return nil, nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD8):
			continue
		}
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return nil, err
		}
		segLen := int64(binary.BigEndian.Uint16(hdr[:]))
		if segLen < 2 {
			return nil, nil
		}
		if marker != 0xE1 {
			if err := skip(br, segLen-2); err != nil {
				return nil, err
			}
			continue
		}
		seg, err := readN(br, segLen-2)
		if err != nil {
			return nil, err
		}
		if bytes.HasPrefix(seg, exifHeader) {
			return seg, nil
		}
	}
}

// pngExif walks chunks until eXIf, or until image data starts.
func pngExif(br *bufio.Reader) ([]byte, error) {
	if _, err := br.Discard(len(pngSig)); err != nil {
		return nil, err
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return nil, err
		}
		n := int64(binary.BigEndian.Uint32(hdr[:4]))
		switch string(hdr[4:]) {
		case "eXIf":
			return readN(br, n)
		case "IDAT", "IEND":
			return nil, nil
		}
		if err := skip(br, n+4); err != nil {
			return nil, err
		}
	}
}

// webpExif walks RIFF chunks. EXIF follows the image data in extended
// files, so the walk has to go past it.
func webpExif(br *bufio.Reader) ([]byte, error) {
	if _, err := br.Discard(12); err != nil {
		return nil, err
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return nil, err
		}
		n := int64(binary.LittleEndian.Uint32(hdr[4:]))
		if string(hdr[:4]) == "EXIF" {
			return readN(br, n)
		}
		// Chunks are padded to an even size.
		if err := skip(br, n+n%2); err != nil {
			return nil, err
		}
	}
}
