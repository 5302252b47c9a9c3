// Package storage is the filesystem-backed photo store. The originals
// directory is the catalogue: there is no index, every call re-reads the
// directory. Thumbnails live in a "thumbs" subdirectory and are linked to
// their original by name only.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dharsanguruparan/PhotoDrop/internal/media"
	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/thumbnail"
)

// Store persists originals and their thumbnails under a root directory.
type Store struct {
	root     string
	thumbDir string
	thumbs   thumbnail.Generator
	// flight collapses concurrent thumbnail generation for one original.
	flight singleflight.Group
}

// New creates the directory layout under root if needed.
func New(root string, thumbs thumbnail.Generator) (*Store, error) {
	thumbDir := filepath.Join(root, "thumbs")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directories: %w", err)
	}
	return &Store{root: root, thumbDir: thumbDir, thumbs: thumbs}, nil
}

// Root is the originals directory.
func (s *Store) Root() string { return s.root }

// ThumbDir is the thumbnails directory.
func (s *Store) ThumbDir() string { return s.thumbDir }

// Save runs the upload pipeline for one file: pick the extension, check the
// magic bytes, pick the name, write the original, then try the thumbnail.
// A thumbnail failure is reported in StoreResult.ThumbnailErr and never
// fails the call.
func (s *Store) Save(buf []byte, originalName string, opts model.StoreOptions) (*model.StoreResult, error) {
	ext := media.Extension(originalName)
	if opts.ForceBasename != "" {
		ext = media.Extension(opts.ForceBasename)
	}
	if !media.Accepted(ext) {
		return nil, fmt.Errorf("%q: %w", originalName, model.ErrUnsupportedType)
	}
	if err := media.Check(buf, ext); err != nil {
		return nil, fmt.Errorf("%q: %w", originalName, err)
	}

	name := media.NewName(ext)
	if opts.ForceBasename != "" {
		name = media.SanitizeBasename(opts.ForceBasename, ext)
	}
	path := filepath.Join(s.root, name)

	if !opts.Overwrite {
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			res := &model.StoreResult{Filename: name, Skipped: true}
			thumb, err := s.EnsureThumbnail(name)
			res.Thumbnail, res.ThumbnailErr = thumb, err
			return res, nil
		}
	}

	if err := writeFile(path, buf); err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	log.Info().Str("filename", name).Int("bytes", len(buf)).Msg("original stored")

	res := &model.StoreResult{Filename: name}
	thumb, err := s.generate(name)
	res.Thumbnail, res.ThumbnailErr = thumb, err
	return res, nil
}

// OriginalPath returns the on-disk path of an existing original, or
// ErrNotFound when the name is unsafe, not an accepted image or absent.
func (s *Store) OriginalPath(name string) (string, error) {
	if !media.SafeName(name) || !media.AcceptedName(name) {
		return "", fmt.Errorf("%q: %w", name, model.ErrNotFound)
	}
	path := filepath.Join(s.root, name)
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return "", fmt.Errorf("%q: %w", name, model.ErrNotFound)
	}
	return path, nil
}

// ThumbPath returns the path of an existing thumbnail file, without
// generating anything.
func (s *Store) ThumbPath(name string) (string, bool) {
	if !media.SafeName(name) {
		return "", false
	}
	path := filepath.Join(s.thumbDir, name)
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// FindThumbnail returns the name of an existing thumbnail for original,
// trying the current then the legacy naming convention.
func (s *Store) FindThumbnail(original string) (string, bool) {
	for _, candidate := range media.ThumbCandidates(original) {
		if _, ok := s.ThumbPath(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

// EnsureThumbnail returns the thumbnail name for an existing original,
// generating it when none is on disk.
func (s *Store) EnsureThumbnail(original string) (string, error) {
	if _, err := s.OriginalPath(original); err != nil {
		return "", err
	}
	if name, ok := s.FindThumbnail(original); ok {
		return name, nil
	}
	return s.generate(original)
}

// ResolveThumbnail maps a request for name onto a thumbnail file path. name
// may be a thumbnail file name or an original's name; a missing thumbnail
// is generated when its original exists.
func (s *Store) ResolveThumbnail(name string) (string, error) {
	if !media.SafeName(name) || !media.AcceptedName(name) {
		return "", fmt.Errorf("%q: %w", name, model.ErrNotFound)
	}
	if path, ok := s.ThumbPath(name); ok {
		return path, nil
	}
	original := name
	switch {
	case media.IsThumbName(name):
		found, err := s.originalForBase(media.ThumbBase(name))
		if err != nil {
			return "", err
		}
		original = found
	default:
		if _, err := s.OriginalPath(name); err != nil {
			// A legacy "<base>.jpg" request whose original has another
			// extension.
			found, ferr := s.originalForBase(media.Base(name))
			if ferr != nil {
				return "", err
			}
			original = found
		}
	}
	thumb, err := s.EnsureThumbnail(original)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.thumbDir, thumb), nil
}

// Delete removes an original and, best effort, its thumbnail. Only a failure
// on the original is an error.
func (s *Store) Delete(name string) (model.DeleteResult, error) {
	var res model.DeleteResult
	path, err := s.OriginalPath(name)
	if err != nil {
		return res, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%q: %w", name, model.ErrNotFound)
		}
		return res, fmt.Errorf("delete %s: %w", name, err)
	}
	res.PhotoDeleted = true
	log.Info().Str("filename", name).Msg("original deleted")

	for _, candidate := range media.ThumbCandidates(name) {
		err := os.Remove(filepath.Join(s.thumbDir, candidate))
		switch {
		case err == nil:
			res.ThumbnailDeleted = true
		case !errors.Is(err, fs.ErrNotExist):
			log.Warn().Err(err).Str("thumbnail", candidate).Msg("thumbnail delete failed")
		}
	}
	return res, nil
}

// ListOriginals returns the names of all accepted originals, unsorted.
func (s *Store) ListOriginals() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.root, model.ErrListing, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !media.SafeName(e.Name()) || !media.AcceptedName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ListThumbs returns the set of file names present in the thumbnails
// directory. A missing directory is an empty set.
func (s *Store) ListThumbs() (map[string]bool, error) {
	entries, err := os.ReadDir(s.thumbDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("read %s: %w: %w", s.thumbDir, model.ErrListing, err)
	}
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			set[e.Name()] = true
		}
	}
	return set, nil
}

// MissingThumbnails lists originals with no thumbnail under either naming
// convention.
func (s *Store) MissingThumbnails() ([]string, error) {
	originals, err := s.ListOriginals()
	if err != nil {
		return nil, err
	}
	thumbs, err := s.ListThumbs()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range originals {
		if _, ok := MatchThumbnail(name, thumbs); !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// MatchThumbnail picks the thumbnail for original out of a directory
// listing, current convention first.
func MatchThumbnail(original string, thumbs map[string]bool) (string, bool) {
	for _, candidate := range media.ThumbCandidates(original) {
		if thumbs[candidate] {
			return candidate, true
		}
	}
	return "", false
}

func (s *Store) generate(original string) (string, error) {
	thumb := media.ThumbName(original)
	_, err, _ := s.flight.Do(original, func() (interface{}, error) {
		src := filepath.Join(s.root, original)
		dst := filepath.Join(s.thumbDir, thumb)
		if err := s.thumbs.Generate(src, dst); err != nil {
			return nil, err
		}
		log.Debug().Str("original", original).Str("thumbnail", thumb).Msg("thumbnail generated")
		return nil, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("original", original).Msg("thumbnail generation failed")
		return "", fmt.Errorf("%s: %w: %w", original, model.ErrThumbnailFailed, err)
	}
	return thumb, nil
}

func (s *Store) originalForBase(base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%q: %w", base, model.ErrNotFound)
	}
	names, err := s.ListOriginals()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if media.Base(name) == base {
			return name, nil
		}
	}
	return "", fmt.Errorf("original for %q: %w", base, model.ErrNotFound)
}

// writeFile replaces path with data through a temp file in the same
// directory. Temp names start with a dot so listings skip them.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := bytes.NewReader(data).WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
