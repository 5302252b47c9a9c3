// Package gallery builds the photo listing from the originals directory.
package gallery

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/processing"
	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
)

// Catalogue is the part of the store the listing reads.
type Catalogue interface {
	Root() string
	ListOriginals() ([]string, error)
	ListThumbs() (map[string]bool, error)
}

// DateResolver resolves the date an original was taken.
type DateResolver interface {
	Resolve(path string) model.DateInfo
}

// Service lists the gallery newest first.
type Service struct {
	store       Catalogue
	dates       DateResolver
	concurrency int
}

// New returns a Service resolving at most concurrency dates at a time.
func New(store Catalogue, dates DateResolver, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = processing.DefaultBatchSize
	}
	return &Service{store: store, dates: dates, concurrency: concurrency}
}

// Names returns original file names, newest first.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	images, err := s.Images(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Original
	}
	return names, nil
}

// Images returns every original with its thumbnail and date, newest first.
// Originals without a usable date come last.
func (s *Service) Images(ctx context.Context) ([]model.Image, error) {
	originals, err := s.store.ListOriginals()
	if err != nil {
		return nil, err
	}
	thumbs, err := s.store.ListThumbs()
	if err != nil {
		return nil, err
	}

	root := s.store.Root()
	images, err := processing.Map(ctx, originals, s.concurrency, func(_ context.Context, name string) model.Image {
		info := s.dates.Resolve(filepath.Join(root, name))
		img := model.Image{Original: name, DateSource: info.Source}
		if thumb, ok := storage.MatchThumbnail(name, thumbs); ok {
			img.Thumb = &thumb
		}
		if info.Known() {
			img.Taken = info.Taken
			stamp := info.Taken.Format(time.RFC3339)
			img.DateTaken = &stamp
		} else {
			img.DateSource = model.DateSourceUnknown
		}
		return img
	})
	if err != nil {
		return nil, err
	}
	Sort(images)
	log.Debug().Int("count", len(images)).Msg("gallery listed")
	return images, nil
}

// Sort orders images newest first with zero dates last. Equal dates keep
// their relative order.
func Sort(images []model.Image) {
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i].Taken, images[j].Taken
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
