// Package fixtures ships a few sample photos inside the binary so an empty
// gallery can be populated for demos.
package fixtures

import (
	"embed"
	"io/fs"
	"path"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

//go:embed samples/*.png
var samples embed.FS

// Saver stores one image. *storage.Store implements it.
type Saver interface {
	Save(buf []byte, originalName string, opts model.StoreOptions) (*model.StoreResult, error)
}

// Names lists the embedded samples in a stable order.
func Names() []string {
	entries, _ := fs.ReadDir(samples, "samples")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Seed imports every sample under its own name. Existing files are left
// alone, so seeding twice is a no-op apart from filling missing thumbnails.
func Seed(store Saver) model.BatchResult {
	var out model.BatchResult
	for _, name := range Names() {
		data, err := samples.ReadFile(path.Join("samples", name))
		if err != nil {
			out.Add(name, nil, err)
			continue
		}
		res, err := store.Save(data, name, model.StoreOptions{ForceBasename: name, Overwrite: false})
		if err == nil && res.ThumbnailErr != nil {
			log.Warn().Err(res.ThumbnailErr).Str("filename", name).Msg("seeded without thumbnail")
		}
		out.Add(name, res, err)
	}
	log.Info().Int("imported", len(out.Items)).Int("failed", len(out.Errors)).Msg("fixtures seeded")
	return out
}
