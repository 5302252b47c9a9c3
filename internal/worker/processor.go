// Package worker serves the asynq tasks defined in package queue.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/queue"
)

// Thumbnailer is the part of *storage.Store the worker needs.
type Thumbnailer interface {
	EnsureThumbnail(original string) (string, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	store Thumbnailer
}

// NewProcessor constructs a worker processor.
func NewProcessor(store Thumbnailer) *Processor {
	return &Processor{store: store}
}

// Handler registers the rebuild task handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.RebuildThumbnailTask, p.HandleRebuild)
	return mux
}

// HandleRebuild makes sure the named original has a thumbnail. An original
// that no longer exists is dropped without retrying.
func (p *Processor) HandleRebuild(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.DecodeRebuild(task)
	if err != nil {
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}
	thumb, err := p.store.EnsureThumbnail(payload.Original)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Warn().Str("original", payload.Original).Msg("rebuild skipped, original gone")
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		log.Error().Err(err).Str("original", payload.Original).Msg("rebuild failed")
		return err
	}
	log.Info().Str("original", payload.Original).Str("thumbnail", thumb).Msg("thumbnail rebuilt")
	return nil
}
