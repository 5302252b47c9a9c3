// Command server runs the PhotoDrop HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/config"
	"github.com/dharsanguruparan/PhotoDrop/internal/datetaken"
	"github.com/dharsanguruparan/PhotoDrop/internal/fixtures"
	"github.com/dharsanguruparan/PhotoDrop/internal/gallery"
	"github.com/dharsanguruparan/PhotoDrop/internal/logging"
	"github.com/dharsanguruparan/PhotoDrop/internal/server"
	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
	"github.com/dharsanguruparan/PhotoDrop/internal/thumbnail"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if cfg.UploadToken == "" {
		log.Warn().Msg("PHOTODROP_UPLOAD_TOKEN is empty; uploads and deletes are disabled")
	}

	thumbs := thumbnail.New(cfg.ThumbWidth, cfg.ThumbQuality)
	store, err := storage.New(cfg.StorageDir, thumbs)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	if cfg.SeedEnabled {
		result := fixtures.Seed(store)
		if !result.Success {
			log.Warn().Int("errors", len(result.Errors)).Msg("startup seeding failed")
		}
	}
	list := gallery.New(store, datetaken.New(thumbs), cfg.DateConcurrency)
	srv := server.New(cfg, store, list)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
