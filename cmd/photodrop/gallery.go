package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/PhotoDrop/internal/datetaken"
	"github.com/dharsanguruparan/PhotoDrop/internal/fixtures"
	"github.com/dharsanguruparan/PhotoDrop/internal/gallery"
	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/processing"
	"github.com/dharsanguruparan/PhotoDrop/internal/queue"
	"github.com/dharsanguruparan/PhotoDrop/internal/s3storage"
	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Import the bundled sample photos (safe to repeat)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			result := fixtures.Seed(store)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("seeding failed for %d file(s)", len(result.Errors))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var meta bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the gallery newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, thumbs, err := openStore(cfg)
			if err != nil {
				return err
			}
			list := gallery.New(store, datetaken.New(thumbs), cfg.DateConcurrency)
			if meta {
				images, err := list.Images(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), images)
			}
			names, err := list.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&meta, "meta", false, "Include thumbnail and date details as JSON")
	return cmd
}

func newThumbsCmd() *cobra.Command {
	var enqueue bool
	cmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Rebuild missing thumbnails inline or through the worker queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			missing, err := store.MissingThumbnails()
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all thumbnails present")
				return nil
			}
			if enqueue {
				client := asynq.NewClient(asynq.RedisClientOpt{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				})
				defer client.Close()
				return enqueueMissing(cmd.Context(), cmd.OutOrStdout(), client, missing)
			}
			return rebuildMissing(cmd.Context(), cmd.OutOrStdout(), store, missing, cfg.DateConcurrency)
		},
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Queue rebuild tasks for the worker instead of running them here")
	return cmd
}

func enqueueMissing(ctx context.Context, out io.Writer, client queue.Enqueuer, missing []string) error {
	queued := 0
	for _, name := range missing {
		ok, err := queue.EnqueueRebuild(ctx, client, name)
		if err != nil {
			return err
		}
		if ok {
			queued++
		}
	}
	fmt.Fprintf(out, "queued %d rebuild task(s), %d already pending\n", queued, len(missing)-queued)
	return nil
}

func rebuildMissing(ctx context.Context, out io.Writer, store *storage.Store, missing []string, batch int) error {
	errs, err := processing.Map(ctx, missing, batch, func(_ context.Context, name string) error {
		_, err := store.EnsureThumbnail(name)
		return err
	})
	if err != nil {
		return err
	}
	failed := 0
	for i, e := range errs {
		if e != nil {
			failed++
			fmt.Fprintf(out, "%s: %s (%s)\n", missing[i], e, model.ErrorKind(e))
		}
	}
	fmt.Fprintf(out, "rebuilt %d thumbnail(s), %d failed\n", len(missing)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d thumbnail(s) could not be rebuilt", failed)
	}
	return nil
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy originals and thumbnails to the configured S3 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.BackupConfigured() {
				return fmt.Errorf("backup needs PHOTODROP_S3_ENDPOINT, PHOTODROP_S3_ACCESS_KEY and PHOTODROP_S3_SECRET_KEY")
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			remote, err := s3storage.New(cfg)
			if err != nil {
				return err
			}
			report, err := remote.Backup(cmd.Context(), store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d, unchanged %d\n", report.Uploaded, report.Skipped)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
