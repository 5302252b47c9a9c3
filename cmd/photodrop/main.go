// Command photodrop is the operator CLI: seeding, listing, thumbnail
// maintenance, backups, and shortcuts for running the binaries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/PhotoDrop/internal/config"
	"github.com/dharsanguruparan/PhotoDrop/internal/logging"
	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
	"github.com/dharsanguruparan/PhotoDrop/internal/thumbnail"
)

var envFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "photodrop: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photodrop",
		Short: "PhotoDrop operator CLI",
		Long: `PhotoDrop CLI works directly on the storage directory: seed sample photos,
list the gallery, rebuild missing thumbnails, back up to S3, and run the binaries.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "dotenv file to load instead of ./.env")
	cmd.AddCommand(
		newSeedCmd(),
		newListCmd(),
		newThumbsCmd(),
		newBackupCmd(),
		newTestCmd(),
		newRunCmd(),
	)
	return cmd
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadFile(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.SetupWriter(os.Stderr, cfg.LogLevel, true)
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, *thumbnail.Imaging, error) {
	thumbs := thumbnail.New(cfg.ThumbWidth, cfg.ThumbQuality)
	store, err := storage.New(cfg.StorageDir, thumbs)
	if err != nil {
		return nil, nil, err
	}
	return store, thumbs, nil
}

func newTestCmd() *cobra.Command {
	var race bool
	var cover bool
	cmd := &cobra.Command{
		Use:   "test [packages]",
		Short: "Run Go tests (defaults to ./...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs := args
			if len(pkgs) == 0 {
				pkgs = []string{"./..."}
			}
			goArgs := []string{"test"}
			if race {
				goArgs = append(goArgs, "-race")
			}
			if cover {
				goArgs = append(goArgs, "-cover")
			}
			goArgs = append(goArgs, pkgs...)
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
	cmd.Flags().BoolVar(&race, "race", false, "Enable Go race detector")
	cmd.Flags().BoolVar(&cover, "cover", false, "Collect coverage data")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run individual Go binaries directly",
	}
	cmd.AddCommand(
		newServiceRunner("server", "./cmd/server"),
		newServiceRunner("worker", "./cmd/worker"),
	)
	return cmd
}

func newServiceRunner(name, path string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("go run %s", path),
		RunE: func(cmd *cobra.Command, args []string) error {
			goArgs := []string{"run", path}
			goArgs = append(goArgs, args...)
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin
	return execCmd.Run()
}
