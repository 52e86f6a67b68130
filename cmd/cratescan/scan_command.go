package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cratescan/internal/artwork"
	"cratescan/internal/catalog"
	"cratescan/internal/config"
	"cratescan/internal/deezer"
	"cratescan/internal/library"
	"cratescan/internal/logging"
	"cratescan/internal/reconcile"
	"cratescan/internal/resolve"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var outputPath string
	var skipImages bool
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan the library and report missing albums",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				root, err := config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve scan root: %w", err)
				}
				cfg.Paths.LibraryDir = root
			}
			if workers > 0 {
				cfg.Scan.Workers = workers
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire scan lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another scan is already running (lock %s)", cfg.LockPath())
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runScan(runCtx, cfg, skipImages)
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(renderMarkdown(report)), 0o644); err != nil {
					return fmt.Errorf("write markdown report: %w", err)
				}
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the scan report as JSON")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Also write a Markdown report to a file")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "Skip artist image downloads for this run")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the reconciliation worker count")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runScan(ctx context.Context, cfg *config.Config, skipImages bool) (*reconcile.Report, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	provider, err := deezer.New(cfg.Deezer.BaseURL,
		deezer.WithRetry(cfg.Deezer.RetryAttempts, time.Duration(cfg.Deezer.RetryDelayMS)*time.Millisecond),
		deezer.WithHTTPClient(newProviderHTTPClient(cfg)),
	)
	if err != nil {
		return nil, err
	}

	var fetcher reconcile.ImageFetcher
	if cfg.Artwork.Enabled && !skipImages {
		fetcher = artwork.NewFetcher(cfg.Artwork.Filename, time.Duration(cfg.Artwork.Timeout)*time.Second, logger)
	}

	scanner := library.NewScanner(cfg.Scan.ExcludeDirs, logger)
	resolver := resolve.New(store, provider, logger)
	engine := reconcile.New(cfg, scanner, resolver, fetcher, store, logger)
	return engine.Run(ctx)
}

func newProviderHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: time.Duration(cfg.Deezer.RequestTimeout) * time.Second}
}
