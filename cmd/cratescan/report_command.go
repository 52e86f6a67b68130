package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cratescan/internal/catalog"
	"cratescan/internal/config"
	"cratescan/internal/reconcile"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var markdownPath string
	var diffOut bool

	cmd := &cobra.Command{
		Use:   "report [root]",
		Short: "Show the most recent scan for a library root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.LibraryDir
			if len(args) == 1 {
				root, err = config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve library root: %w", err)
				}
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if diffOut {
				return runReportDiff(cmd, store, root)
			}

			row, err := store.LatestScan(cmd.Context(), root)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("no scans recorded for %s; run `cratescan scan` first", root)
			}

			report, err := reconcile.DecodeReport(row.ScanDump)
			if err != nil {
				return err
			}

			if markdownPath != "" {
				if err := os.WriteFile(markdownPath, []byte(renderMarkdown(report)), 0o644); err != nil {
					return fmt.Errorf("write markdown report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote Markdown report to %s\n", markdownPath)
				return nil
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the stored scan report as JSON")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Export the stored scan report as Markdown to a file")
	cmd.Flags().BoolVar(&diffOut, "diff", false, "Show what changed between the two most recent scans")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown", "diff")
	return cmd
}

func runReportDiff(cmd *cobra.Command, store *catalog.Store, root string) error {
	rows, err := store.RecentScans(cmd.Context(), root, 2)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("need at least two scans of %s to diff; have %d", root, len(rows))
	}

	// RecentScans is newest first.
	current, err := reconcile.DecodeReport(rows[0].ScanDump)
	if err != nil {
		return err
	}
	previous, err := reconcile.DecodeReport(rows[1].ScanDump)
	if err != nil {
		return err
	}

	renderDiff(cmd.OutOrStdout(), previous, current, reconcile.DiffReports(previous, current))
	return nil
}
