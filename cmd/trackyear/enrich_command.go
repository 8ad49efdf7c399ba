package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/trackyear/internal/catalog"
	"github.com/handiism/trackyear/internal/enrich"
	"github.com/handiism/trackyear/internal/normalize"
	"github.com/handiism/trackyear/internal/tui"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var workers int
	var reviewAfter bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Look up release years, resuming an interrupted run",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			path := ctx.settings.ManifestPath
			if p := strings.TrimSpace(manifestPath); p != "" {
				path = p
			}
			if cmd.Flags().Changed("workers") {
				ctx.settings.Workers = workers
			}
			if ctx.settings.Workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			lookup, err := ctx.lookup()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			normalizer := normalize.New(ctx.tagStore())
			candidates := func(context.Context) ([]string, error) {
				ids, err := ctx.extractor().ExtractFile(path)
				if err != nil {
					return nil, err
				}
				warnDuplicates(ctx, ids)
				return ids, nil
			}
			opts := enrich.Options{Workers: ctx.settings.Workers}

			ctx.log().Info("enrichment starting",
				"manifest", path,
				"results", store.ResultPath(),
				"workers", opts.Workers,
			)

			var summary enrich.Summary
			if !plain && stdinIsTerminal() {
				summary, err = tui.RunEnrich(runCtx, func(onProgress func(enrich.ProgressEvent)) *enrich.Runner {
					return enrich.NewRunner(store, lookup, normalizer, opts, onProgress)
				}, candidates, ctx.verbose())
			} else {
				runner := enrich.NewRunner(store, lookup, normalizer, opts, ctx.logProgress)
				summary, err = runner.Run(runCtx, candidates)
			}
			if err != nil {
				ctx.log().Error("enrichment stopped",
					"processed", summary.Processed,
					"error", err,
				)
				return err
			}

			printSummary(cmd.OutOrStdout(), summary)
			ctx.log().Info("enrichment complete",
				"start", summary.Start.String(),
				"resolved", summary.Resolved,
				"unresolved", summary.Unresolved,
			)

			if reviewAfter {
				return runReview(runCtx, cmd, store, lookup)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "rekordbox XML export (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent lookups (overrides config)")
	cmd.Flags().BoolVar(&reviewAfter, "review", false, "Review unresolved tracks when the run completes")
	cmd.Flags().BoolVar(&plain, "plain", false, "Log progress instead of showing the progress view")
	return cmd
}

func printSummary(out io.Writer, s enrich.Summary) {
	rows := [][]string{
		{"Tracks", fmt.Sprint(s.Total)},
		{"Already done", fmt.Sprint(s.Skipped)},
		{"Resolved", fmt.Sprint(s.Resolved)},
		{"Unresolved", fmt.Sprint(s.Unresolved)},
	}
	fmt.Fprintln(out, renderTable([]string{"Enrichment", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func warnDuplicates(ctx *commandContext, ids []string) {
	for _, id := range catalog.Duplicates(ids) {
		ctx.log().Warn("duplicate location in manifest", "location", id)
	}
}
