package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/trackyear/internal/oracle"
	"github.com/handiism/trackyear/internal/review"
	"github.com/handiism/trackyear/internal/tui"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Retry, override or skip unresolved tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

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
			return runReview(runCtx, cmd, store, lookup)
		},
	}
}

func runReview(ctx context.Context, cmd *cobra.Command, store review.ResultStore, lookup oracle.Lookup) error {
	if !stdinIsTerminal() {
		return errors.New("review needs an interactive terminal")
	}

	session, err := review.NewSession(store, lookup)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if session.Remaining() == 0 {
		fmt.Fprintln(out, "No unresolved tracks.")
		return nil
	}

	summary, err := tui.RunReview(ctx, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reviewed: %d resolved, %d skipped, %d left\n", summary.Resolved, summary.Skipped, session.Remaining())
	return nil
}
