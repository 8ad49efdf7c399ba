package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/trackyear/internal/reconcile"
	"github.com/handiism/trackyear/internal/tui"
)

// errDeclined is returned when the operator answers no.
var errDeclined = errors.New("write-back declined; nothing was changed")

// confirmWrite asks the operator to approve a batch.
var confirmWrite = tui.Confirm

func newWritebackCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:       "writeback <missing|differing>",
		Short:     "Write found years into the audio files",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"missing", "differing"},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			category, err := reconcile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			if !category.Writable() {
				return fmt.Errorf("only missing or differing tracks can be written, not %s", category)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			engine := reconcile.NewEngine(store, ctx.tagStore(), ctx.logProgress)

			batch, err := engine.Prepare(category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writes := reconcile.Writes(batch.Steps)
			if writes == 0 {
				fmt.Fprintf(out, "No %s tracks to write.\n", category)
				return nil
			}
			plan := renderPlan(batch.Steps)

			if !yes {
				if !stdinIsTerminal() {
					return errors.New("confirmation needs an interactive terminal; pass --yes to write without asking")
				}
				ok, err := confirmWrite(fmt.Sprintf("Write %d %s years", writes, category), plan)
				if err != nil {
					return err
				}
				if !ok {
					return errDeclined
				}
			} else {
				fmt.Fprintln(out, plan)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			outcome, err := engine.Apply(runCtx, batch)
			fmt.Fprintf(out, "Written: %d, skipped: %d, failed: %d\n", outcome.Written, outcome.Skipped, len(outcome.Failed))
			if err != nil {
				return err
			}
			if len(outcome.Failed) > 0 {
				return fmt.Errorf("%d writes failed; see the log for details", len(outcome.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write without asking for confirmation")
	return cmd
}

func renderPlan(steps []reconcile.Step) string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		r := s.Record
		rows = append(rows, []string{r.Artist, r.Title, yearCell(r.TaggedYear), yearCell(r.FoundYear), s.Action.String()})
	}
	return renderTable(
		[]string{"Artist", "Title", "Tagged", "Found", "Action"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}
