package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "List the candidate tracks of the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			path := ctx.settings.ManifestPath
			if p := strings.TrimSpace(manifestPath); p != "" {
				path = p
			}

			ids, err := ctx.extractor().ExtractFile(path)
			if err != nil {
				return err
			}
			warnDuplicates(ctx, ids)

			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, len(ids))
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "rekordbox XML export (overrides config)")
	cmd.Flags().BoolVarP(&countOnly, "quiet", "q", false, "Print only the number of candidates")
	return cmd
}
