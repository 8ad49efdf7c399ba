package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/trackyear/internal/audio"
	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/reconcile"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var playlistPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize results by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			var (
				category reconcile.Category
				selected bool
			)
			if strings.TrimSpace(categoryFlag) != "" {
				c, err := reconcile.ParseCategory(categoryFlag)
				if err != nil {
					return err
				}
				category, selected = c, true
			}
			if playlistPath != "" && !selected {
				return fmt.Errorf("--playlist requires --category")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			records, err := store.ReadResults()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCounts(reconcile.Count(records)))
			if !selected {
				return nil
			}

			chosen := reconcile.Records(records, category)
			if len(chosen) > 0 {
				fmt.Fprintln(out, renderRecords(chosen))
			}

			if playlistPath != "" {
				path, format, err := playlistTarget(playlistPath, ctx.settings.PlaylistFormat)
				if err != nil {
					return err
				}
				if err := reconcile.WritePlaylist(path, format, ctx.settings.M3UExtended, category, chosen); err != nil {
					return fmt.Errorf("write playlist: %w", err)
				}
				fmt.Fprintf(out, "Wrote %d tracks to %s\n", len(chosen), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "List tracks of one category (missing, differing, matching, unresolved, pending)")
	cmd.Flags().StringVar(&playlistPath, "playlist", "", "Write the listed tracks to a playlist file")
	return cmd
}

// playlistTarget resolves the playlist format from the file extension,
// falling back to the configured format and adding its extension.
func playlistTarget(path, configured string) (string, audio.PlaylistFormat, error) {
	if ext := filepath.Ext(path); ext != "" {
		format, err := audio.ParsePlaylistFormat(ext)
		return path, format, err
	}
	format, err := audio.ParsePlaylistFormat(configured)
	if err != nil {
		return "", format, err
	}
	return path + format.Extension(), format, nil
}

func renderCounts(counts reconcile.Counts) string {
	rows := make([][]string, 0, len(reconcile.Categories)+1)
	total := 0
	for _, c := range reconcile.Categories {
		rows = append(rows, []string{c.String(), fmt.Sprint(counts[c])})
		total += counts[c]
	}
	rows = append(rows, []string{"total", fmt.Sprint(total)})
	return renderTable([]string{"Category", "Tracks"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderRecords(records []model.TrackRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Artist, r.Title, yearCell(r.TaggedYear), yearCell(r.FoundYear), r.SourceID})
	}
	return renderTable(
		[]string{"Artist", "Title", "Tagged", "Found", "Location"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func yearCell(y model.Year) string {
	switch {
	case y.Known():
		return y.String()
	case y == model.YearUnresolved:
		return "unresolved"
	default:
		return "-"
	}
}
