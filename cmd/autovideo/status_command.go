package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/deps"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and queue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintln(out, "External tools:")
				statuses := deps.CheckBinaries(deps.Requirements(cfg))
				for _, status := range statuses {
					kind := statusOK
					message := status.Detail
					if !status.Available {
						kind = statusError
						if status.Optional {
							kind = statusWarn
						}
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
				}
				if missing := deps.MissingRequired(statuses); len(missing) > 0 {
					fmt.Fprintf(out, "\n%d required tool(s) missing; runs will fail until they are installed\n", len(missing))
				}

				fmt.Fprintln(out, "\nScript store:")
				storeKind := "local queue"
				if cfg.Sheets.Enabled {
					storeKind = fmt.Sprintf("google sheets (%s)", cfg.Sheets.Worksheet)
				}
				fmt.Fprintln(out, renderStatusLine("Source", statusOK, storeKind, colorize))

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "\nQueue:")
				rows := make([][]string, 0, len(stats))
				for _, status := range queue.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{status.DisplayValue(), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, statusIndent+"empty")
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
