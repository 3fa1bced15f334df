package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"syncorbit/internal/api"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Trigger a full library rescan",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			var progress api.ScanProgress
			if err := client.post("/api/scan", nil, &progress); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !wait {
				fmt.Fprintln(out, "Rescan started.")
				return nil
			}

			for {
				time.Sleep(500 * time.Millisecond)
				if err := client.get("/api/scan/progress", &progress); err != nil {
					return err
				}
				if !progress.Running {
					break
				}
				fmt.Fprintf(out, "\r%d/%d %s", progress.Index, progress.Total, progress.CurrentMovie)
			}
			fmt.Fprintf(out, "\rRescan finished: %d movies processed.\n", progress.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the rescan finishes, printing progress")
	return cmd
}

func newReanalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		force      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "reanalyze <movie>",
		Short: "Re-run sync analysis for one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/library/" + escapeMovie(args[0]) + "/reanalyze"
			if force {
				path += "?force=1"
			}
			var summary api.MovieSummary
			if err := ctx.client().post(path, nil, &summary); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "%s: %s (%d anchors, avg %+.2f s, span %.2f s, ref %s)\n",
				summary.DisplayTitle, colorizeDecision(summary.Decision, colorize),
				summary.AnchorCount, summary.AvgOffsetSec, summary.DriftSpanSec, summary.BestReference)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Analyze even when the stored verdict is fresh")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
