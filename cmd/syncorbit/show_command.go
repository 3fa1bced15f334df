package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncorbit/internal/api"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		showAnchors bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "show <movie>",
		Short: "Show one movie's sync analysis in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.MovieResponse
			if err := ctx.client().get("/api/library/"+escapeMovie(args[0]), &resp); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			movie := resp.Movie
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader(movie.DisplayTitle, colorize) {
				fmt.Fprintln(out, line)
			}
			printField := func(label, value string) {
				if value == "" {
					value = "-"
				}
				fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, label+":", value)
			}
			printField("Directory", movie.Movie)
			printField("Verdict", colorizeDecision(movie.Decision, colorize))
			printField("State", movie.State)
			printField("Anchors", fmt.Sprintf("%d", movie.AnchorCount))
			printField("Avg offset", fmt.Sprintf("%+.2f s", movie.AvgOffsetSec))
			printField("Drift span", fmt.Sprintf("%.2f s", movie.DriftSpanSec))
			printField("Reference", movie.BestReference)
			printField("Reference path", movie.ReferencePath)
			printField("Target path", movie.TargetPath)
			printField("Whisper ref", yesNo(movie.HasWhisper))
			printField("Resynced track", yesNo(movie.HasFFsubsync))
			printField("Ignored", yesNo(movie.Ignored))
			printField("Last analyzed", movie.LastAnalyzed)

			if showAnchors && len(movie.Anchors) > 0 {
				rows := make([][]string, 0, len(movie.Anchors))
				for _, anchor := range movie.Anchors {
					rows = append(rows, []string{
						fmt.Sprintf("%.1f", anchor.T),
						fmt.Sprintf("%+.3f", anchor.Delta),
						fmt.Sprintf("%.2f", anchor.Score),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Ref time (s)", "Offset (s)", "Score"},
					rows, 0, 1, 2))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAnchors, "anchors", false, "Print the anchor table")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
