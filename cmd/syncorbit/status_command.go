package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncorbit/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and library verdict counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.LibraryStatus
			if err := ctx.client().get("/api/status", &status); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%s%-*s %s (pid %d)\n", statusIndent, statusLabelWidth, "Running:", yesNo(status.Running), status.PID)
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Database:", status.DatabasePath)

			for _, line := range renderSectionHeader("Library", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderCountLine("Total", status.Total, false, ""))
			fmt.Fprintln(out, renderCountLine("Synced", status.Synced, colorize, ansiGreen))
			fmt.Fprintln(out, renderCountLine("Needs adjustment", status.NeedsAdjustment, colorize, ansiYellow))
			fmt.Fprintln(out, renderCountLine("Bad", status.Bad, colorize, ansiRed))
			fmt.Fprintln(out, renderCountLine("Unknown", status.Unknown, false, ""))
			fmt.Fprintln(out, renderCountLine("Ignored", status.Ignored, false, ""))
			fmt.Fprintln(out, renderCountLine("Missing subtitles", status.MissingSubtitles, colorize, ansiYellow))

			if status.Scan.Running {
				for _, line := range renderSectionHeader("Scan", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "%s%d/%d %s\n", statusIndent, status.Scan.Index, status.Scan.Total, status.Scan.CurrentMovie)
			}
			if len(status.Jobs) > 0 {
				for _, line := range renderSectionHeader("Transcription jobs", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, job := range status.Jobs {
					fmt.Fprintf(out, "%s%s  %s  %s\n", statusIndent, job.ID, job.State, job.Movie)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
