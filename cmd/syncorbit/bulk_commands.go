package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncorbit/internal/api"
)

func newBulkCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newBulkCommand(ctx, "ignore", "Exclude movies from automatic verdicts"),
		newBulkCommand(ctx, "unignore", "Re-include previously ignored movies"),
		newBulkCommand(ctx, "reference", "Request Whisper reference transcriptions"),
		newBulkCommand(ctx, "resync", "Generate corrected subtitle tracks"),
	}
}

func newBulkCommand(ctx *commandContext, action, short string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   action + " <movie> [movie...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.BulkResponse
			err := ctx.client().post("/api/bulk/"+action,
				map[string][]string{"movies": args}, &resp)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			failures := 0
			for _, result := range resp.Results {
				if result.OK {
					fmt.Fprintf(out, "%s: ok\n", result.Movie)
					continue
				}
				failures++
				fmt.Fprintf(out, "%s: %s\n", result.Movie, result.Error)
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d movies failed", failures, len(resp.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "jobs [id]",
		Short: "List background transcription jobs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				var job api.JobStatus
				if err := client.get("/api/jobs/"+args[0], &job); err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, job)
				}
				fmt.Fprintf(out, "%s  %s  %s  %.0f%%", job.ID, job.State, job.Movie, job.Progress*100)
				if job.Message != "" {
					fmt.Fprintf(out, "  %s", job.Message)
				}
				fmt.Fprintln(out)
				return nil
			}

			var resp struct {
				Jobs []api.JobStatus `json:"jobs"`
			}
			if err := client.get("/api/jobs", &resp); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			if len(resp.Jobs) == 0 {
				fmt.Fprintln(out, "No transcription jobs.")
				return nil
			}

			rows := make([][]string, 0, len(resp.Jobs))
			for _, job := range resp.Jobs {
				rows = append(rows, []string{
					job.ID, job.Movie, job.State,
					fmt.Sprintf("%.0f%%", job.Progress*100),
					job.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Movie", "State", "Progress", "Updated"},
				rows, 3))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
