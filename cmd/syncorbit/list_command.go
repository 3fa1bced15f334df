package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"syncorbit/internal/api"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		decision   string
		state      string
		sortKey    string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitored movies and their sync verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if decision != "" {
				query.Set("decision", decision)
			}
			if state != "" {
				query.Set("state", state)
			}
			if sortKey != "" {
				query.Set("sort", sortKey)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			path := "/api/library"
			if encoded := query.Encode(); encoded != "" {
				path += "?" + encoded
			}

			var resp api.ListResponse
			if err := ctx.client().get(path, &resp); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Movies) == 0 {
				fmt.Fprintln(out, "No movies match.")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(resp.Movies))
			for _, movie := range resp.Movies {
				rows = append(rows, []string{
					movie.DisplayTitle,
					colorizeDecision(movie.Decision, colorize),
					strconv.Itoa(movie.AnchorCount),
					fmt.Sprintf("%+.2f", movie.AvgOffsetSec),
					fmt.Sprintf("%.2f", movie.DriftSpanSec),
					movie.BestReference,
					movie.State,
					movie.LastAnalyzed,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Verdict", "Anchors", "Avg (s)", "Span (s)", "Reference", "State", "Analyzed"},
				rows, 2, 3, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "Filter by verdict (synced, needs_adjustment, bad, unknown)")
	cmd.Flags().StringVar(&state, "state", "", "Filter by state (ok, missing_subtitles, ignored)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort order (recency, title, analyzed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
