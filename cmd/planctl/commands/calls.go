package commands

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/ai-travel-planner/internal/config"
	"example.com/ai-travel-planner/internal/database"
	"example.com/ai-travel-planner/internal/models"
	"example.com/ai-travel-planner/internal/repository"
)

func callsCmd() *cobra.Command {
	var (
		limit  int
		mode   string
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recent upstream calls from the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.UpstreamCallFilter{}
			if mode != "" {
				callMode := models.CallMode(mode)
				if callMode != models.CallModeBuffered && callMode != models.CallModeStream {
					return fmt.Errorf("--mode must be %q or %q", models.CallModeBuffered, models.CallModeStream)
				}
				filter.Mode = &callMode
			}
			if failed {
				success := false
				filter.Success = &success
			}

			dbConfig, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), dbConfig, slog.Default())
			if err != nil {
				return err
			}
			defer db.Close()

			calls, err := repository.NewUpstreamCallRepository(db).Recent(cmd.Context(), filter, limit)
			if err != nil {
				return err
			}
			return printCalls(cmd.OutOrStdout(), calls)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of calls to show")
	cmd.Flags().StringVar(&mode, "mode", "", "filter by mode (buffered or stream)")
	cmd.Flags().BoolVar(&failed, "failed", false, "show failed calls only")
	return cmd
}

func printCalls(w io.Writer, calls []models.UpstreamCall) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tMODE\tROUTE\tBUDGET\tRESULT\tLATENCY")

	for _, call := range calls {
		result := "ok"
		if !call.Success && call.ErrorKind != nil {
			result = *call.ErrorKind
		}
		fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%.2f\t%s\t%dms\n",
			call.CreatedAt.Format("2006-01-02 15:04:05"),
			call.Mode,
			call.Source,
			call.Destination,
			call.Budget,
			result,
			call.LatencyMS,
		)
	}
	return tw.Flush()
}
