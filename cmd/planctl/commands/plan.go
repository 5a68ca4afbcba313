package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"example.com/ai-travel-planner/internal/ai"
)

func planCmd() *cobra.Command {
	var (
		req     ai.PlanRequest
		stream  bool
		rawJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a day-by-day itinerary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				plan ai.PlanResponse
				err  error
			)
			if stream {
				plan, err = client.PlanStream(cmd.Context(), req)
			} else {
				plan, err = client.Plan(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			if rawJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Source, "source", "", "origin city")
	cmd.Flags().StringVar(&req.Destination, "destination", "", "destination city")
	cmd.Flags().Float64Var(&req.Budget, "budget", 0, "total budget in INR")
	cmd.Flags().BoolVar(&stream, "stream", false, "use the streaming endpoint")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print the itinerary as JSON")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func printPlan(w io.Writer, plan ai.PlanResponse) {
	fmt.Fprintf(w, "%s -> %s, budget INR %.2f\n", plan.Source, plan.Destination, plan.Budget)

	for _, day := range plan.Days {
		fmt.Fprintf(w, "\nDay %d: %s\n", day.Day, day.Activities.String())

		categories := make([]string, 0, len(day.Expenses))
		for category := range day.Expenses {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			amount := day.Expenses[category]
			if value, ok := amount.Float(); ok {
				fmt.Fprintf(w, "  %-16s %10.2f\n", category, value)
			} else {
				fmt.Fprintf(w, "  %-16s %10s\n", category, amount.Text)
			}
		}
		fmt.Fprintf(w, "  %-16s %10.2f\n", "total", day.Total())
	}

	total := plan.TotalExpenses()
	fmt.Fprintf(w, "\nTotal: INR %.2f of %.2f\n", total, plan.Budget)
	if total > plan.Budget {
		fmt.Fprintf(w, "Warning: itinerary exceeds the budget by INR %.2f\n", total-plan.Budget)
	}
}
