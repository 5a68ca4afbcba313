package commands

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"example.com/ai-travel-planner/internal/gateway"
)

var (
	serverURL string
	timeout   time.Duration
	client    *gateway.Client
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "Client for the AI travel planner gateway",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = gateway.NewClient(serverURL, &http.Client{Timeout: timeout})
			return nil
		},
	}

	defaultURL := os.Getenv("PLANNER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	root.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "gateway base URL (env PLANNER_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 6*time.Minute, "overall request timeout")

	root.AddCommand(planCmd(), healthCmd(), callsCmd())
	return root
}
