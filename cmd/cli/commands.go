package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(checkDeadlinesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings <division>",
	Short: "List a division ladder including unpaid teams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/admin/ladder/"+url.PathEscape(args[0])+"/rankings")
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <division>",
	Short: "Check that a division's ranks are contiguous",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/admin/ladder/"+url.PathEscape(args[0])+"/verify")
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire overdue challenges and remind teams of overdue matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/admin/ladder/sweep")
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft <round>",
	Short: "Generate the draft pairings for a league round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/admin/league/rounds/"+url.PathEscape(args[0])+"/draft")
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <round>",
	Short: "Publish the draft of a league round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/admin/league/rounds/"+url.PathEscape(args[0])+"/confirm")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the league standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/league/standings")
	},
}

var checkDeadlinesCmd = &cobra.Command{
	Use:   "check-deadlines",
	Short: "Award walkovers for league matches past their week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/admin/league/check-deadlines")
	},
}

func performRequest(method, endpoint string) error {
	target := host + endpoint
	if dryRun {
		target += "?dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
