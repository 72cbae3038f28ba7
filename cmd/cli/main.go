package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host       string
	adminToken string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "ladder-cli",
	Short: "A CLI to interact with the padel ladder server",
	Long: `A command-line interface for the admin endpoints of the padel ladder
server: rankings, the deadline sweep and league rounds.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&adminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "Admin token sent as X-Admin-Token")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report what would change without changing it")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
