package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-cadence/internal/domain"
	"github.com/naka-gawa/release-cadence/internal/gateway"
	"github.com/naka-gawa/release-cadence/internal/proxyclient"
	"github.com/naka-gawa/release-cadence/internal/usecase"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Prints weekly release and bug counts per project",
	Long: `Fetches releases and bug issues of every tracked repository in parallel and
prints one row per week, from the start of the window through the current week.
With --backend the data goes through a running proxy; otherwise GitHub is called
directly with GITHUB_TOKEN.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger, err := newCLILogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		cfg, repos, err := loadSettings(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		backend, _ := cmd.Flags().GetString("backend")
		months, _ := cmd.Flags().GetInt("months")
		months, err = usecase.WindowMonths(months)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --months: %v\n", err)
			os.Exit(1)
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "json" {
			fmt.Fprintf(os.Stderr, "Invalid --format %q. Please use table or json.\n", format)
			os.Exit(1)
		}

		// Inject dependencies and run the main business logic.
		var fetcher gateway.Fetcher
		if backend != "" {
			fetcher = proxyclient.New(backend, nil, logger)
		} else {
			if cfg.Token == "" {
				fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
				os.Exit(1)
			}
			githubGateway, err := gateway.NewGitHubGateway(logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
				os.Exit(1)
			}
			fetcher = githubGateway
		}
		dashboard := usecase.NewDashboard(fetcher, domain.Rules{}, repos, logger)

		report, err := dashboard.Build(ctx, cfg.Token, months)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if format == "json" {
			jsonData, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(jsonData))
			return
		}
		renderReport(os.Stdout, report, repos, months)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().String("backend", "", "Proxy base URL, e.g. http://localhost:4000 (default: call GitHub directly)")
	dashboardCmd.Flags().IntP("months", "m", usecase.DefaultWindowMonths, "Window length in months")
	dashboardCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
}
