package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-cadence/internal/domain"
	"github.com/naka-gawa/release-cadence/internal/gateway"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verifies that every tracked repository is reachable with GITHUB_TOKEN",
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
		if cfg.Token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		if err := checkRepos(ctx, githubGateway, cfg.Token, repos, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// checkRepos prints one row per repository and stops at the first one that cannot be read.
func checkRepos(ctx context.Context, checker gateway.RepoChecker, token string, repos []domain.RepoRef, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "REPOSITORY\tLABEL\tRELEASES\tARCHIVED")
	for _, repo := range repos {
		status, err := checker.CheckRepository(ctx, token, repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", status.NameWithOwner, repo.Label, status.Releases, status.Archived)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
