package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-cadence/internal/config"
	"github.com/naka-gawa/release-cadence/internal/domain"
)

// newCLILogger discards everything unless verbose is set.
func newCLILogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// newServerLogger logs JSON at info, or debug when verbose.
func newServerLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// loadSettings merges the environment with the persistent flags.
func loadSettings(cmd *cobra.Command) (config.Config, []domain.RepoRef, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if path, _ := cmd.Flags().GetString("repos"); path != "" {
		cfg.ReposFile = path
	}
	repos, err := config.LoadRepos(cfg.ReposFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, repos, nil
}
