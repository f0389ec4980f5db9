package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-cadence/internal/domain"
	"github.com/naka-gawa/release-cadence/internal/gateway"
	"github.com/naka-gawa/release-cadence/internal/server"
	"github.com/naka-gawa/release-cadence/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the GitHub proxy and dashboard API",
	Long: `Serves POST /api/github/releases and POST /api/github/issues/bugs, which return
every page of the upstream listing as one array, and GET /api/dashboard, which
returns the weekly series. The token comes from GITHUB_TOKEN unless a request
carries its own.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger, err := newServerLogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		cfg, repos, err := loadSettings(cmd)
		if err != nil {
			logger.Fatal("failed to load configuration", zap.Error(err))
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cfg.Token == "" {
			logger.Warn("GITHUB_TOKEN is not set; requests without their own token will fail")
		}

		rateLimitWait, _ := cmd.Flags().GetDuration("rate-limit-wait")
		githubGateway, err := gateway.NewGitHubGateway(logger, gateway.WithRateLimitWait(rateLimitWait))
		if err != nil {
			logger.Fatal("failed to create GitHub gateway", zap.Error(err))
		}
		dashboard := usecase.NewDashboard(githubGateway, domain.Rules{}, repos, logger)
		srv := server.New(githubGateway, dashboard, cfg.Token, logger)

		httpServer := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			logger.Info("backend listening", zap.String("addr", cfg.Addr()), zap.Int("repos", len(repos)))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server error", zap.Error(err))
			}
		}()

		<-ctx.Done()
		stop()

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 4000, "Listening port (overrides $PORT)")
	serveCmd.Flags().Duration("rate-limit-wait", 0, "Sleep through GitHub secondary rate limits up to this long (0 disables)")
}
