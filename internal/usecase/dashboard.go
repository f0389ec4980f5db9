package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/release-cadence/internal/domain"
	"github.com/naka-gawa/release-cadence/internal/gateway"
)

const (
	// DefaultWindowMonths is how far back the dashboard looks when no window is given.
	DefaultWindowMonths = 3
	// MaxWindowMonths bounds the window; the series holds one bucket per week.
	MaxWindowMonths = 60
)

// ErrInvalidWindow is returned for a window longer than MaxWindowMonths.
var ErrInvalidWindow = fmt.Errorf("months must be between 1 and %d", MaxWindowMonths)

// WindowMonths resolves a requested window: zero or less means the default.
func WindowMonths(months int) (int, error) {
	if months <= 0 {
		return DefaultWindowMonths, nil
	}
	if months > MaxWindowMonths {
		return 0, ErrInvalidWindow
	}
	return months, nil
}

// Dashboard is the use case behind the release and bug charts.
// It fans out one fetch per repository and series, then buckets the results by week.
type Dashboard struct {
	fetcher  gateway.Fetcher
	resolver domain.LabelResolver
	repos    []domain.RepoRef
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboard creates a new Dashboard instance.
func NewDashboard(fetcher gateway.Fetcher, resolver domain.LabelResolver, repos []domain.RepoRef, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		fetcher:  fetcher,
		resolver: resolver,
		repos:    repos,
		now:      time.Now,
		logger:   logger,
	}
}

// Build fetches every tracked repository concurrently and aggregates the last
// months of releases and bugs. The first failed fetch cancels the others and
// is returned; no partial report is produced.
func (d *Dashboard) Build(ctx context.Context, token string, months int) (*domain.Report, error) {
	months, err := WindowMonths(months)
	if err != nil {
		return nil, err
	}
	now := d.now().UTC()
	start := now.AddDate(0, -months, 0)
	d.logger.Info("building dashboard", zap.Int("repos", len(d.repos)), zap.Time("window_start", start))

	releaseEvents := make([][]domain.Event, len(d.repos))
	bugEvents := make([][]domain.Event, len(d.repos))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range d.repos {
		eg.Go(func() error {
			raw, err := d.fetcher.FetchReleases(egCtx, token, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			items, err := gateway.DecodeReleases(raw)
			if err != nil {
				return fmt.Errorf("failed to read releases of %s: %w", repo.FullName(), err)
			}
			releaseEvents[i] = ReleaseEvents(d.resolver, repo, items)
			return nil
		})

		eg.Go(func() error {
			raw, err := d.fetcher.FetchBugIssues(egCtx, token, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			items, err := gateway.DecodeIssues(raw)
			if err != nil {
				return fmt.Errorf("failed to read issues of %s: %w", repo.FullName(), err)
			}
			bugEvents[i] = IssueEvents(d.resolver, repo, items)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	d.logger.Debug("all repositories fetched")

	releaseLabels := domain.ReleaseLabels(d.repos)
	bugLabels := domain.IssueLabels(d.repos)

	report := &domain.Report{
		GeneratedAt: now,
		WindowStart: start,
		Releases:    BucketByWeek(slices.Concat(releaseEvents...), releaseLabels, start, now),
		Bugs:        BucketByWeek(slices.Concat(bugEvents...), bugLabels, start, now),
		Summary:     make(map[string]domain.LabelSummary),
	}
	if err := Summarize("releases", releaseLabels, report.Releases, report.Summary); err != nil {
		return nil, fmt.Errorf("failed to summarize releases: %w", err)
	}
	if err := Summarize("bugs", bugLabels, report.Bugs, report.Summary); err != nil {
		return nil, fmt.Errorf("failed to summarize bugs: %w", err)
	}

	d.logger.Info("dashboard complete", zap.Int("weeks", len(report.Releases)))
	return report, nil
}
