// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// Fetcher defines the behavior of a source of raw release and issue listings.
// Items are returned verbatim, in upstream order.
type Fetcher interface {
	FetchReleases(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error)
	FetchBugIssues(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error)
}

// RepoChecker verifies that a tracked repository is reachable with a token.
type RepoChecker interface {
	CheckRepository(ctx context.Context, token string, repo domain.RepoRef) (*domain.RepoStatus, error)
}

// GitHubGateway is the concrete implementation of Fetcher and RepoChecker.
// A client is built per call so that each request can carry its own token.
type GitHubGateway struct {
	transport     http.RoundTripper
	baseURL       *url.URL
	graphqlURL    string
	rateLimitWait time.Duration
	logger        *zap.Logger
}

// Option configures a GitHubGateway.
type Option func(*GitHubGateway)

// WithBaseURL points the REST client at a different API root (GitHub Enterprise, tests).
// The URL must end with a slash.
func WithBaseURL(u *url.URL) Option {
	return func(g *GitHubGateway) { g.baseURL = u }
}

// WithGraphQLURL points the GraphQL client at a different endpoint.
func WithGraphQLURL(u string) Option {
	return func(g *GitHubGateway) { g.graphqlURL = u }
}

// WithTransport sets the base transport under the auth layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(g *GitHubGateway) { g.transport = rt }
}

// WithRateLimitWait makes the client sleep through secondary rate limits,
// for at most limit per sleep. Disabled by default: any failed page aborts.
func WithRateLimitWait(limit time.Duration) Option {
	return func(g *GitHubGateway) { g.rateLimitWait = limit }
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(logger *zap.Logger, opts ...Option) (*GitHubGateway, error) {
	g := &GitHubGateway{logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	if g.rateLimitWait > 0 {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(g.transport, github_ratelimit.WithSingleSleepLimit(g.rateLimitWait, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		g.transport = rateLimitWaiter
	}
	return g, nil
}

func (g *GitHubGateway) httpClient(token string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   g.transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
}

func (g *GitHubGateway) restClient(token string) *github.Client {
	client := github.NewClient(g.httpClient(token))
	if g.baseURL != nil {
		client.BaseURL = g.baseURL
	}
	return client
}

func (g *GitHubGateway) graphqlClient(token string) *githubv4.Client {
	if g.graphqlURL != "" {
		return githubv4.NewEnterpriseClient(g.graphqlURL, g.httpClient(token))
	}
	return githubv4.NewClient(g.httpClient(token))
}

// FetchReleases returns every release of owner/repo.
func (g *GitHubGateway) FetchReleases(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error) {
	if token == "" {
		return nil, domain.ErrTokenNotConfigured
	}
	path := fmt.Sprintf("repos/%s/%s/releases", url.PathEscape(owner), url.PathEscape(repo))
	g.logger.Debug("fetching releases", zap.String("owner", owner), zap.String("repo", repo))

	items, err := NewPager(g.restClient(token), g.logger).All(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch releases for %s/%s: %w", owner, repo, err)
	}
	g.logger.Debug("completed fetching releases", zap.String("repo", repo), zap.Int("count", len(items)))
	return items, nil
}

// FetchBugIssues returns every issue of owner/repo with type bug, open or closed.
func (g *GitHubGateway) FetchBugIssues(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error) {
	if token == "" {
		return nil, domain.ErrTokenNotConfigured
	}
	path := fmt.Sprintf("repos/%s/%s/issues", url.PathEscape(owner), url.PathEscape(repo))
	params := url.Values{"type": {"bug"}, "state": {"all"}}
	g.logger.Debug("fetching bug issues", zap.String("owner", owner), zap.String("repo", repo))

	items, err := NewPager(g.restClient(token), g.logger).All(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bug issues for %s/%s: %w", owner, repo, err)
	}
	g.logger.Debug("completed fetching bug issues", zap.String("repo", repo), zap.Int("count", len(items)))
	return items, nil
}

// repositoryQuery fetches the minimal repository facts needed by the check command.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner string
		IsArchived    bool
		Releases      struct {
			TotalCount int
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// CheckRepository confirms the repository is visible to token and reports its release count.
func (g *GitHubGateway) CheckRepository(ctx context.Context, token string, repo domain.RepoRef) (*domain.RepoStatus, error) {
	if token == "" {
		return nil, domain.ErrTokenNotConfigured
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	}
	var q repositoryQuery
	if err := g.graphqlClient(token).Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to query repository %s: %w", repo.FullName(), err)
	}
	return &domain.RepoStatus{
		Repo:          repo,
		NameWithOwner: q.Repository.NameWithOwner,
		Archived:      q.Repository.IsArchived,
		Releases:      q.Repository.Releases.TotalCount,
	}, nil
}
