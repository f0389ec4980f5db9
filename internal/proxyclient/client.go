// Package proxyclient talks to a running proxy server, so the dashboard can be
// built without holding a GitHub client of its own.
package proxyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Client implements gateway.Fetcher on top of the proxy's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for the proxy at baseURL (e.g. "http://localhost:4000").
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchReleases asks the proxy for every release of owner/repo.
// An empty token lets the proxy use its own.
func (c *Client) FetchReleases(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error) {
	return c.post(ctx, "/api/github/releases", token, owner, repo)
}

// FetchBugIssues asks the proxy for every bug issue of owner/repo.
func (c *Client) FetchBugIssues(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error) {
	return c.post(ctx, "/api/github/issues/bugs", token, owner, repo)
}

type request struct {
	Repo  string `json:"repo"`
	Owner string `json:"owner"`
	Token string `json:"token,omitempty"`
}

func (c *Client) post(ctx context.Context, path, token, owner, repo string) ([]json.RawMessage, error) {
	body, err := json.Marshal(request{Repo: repo, Owner: owner, Token: token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling proxy", zap.String("path", path), zap.String("repo", owner+"/"+repo))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return nil, fmt.Errorf("failed to fetch %s: %s", repo, e.Error)
		}
		return nil, fmt.Errorf("failed to fetch %s: proxy returned %s", repo, resp.Status)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode proxy response for %s: %w", repo, err)
	}
	return items, nil
}
