package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	gateway, err := NewGitHubGateway(
		zap.NewNop(),
		WithBaseURL(baseURL),
		WithGraphQLURL(server.URL+"/graphql"),
		WithTransport(server.Client().Transport),
	)
	require.NoError(t, err)

	return gateway, server
}

// pageOf renders n release objects as a JSON array.
func pageOf(n, offset int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":%d,"name":"r%d"}`, offset+i, offset+i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

// pagedHandler serves pages with the given sizes and counts requests.
func pagedHandler(t *testing.T, sizes []int, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		if page > len(sizes) {
			fmt.Fprint(w, "[]")
			return
		}
		offset := 0
		for _, s := range sizes[:page-1] {
			offset += s
		}
		fmt.Fprint(w, pageOf(sizes[page-1], offset))
	}
}

func TestGitHubGateway_FetchReleases_Pagination(t *testing.T) {
	testCases := []struct {
		name          string
		pageSizes     []int
		expectedItems int
		expectedCalls int32
	}{
		{name: "stops at the first short page", pageSizes: []int{100, 100, 37}, expectedItems: 237, expectedCalls: 3},
		{name: "single short page", pageSizes: []int{40}, expectedItems: 40, expectedCalls: 1},
		{name: "full pages end with an empty page", pageSizes: []int{100, 100}, expectedItems: 200, expectedCalls: 3},
		{name: "no releases", pageSizes: []int{0}, expectedItems: 0, expectedCalls: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			gateway, server := setupTestGateway(t, pagedHandler(t, tc.pageSizes, &calls))
			defer server.Close()

			items, err := gateway.FetchReleases(context.Background(), "secret", "org", "repo")
			require.NoError(t, err)
			assert.Len(t, items, tc.expectedItems)
			assert.Equal(t, tc.expectedCalls, atomic.LoadInt32(&calls))
			assert.NotNil(t, items)

			// Items keep request order.
			for i, raw := range items {
				var rel struct{ ID int }
				require.NoError(t, json.Unmarshal(raw, &rel))
				assert.Equal(t, i, rel.ID)
			}
		})
	}
}

func TestGitHubGateway_FetchReleases_RequestShape(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/biogroup-it/frontend/releases", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[{"name":"backoffice-v1.2.0@abc","published_at":"2026-10-19T10:00:00Z"}]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	items, err := gateway.FetchReleases(context.Background(), "secret", "biogroup-it", "frontend")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"name":"backoffice-v1.2.0@abc","published_at":"2026-10-19T10:00:00Z"}`, string(items[0]))
}

func TestGitHubGateway_FetchBugIssues(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/org/meb/issues", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bug", q.Get("type"))
		assert.Equal(t, "all", q.Get("state"))
		assert.Equal(t, "1", q.Get("page"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[{"created_at":"2026-10-01T00:00:00Z","repository_url":"https://api.github.com/repos/org/biogroup-tracker"}]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	items, err := gateway.FetchBugIssues(context.Background(), "secret", "org", "meb")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGitHubGateway_Errors(t *testing.T) {
	t.Run("a failed page discards earlier pages", func(t *testing.T) {
		var calls int32
		handler := func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 2 {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, pageOf(100, 0))
		}
		gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
		defer server.Close()

		items, err := gateway.FetchReleases(context.Background(), "secret", "org", "repo")
		assert.Error(t, err)
		assert.Nil(t, items)
		assert.Contains(t, err.Error(), "failed to fetch releases for org/repo")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("missing token makes no request", func(t *testing.T) {
		var calls int32
		gateway, server := setupTestGateway(t, pagedHandler(t, []int{1}, &calls))
		defer server.Close()

		_, err := gateway.FetchReleases(context.Background(), "", "org", "repo")
		assert.ErrorIs(t, err, domain.ErrTokenNotConfigured)
		_, err = gateway.FetchBugIssues(context.Background(), "", "org", "repo")
		assert.ErrorIs(t, err, domain.ErrTokenNotConfigured)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("cancelled context", func(t *testing.T) {
		var calls int32
		gateway, server := setupTestGateway(t, pagedHandler(t, []int{100, 100}, &calls))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gateway.FetchReleases(ctx, "secret", "org", "repo")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})
}

func TestPager_PagesStopsWhenConsumerStops(t *testing.T) {
	var calls int32
	gateway, server := setupTestGateway(t, pagedHandler(t, []int{100, 100, 100}, &calls))
	defer server.Close()

	pager := NewPager(gateway.restClient("secret"), zap.NewNop())
	for items, err := range pager.Pages(context.Background(), "repos/org/repo/releases", nil) {
		require.NoError(t, err)
		assert.Len(t, items, 100)
		break
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGitHubGateway_CheckRepository(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expected       *domain.RepoStatus
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:         "happy path",
			responseBody: `{"data":{"repository":{"nameWithOwner":"org/frontend","isArchived":false,"releases":{"totalCount":42}}}}`,
			expected: &domain.RepoStatus{
				Repo:          domain.RepoRef{Owner: "org", Name: "frontend"},
				NameWithOwner: "org/frontend",
				Releases:      42,
			},
		},
		{
			name:           "repository not found",
			responseBody:   `{"errors":[{"message":"Could not resolve to a Repository with the name 'org/frontend'."}]}`,
			expectError:    true,
			expectedErrMsg: "failed to query repository org/frontend",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/graphql", r.URL.Path)
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "repository(owner: $owner, name: $name)")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			status, err := gateway.CheckRepository(context.Background(), "secret", domain.RepoRef{Owner: "org", Name: "frontend"})
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, status)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	releases, err := DecodeReleases([]json.RawMessage{
		json.RawMessage(`{"name":"backoffice-v1@x","published_at":"2026-10-19T10:00:00Z","created_at":"2026-10-18T10:00:00Z"}`),
		json.RawMessage(`{"tag_name":"v2.0.0","created_at":"2026-10-18T10:00:00Z"}`),
	})
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, "backoffice-v1@x", releases[0].Name)
	assert.Equal(t, 19, releases[0].Timestamp().Day())
	assert.Equal(t, "v2.0.0", releases[1].Name)
	assert.Equal(t, 18, releases[1].Timestamp().Day())

	issues, err := DecodeIssues([]json.RawMessage{
		json.RawMessage(`{"created_at":"2026-10-01T00:00:00Z","repository_url":"https://api.github.com/repos/org/meb"}`),
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "https://api.github.com/repos/org/meb", issues[0].RepositoryURL)

	_, err = DecodeIssues([]json.RawMessage{json.RawMessage(`[]`)})
	assert.Error(t, err)
}
