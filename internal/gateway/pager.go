package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
)

// PageSize is the per_page value sent on every listing request.
const PageSize = 100

// Pager walks a GitHub listing endpoint page by page.
type Pager struct {
	client *github.Client
	logger *zap.Logger
}

// NewPager creates a Pager over client.
func NewPager(client *github.Client, logger *zap.Logger) *Pager {
	return &Pager{client: client, logger: logger}
}

// Pages returns a lazy sequence of pages of path. Pages are requested
// strictly in order, starting at 1, and the sequence ends after the first
// page holding fewer than PageSize items. A failed page yields its error and
// ends the sequence. Stopping the iteration early issues no further requests.
func (p *Pager) Pages(ctx context.Context, path string, params url.Values) iter.Seq2[[]json.RawMessage, error] {
	return func(yield func([]json.RawMessage, error) bool) {
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			query := url.Values{}
			for k, v := range params {
				query[k] = v
			}
			query.Set("per_page", strconv.Itoa(PageSize))
			query.Set("page", strconv.Itoa(page))

			req, err := p.client.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
			if err != nil {
				yield(nil, fmt.Errorf("failed to build request for page %d: %w", page, err))
				return
			}

			var items []json.RawMessage
			if _, err := p.client.Do(ctx, req, &items); err != nil {
				yield(nil, fmt.Errorf("failed to fetch page %d: %w", page, err))
				return
			}
			p.logger.Debug("fetched page", zap.String("path", path), zap.Int("page", page), zap.Int("items", len(items)))

			if !yield(items, nil) {
				return
			}
			if len(items) < PageSize {
				return
			}
		}
	}
}

// All concatenates every page of path. Nothing is returned if any page fails.
func (p *Pager) All(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	all := make([]json.RawMessage, 0)
	for items, err := range p.Pages(ctx, path, params) {
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}
