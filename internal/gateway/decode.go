package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// DecodeReleases converts raw release listings into domain items.
// A release without a title is named after its tag, as GitHub displays it.
func DecodeReleases(raw []json.RawMessage) ([]domain.ReleaseItem, error) {
	items := make([]domain.ReleaseItem, 0, len(raw))
	for i, r := range raw {
		var rel github.RepositoryRelease
		if err := json.Unmarshal(r, &rel); err != nil {
			return nil, fmt.Errorf("failed to decode release %d: %w", i, err)
		}
		name := rel.GetName()
		if name == "" {
			name = rel.GetTagName()
		}
		items = append(items, domain.ReleaseItem{
			Name:        name,
			PublishedAt: rel.GetPublishedAt().Time,
			CreatedAt:   rel.GetCreatedAt().Time,
		})
	}
	return items, nil
}

// DecodeIssues converts raw issue listings into domain items.
func DecodeIssues(raw []json.RawMessage) ([]domain.IssueItem, error) {
	items := make([]domain.IssueItem, 0, len(raw))
	for i, r := range raw {
		var issue github.Issue
		if err := json.Unmarshal(r, &issue); err != nil {
			return nil, fmt.Errorf("failed to decode issue %d: %w", i, err)
		}
		items = append(items, domain.IssueItem{
			CreatedAt:     issue.GetCreatedAt().Time,
			RepositoryURL: issue.GetRepositoryURL(),
		})
	}
	return items, nil
}
