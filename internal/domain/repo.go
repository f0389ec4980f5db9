package domain

import "time"

// RepoRef identifies one tracked repository and the label its events are counted under.
type RepoRef struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	// ReleaseLabels lists the sub-project labels encoded in release names.
	// When set, release labels are derived from the release name instead of Label.
	ReleaseLabels []string    `yaml:"release_labels,omitempty"`
	IssueRules    []IssueRule `yaml:"issue_rules,omitempty"`
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// IssueRule re-labels issues whose originating repository URL contains URLContains.
type IssueRule struct {
	URLContains string `yaml:"url_contains"`
	Label       string `yaml:"label"`
}

// ReleaseItem is one release as returned by GitHub.
type ReleaseItem struct {
	Name        string
	PublishedAt time.Time
	CreatedAt   time.Time
}

// Timestamp returns the publication time, falling back to the creation time for drafts.
func (r ReleaseItem) Timestamp() time.Time {
	if !r.PublishedAt.IsZero() {
		return r.PublishedAt
	}
	return r.CreatedAt
}

// IssueItem is one issue as returned by GitHub.
type IssueItem struct {
	CreatedAt     time.Time
	RepositoryURL string
}

// Event is a labelled occurrence ready for weekly bucketing.
type Event struct {
	At    time.Time
	Label string
}
