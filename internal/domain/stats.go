// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// WeekBucket holds the per-label event counts for a single calendar week.
// It is the unit handed to the chart renderer.
type WeekBucket struct {
	Week   string         `json:"week"`
	Counts map[string]int `json:"counts"`
}

// LabelSummary describes one label's weekly series.
type LabelSummary struct {
	Total         int     `json:"total"`
	MeanPerWeek   float64 `json:"mean_per_week"`
	MedianPerWeek float64 `json:"median_per_week"`
	MaxPerWeek    float64 `json:"max_per_week"`
	ActiveWeeks   int     `json:"active_weeks"`
}

// Report is the dashboard payload: release and bug series over one window.
type Report struct {
	GeneratedAt time.Time               `json:"generated_at"`
	WindowStart time.Time               `json:"window_start"`
	Releases    []WeekBucket            `json:"releases"`
	Bugs        []WeekBucket            `json:"bugs"`
	Summary     map[string]LabelSummary `json:"summary"`
}

// RepoStatus is the result of checking one tracked repository against GitHub.
type RepoStatus struct {
	Repo          RepoRef `json:"-"`
	NameWithOwner string  `json:"name_with_owner"`
	Archived      bool    `json:"archived"`
	Releases      int     `json:"releases"`
}
