// Package usecase contains the business logic of the application.
package usecase

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// BucketByWeek counts events per label and calendar week, from start's week
// through now's week. Every week in that range is emitted, in order, with a
// count for every label in labels (zero when nothing happened).
// Events before start, after now's week, or with an untracked label are ignored.
func BucketByWeek(events []domain.Event, labels []string, start, now time.Time) []domain.WeekBucket {
	weeks := domain.WeekRange(start, now)

	buckets := make([]domain.WeekBucket, len(weeks))
	index := make(map[string]int, len(weeks))
	for i, week := range weeks {
		counts := make(map[string]int, len(labels))
		for _, label := range labels {
			counts[label] = 0
		}
		buckets[i] = domain.WeekBucket{Week: week, Counts: counts}
		index[week] = i
	}

	for _, e := range events {
		if e.At.Before(start) {
			continue
		}
		i, ok := index[domain.WeekKey(e.At)]
		if !ok {
			continue
		}
		if _, tracked := buckets[i].Counts[e.Label]; !tracked {
			continue
		}
		buckets[i].Counts[e.Label]++
	}
	return buckets
}

// ReleaseEvents labels releases fetched for repo.
func ReleaseEvents(resolver domain.LabelResolver, repo domain.RepoRef, releases []domain.ReleaseItem) []domain.Event {
	events := make([]domain.Event, 0, len(releases))
	for _, rel := range releases {
		events = append(events, domain.Event{At: rel.Timestamp(), Label: resolver.ReleaseLabel(repo, rel)})
	}
	return events
}

// IssueEvents labels issues fetched for repo.
func IssueEvents(resolver domain.LabelResolver, repo domain.RepoRef, issues []domain.IssueItem) []domain.Event {
	events := make([]domain.Event, 0, len(issues))
	for _, issue := range issues {
		events = append(events, domain.Event{At: issue.CreatedAt, Label: resolver.IssueLabel(repo, issue)})
	}
	return events
}

// Summarize describes each label's weekly series. Labels appear under the
// series prefix, e.g. "releases/Backend".
func Summarize(prefix string, labels []string, buckets []domain.WeekBucket, into map[string]domain.LabelSummary) error {
	if len(buckets) == 0 {
		return nil
	}
	for _, label := range labels {
		series := make(stats.Float64Data, 0, len(buckets))
		summary := domain.LabelSummary{}
		for _, b := range buckets {
			n := b.Counts[label]
			series = append(series, float64(n))
			summary.Total += n
			if n > 0 {
				summary.ActiveWeeks++
			}
		}

		var err error
		if summary.MeanPerWeek, err = series.Mean(); err != nil {
			return err
		}
		if summary.MedianPerWeek, err = series.Median(); err != nil {
			return err
		}
		if summary.MaxPerWeek, err = series.Max(); err != nil {
			return err
		}
		into[prefix+"/"+label] = summary
	}
	return nil
}
