package domain

import (
	"regexp"
	"strings"
)

// LabelResolver decides which label an item is counted under.
type LabelResolver interface {
	ReleaseLabel(repo RepoRef, release ReleaseItem) string
	IssueLabel(repo RepoRef, issue IssueItem) string
}

// Rules is the LabelResolver driven by RepoRef configuration.
type Rules struct{}

var versionSuffix = regexp.MustCompile(`[-_]v?\d[\w.\-]*$`)

// ReleaseLabel returns the repository label, or for repositories with
// ReleaseLabels the sub-project parsed from the release name.
func (Rules) ReleaseLabel(repo RepoRef, release ReleaseItem) string {
	if len(repo.ReleaseLabels) == 0 {
		return repo.Label
	}
	if label := SubProjectLabel(release.Name); label != "" {
		return label
	}
	return repo.Label
}

// IssueLabel applies the first matching issue rule, else the repository label.
func (Rules) IssueLabel(repo RepoRef, issue IssueItem) string {
	for _, rule := range repo.IssueRules {
		if rule.URLContains != "" && strings.Contains(issue.RepositoryURL, rule.URLContains) {
			return rule.Label
		}
	}
	return repo.Label
}

// SubProjectLabel normalizes a release name such as "backoffice-v1.2.0@abc"
// into its sub-project label ("backoffice").
func SubProjectLabel(name string) string {
	prefix, _, _ := strings.Cut(name, "@")
	prefix = versionSuffix.ReplaceAllString(strings.TrimSpace(prefix), "")
	prefix = strings.NewReplacer("-", "", "_", "").Replace(prefix)
	return strings.ToLower(prefix)
}

// ReleaseLabels returns the labels a release series over repos can contain, in order.
func ReleaseLabels(repos []RepoRef) []string {
	var labels []string
	for _, r := range repos {
		labels = append(labels, r.ReleaseLabels...)
		// Also the fallback for release names that carry no sub-project.
		labels = append(labels, r.Label)
	}
	return dedupe(labels)
}

// IssueLabels returns the labels a bug series over repos can contain, in order.
func IssueLabels(repos []RepoRef) []string {
	var labels []string
	for _, r := range repos {
		labels = append(labels, r.Label)
		for _, rule := range r.IssueRules {
			labels = append(labels, rule.Label)
		}
	}
	return dedupe(labels)
}

func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok || l == "" {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
