package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// DefaultOwner owns the built-in repository set.
const DefaultOwner = "biogroup-it"

// reposFile is the on-disk layout of the repositories file.
type reposFile struct {
	Owner string           `yaml:"owner"`
	Repos []domain.RepoRef `yaml:"repos"`
}

// DefaultRepos returns the built-in tracked repositories.
func DefaultRepos() []domain.RepoRef {
	return []domain.RepoRef{
		{Owner: DefaultOwner, Name: "business-domain-services", Label: "Backend"},
		{
			Owner:         DefaultOwner,
			Name:          "frontend",
			Label:         "Frontend",
			ReleaseLabels: []string{"backoffice", "preregistration", "mybiogroup"},
		},
		{Owner: DefaultOwner, Name: "biogroup-tracker", Label: "Tracker"},
		{
			Owner:      DefaultOwner,
			Name:       "meb",
			Label:      "MEB",
			IssueRules: []domain.IssueRule{{URLContains: "biogroup-tracker", Label: "Tracker"}},
		},
	}
}

// LoadRepos reads the repositories file at path, or returns DefaultRepos when path is empty.
func LoadRepos(path string) ([]domain.RepoRef, error) {
	if path == "" {
		return DefaultRepos(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repositories file: %w", err)
	}
	return ParseRepos(data)
}

// ParseRepos decodes a repositories document. A top-level owner applies to
// entries without their own.
func ParseRepos(data []byte) ([]domain.RepoRef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f reposFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse repositories file: %w", err)
	}
	if len(f.Repos) == 0 {
		return nil, errors.New("repositories file lists no repositories")
	}

	for i := range f.Repos {
		r := &f.Repos[i]
		if r.Owner == "" {
			r.Owner = f.Owner
		}
		if r.Owner == "" || r.Name == "" {
			return nil, fmt.Errorf("repository %d: owner and name are required", i)
		}
		if r.Label == "" {
			r.Label = r.Name
		}
		for j, rule := range r.IssueRules {
			if rule.URLContains == "" || rule.Label == "" {
				return nil, fmt.Errorf("repository %s: issue rule %d needs url_contains and label", r.FullName(), j)
			}
		}
	}
	return f.Repos, nil
}
