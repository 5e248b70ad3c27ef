// Package github supplies the hosting collaborators of the analysis engine:
// repository metadata from the GitHub REST API, shallow clones over git, and
// a probe for wiki content.
package github

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRepoURL is returned for references that name no single repository.
var ErrInvalidRepoURL = errors.New("invalid repository reference")

var (
	repoURLPattern   = regexp.MustCompile(`^https://github\.com/([\w.-]+)/([\w.-]+)/?$`)
	repoShortPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)$`)
)

// ParseRepoURL extracts owner and name from https://github.com/<owner>/<name>
// (optionally with a trailing slash) or the short owner/name form. Other
// hosts, plain http, and deeper paths are rejected.
func ParseRepoURL(ref string) (owner, name string, err error) {
	ref = strings.TrimSpace(ref)

	m := repoURLPattern.FindStringSubmatch(ref)
	if m == nil && !strings.Contains(ref, ":") {
		m = repoShortPattern.FindStringSubmatch(ref)
	}
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, ref)
	}

	owner, name = m[1], strings.TrimSuffix(m[2], ".git")
	if isDots(owner) || isDots(name) || name == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, ref)
	}
	return owner, name, nil
}

func isDots(s string) bool {
	return strings.Trim(s, ".") == ""
}
