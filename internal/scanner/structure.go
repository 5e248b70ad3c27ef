package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/blackwell-systems/repolens/internal/health"
)

// WikiChecker reports whether a hosted wiki exists and has content.
// Implementations may perform network calls; the probe treats any error as "no wiki".
type WikiChecker interface {
	HasWiki(ctx context.Context, owner, name string) (bool, error)
}

// Organization score weights.
const (
	weightReadme       = 2
	weightLicense      = 1
	weightContributing = 1
	weightTests        = 2
	weightDocs         = 1
	weightCICD         = 1
	weightChangelog    = 1

	maxOrganizationScore = 10

	// structureDepth is the deepest directory level listed in DirectoryStructure.
	structureDepth = 2
)

var (
	readmeNames       = []string{"readme.md", "readme.txt", "readme.rst", "readme"}
	licenseNames      = []string{"license", "license.txt", "license.md", "copying"}
	contributingNames = []string{"contributing.md", "contributing.txt"}
	changelogNames    = []string{"changelog.md", "changelog.txt", "history.md"}

	testDirs = []string{"test", "tests", "__tests__", "spec", "specs"}
	docDirs  = []string{"docs", "doc", "documentation"}

	ciFiles      = []string{".gitlab-ci.yml", ".travis.yml", "Jenkinsfile", "azure-pipelines.yml", "bitbucket-pipelines.yml"}
	composeFiles = []string{"docker-compose.yml", "docker-compose.yaml"}
	ciDirs       = []string{".gitlab", ".circleci", ".azure"}
)

// ProbeStructure checks root for project hygiene signals and computes the
// organization score. Unlike Walk it looks inside hidden directories, since CI
// configuration lives there; only .git is skipped. meta and wiki may be nil.
func ProbeStructure(ctx context.Context, root string, meta *health.Metadata, wiki WikiChecker) Structure {
	s := Structure{DirectoryStructure: []string{}}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if name == ".git" {
				return filepath.SkipDir
			}
			level := 0
			if rel != "." {
				level = strings.Count(rel, "/") + 1
			}
			if level <= structureDepth {
				s.DirectoryStructure = append(s.DirectoryStructure, strings.Repeat("  ", level)+name+"/")
			}
			if path == root {
				return nil
			}

			lower := strings.ToLower(name)
			if slices.Contains(testDirs, lower) {
				s.HasTests = true
			}
			if slices.Contains(docDirs, lower) {
				s.HasDocs = true
			}
			if slices.Contains(ciDirs, name) {
				s.HasCICD = true
			}
			return nil
		}

		s.markFile(rel, name)
		return nil
	})

	if !s.HasDocs && meta != nil && meta.HasWiki && wiki != nil {
		if ok, err := wiki.HasWiki(ctx, meta.Owner, meta.Name); err == nil && ok {
			s.HasDocs = true
		}
	}

	s.OrganizationScore = OrganizationScore(s)
	return s
}

// markFile applies the per-file presence checks.
func (s *Structure) markFile(rel, name string) {
	lower := strings.ToLower(name)
	dir := filepath.ToSlash(filepath.Dir(rel))

	switch {
	case slices.Contains(readmeNames, lower):
		s.HasReadme = true
	case slices.Contains(licenseNames, lower):
		s.HasLicense = true
	case slices.Contains(contributingNames, lower):
		s.HasContributing = true
	case slices.Contains(changelogNames, lower):
		s.HasChangelog = true
	}

	if slices.Contains(ciFiles, name) || slices.Contains(composeFiles, lower) {
		s.HasCICD = true
	}
	if strings.Contains(dir, ".github/workflows") && (strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")) {
		s.HasCICD = true
	}
	if strings.Contains(dir, ".circleci") && lower == "config.yml" {
		s.HasCICD = true
	}
}

// OrganizationScore sums the weights of the present signals, capped at 10.
func OrganizationScore(s Structure) int {
	score := 0
	if s.HasReadme {
		score += weightReadme
	}
	if s.HasLicense {
		score += weightLicense
	}
	if s.HasContributing {
		score += weightContributing
	}
	if s.HasTests {
		score += weightTests
	}
	if s.HasDocs {
		score += weightDocs
	}
	if s.HasCICD {
		score += weightCICD
	}
	if s.HasChangelog {
		score += weightChangelog
	}
	return min(score, maxOrganizationScore)
}
