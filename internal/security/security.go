// Package security flags secret-like assignments, vulnerable sinks and
// sensitive file names, and turns them into a penalty-based score.
package security

import (
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/blackwell-systems/repolens/internal/scanner"
)

// Severities.
const (
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Issue categories.
const (
	CategoryHardcodedSecrets = "hardcoded_secrets"
	CategorySQLInjection     = "sql_injection"
	CategoryXSS              = "xss_vulnerable"
	CategoryAWSAccessKey     = "aws_access_key"
	CategoryPrivateKey       = "private_key_material"
)

// Penalties subtracted from the perfect score.
const (
	patternPenalty   = 0.5
	sensitivePenalty = 1.0
	maxScore         = 10.0
)

// Advisories, in the order they are reported.
const (
	AdviceSensitiveFiles = "Remove or secure sensitive files"
	AdviceReviewCode     = "Review code for security vulnerabilities"
	AdviceBestPractices  = "Consider implementing security best practices"
)

type rule struct {
	category string
	severity string
	pattern  *regexp.Regexp
}

// rules are evaluated in order; every rule that matches at least once yields
// one finding.
var rules = []rule{
	{CategoryHardcodedSecrets, SeverityMedium, regexp.MustCompile(`(?i)password\s*=\s*["'][^"']+["']`)},
	{CategoryHardcodedSecrets, SeverityMedium, regexp.MustCompile(`(?i)api_key\s*=\s*["'][^"']+["']`)},
	{CategoryHardcodedSecrets, SeverityMedium, regexp.MustCompile(`(?i)secret\s*=\s*["'][^"']+["']`)},
	{CategorySQLInjection, SeverityMedium, regexp.MustCompile(`(?i)SELECT\s+.*\s+FROM\s+.*\s+WHERE\s+.*\+`)},
	{CategoryXSS, SeverityMedium, regexp.MustCompile(`(?i)innerHTML\s*=\s*.*\+`)},
	{CategoryXSS, SeverityMedium, regexp.MustCompile(`(?i)document\.write\s*\(`)},
	{CategoryAWSAccessKey, SeverityMedium, regexp.MustCompile(`(?i)\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{CategoryPrivateKey, SeverityHigh, regexp.MustCompile(`(?i)-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`)},
}

var scannableExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".php": true, ".java": true,
	".cpp": true, ".c": true, ".cs": true, ".go": true, ".rb": true,
}

// sensitiveNames are matched case-insensitively as substrings of the file
// name, or of the relative path for entries containing a slash.
var sensitiveNames = []string{
	".env",
	".env.local",
	"config.json",
	"secrets.json",
	"private_key",
	"id_rsa",
	".aws/credentials",
}

// ProbePaths returns the sensitive entries that live below hidden
// directories, which a walk has to look up explicitly.
func ProbePaths() []string {
	var paths []string
	for _, s := range sensitiveNames {
		if strings.Contains(s, "/") {
			paths = append(paths, s)
		}
	}
	return paths
}

// Finding is one pattern match in a file.
type Finding struct {
	Category string `json:"type" yaml:"type"`
	File     string `json:"file" yaml:"file"`
	Severity string `json:"severity" yaml:"severity"`
}

// Result is the per-file scan outcome.
type Result struct {
	Path      string    `json:"path"`
	Sensitive bool      `json:"sensitive"`
	Findings  []Finding `json:"findings"`
	Penalty   float64   `json:"penalty"`

	ReadFailed bool `json:"read_failed,omitempty"`
}

// Scannable reports whether files with ext get their content scanned.
func Scannable(ext string) bool {
	return scannableExtensions[strings.ToLower(ext)]
}

// IsSensitive reports whether the file looks like credential storage.
func IsSensitive(relPath string) bool {
	rel := strings.ToLower(relPath)
	name := path.Base(rel)
	for _, s := range sensitiveNames {
		target := name
		if strings.Contains(s, "/") {
			target = rel
		}
		if strings.Contains(target, s) {
			return true
		}
	}
	return false
}

// Scan checks one file. Read failures leave the filename check intact and
// skip the content patterns.
func Scan(desc scanner.FileDescriptor) Result {
	res := Result{Path: desc.RelPath, Findings: []Finding{}}

	if IsSensitive(desc.RelPath) {
		res.Sensitive = true
		res.Penalty += sensitivePenalty
	}

	if !Scannable(desc.Ext) {
		return res
	}

	data, err := os.ReadFile(desc.Path)
	if err != nil {
		res.ReadFailed = true
		return res
	}
	content := strings.ToValidUTF8(string(data), "")

	for _, r := range rules {
		if r.pattern.MatchString(content) {
			res.Findings = append(res.Findings, Finding{
				Category: r.category,
				File:     desc.RelPath,
				Severity: r.severity,
			})
			res.Penalty += patternPenalty
		}
	}
	return res
}

// Summary is the finalized security section of a report.
type Summary struct {
	Score           float64   `json:"security_score" yaml:"security_score"`
	PotentialIssues []Finding `json:"potential_issues" yaml:"potential_issues"`
	SensitiveFiles  []string  `json:"sensitive_files" yaml:"sensitive_files"`
	Recommendations []string  `json:"recommendations" yaml:"recommendations"`
	FilesScanned    int       `json:"files_scanned" yaml:"files_scanned"`
}

// Aggregator reduces scan results. It is not safe for concurrent use;
// callers serialize Merge calls.
type Aggregator struct {
	files     int
	penalty   float64
	findings  []Finding
	sensitive []string
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Merge folds one whole result into the totals.
func (a *Aggregator) Merge(res Result) {
	a.files++
	a.penalty += res.Penalty
	a.findings = append(a.findings, res.Findings...)
	if res.Sensitive {
		a.sensitive = append(a.sensitive, res.Path)
	}
}

// Score returns the current clamped score.
func (a *Aggregator) Score() float64 {
	return max(0, min(maxScore, maxScore-a.penalty))
}

// Summary finalizes findings, sensitive files and advisories.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		Score:           a.Score(),
		PotentialIssues: append([]Finding{}, a.findings...),
		SensitiveFiles:  append([]string{}, a.sensitive...),
		Recommendations: []string{},
		FilesScanned:    a.files,
	}

	sort.Slice(s.PotentialIssues, func(i, j int) bool {
		x, y := s.PotentialIssues[i], s.PotentialIssues[j]
		if x.File != y.File {
			return x.File < y.File
		}
		return x.Category < y.Category
	})
	sort.Strings(s.SensitiveFiles)

	if len(s.SensitiveFiles) > 0 {
		s.Recommendations = append(s.Recommendations, AdviceSensitiveFiles)
	}
	if len(s.PotentialIssues) > 0 {
		s.Recommendations = append(s.Recommendations, AdviceReviewCode)
	}
	if s.Score < 8 {
		s.Recommendations = append(s.Recommendations, AdviceBestPractices)
	}
	return s
}
