// Package health scores repository activity, maintenance and community
// signals from hosting metadata.
package health

import (
	"math"
	"time"
)

// Overall health labels.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelFair      = "Fair"
	LabelPoor      = "Poor"
	LabelUnknown   = "Unknown"
)

// Metadata is the repository record supplied by a metadata provider. It is
// read-only for the engine.
type Metadata struct {
	Owner         string `json:"owner" yaml:"owner"`
	Name          string `json:"name" yaml:"name"`
	FullName      string `json:"full_name" yaml:"full_name"`
	Description   string `json:"description" yaml:"description"`
	Language      string `json:"language" yaml:"language"`
	Size          int    `json:"size" yaml:"size"`
	Stars         int    `json:"stars" yaml:"stars"`
	Forks         int    `json:"forks" yaml:"forks"`
	OpenIssues    int    `json:"issues" yaml:"issues"`
	CreatedAt     string `json:"created_at" yaml:"created_at"`
	UpdatedAt     string `json:"updated_at" yaml:"updated_at"`
	PushedAt      string `json:"pushed_at" yaml:"pushed_at"`
	CloneURL      string `json:"clone_url" yaml:"clone_url"`
	DefaultBranch string `json:"default_branch" yaml:"default_branch"`
	Archived      bool   `json:"archived" yaml:"archived"`
	Disabled      bool   `json:"disabled" yaml:"disabled"`
	Private       bool   `json:"private" yaml:"private"`
	HasWiki       bool   `json:"has_wiki" yaml:"has_wiki"`
}

// Indicators holds the health sub-scores and the overall label.
type Indicators struct {
	ActivityScore    int     `json:"activity_score" yaml:"activity_score"`
	MaintenanceScore int     `json:"maintenance_score" yaml:"maintenance_score"`
	CommunityScore   int     `json:"community_score" yaml:"community_score"`
	Overall          float64 `json:"overall" yaml:"overall"`
	OverallHealth    string  `json:"overall_health" yaml:"overall_health"`
	LastCommit       string  `json:"last_commit" yaml:"last_commit"`
	AgeDays          int     `json:"age_days" yaml:"age_days"`
}

// Score derives the health indicators for meta as of now. A record whose
// creation time cannot be parsed yields zero scores and the Unknown label.
func Score(meta Metadata, now time.Time) Indicators {
	ind := Indicators{
		OverallHealth: LabelUnknown,
		LastCommit:    meta.PushedAt,
	}
	if ind.LastCommit == "" {
		ind.LastCommit = LabelUnknown
	}

	created, err := parseTimestamp(meta.CreatedAt)
	if err != nil {
		return ind
	}
	ind.AgeDays = daysBetween(created, now)

	if pushed, err := parseTimestamp(meta.PushedAt); err == nil {
		ind.ActivityScore = activityScore(daysBetween(pushed, now))
	}
	ind.MaintenanceScore = maintenanceScore(meta)
	ind.CommunityScore = communityScore(meta)

	ind.Overall = float64(ind.ActivityScore+ind.MaintenanceScore+ind.CommunityScore) / 3
	ind.OverallHealth = Label(ind.Overall)
	return ind
}

// Label maps an overall 0-10 mean onto a health band.
func Label(overall float64) string {
	switch {
	case overall >= 8:
		return LabelExcellent
	case overall >= 6:
		return LabelGood
	case overall >= 4:
		return LabelFair
	default:
		return LabelPoor
	}
}

// activityScore buckets the number of days since the last push.
func activityScore(daysSincePush int) int {
	switch {
	case daysSincePush < 7:
		return 10
	case daysSincePush < 30:
		return 8
	case daysSincePush < 90:
		return 6
	case daysSincePush < 365:
		return 4
	default:
		return 2
	}
}

// maintenanceScore awards 2 points per healthy signal.
func maintenanceScore(meta Metadata) int {
	score := 0
	if meta.Stars > 10 {
		score += 2
	}
	if meta.Forks > 5 {
		score += 2
	}
	if meta.OpenIssues < 20 {
		score += 2
	}
	if !meta.Archived {
		score += 2
	}
	if !meta.Disabled {
		score += 2
	}
	return score
}

// communityScore is one point per 10 stars plus one per 5 forks, capped at 10.
func communityScore(meta Metadata) int {
	score := meta.Stars/10 + meta.Forks/5
	if score < 0 {
		return 0
	}
	return min(10, score)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Date-only records show up in fixtures and hand-written metadata.
		return time.Parse("2006-01-02", s)
	}
	return t, nil
}

// daysBetween returns whole days from then to now, floored, never negative.
func daysBetween(then, now time.Time) int {
	days := math.Floor(now.Sub(then).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}
