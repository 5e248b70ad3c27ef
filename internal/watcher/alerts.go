package watcher

import (
	"fmt"
	"slices"
	"time"

	"github.com/blackwell-systems/repolens/internal/engine"
)

// Alert levels.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// State captures the scores of one analysis run.
type State struct {
	Timestamp      time.Time
	TotalFiles     int
	QualityScore   float64
	SecurityScore  float64
	Organization   int
	CodeSmells     int
	SecurityIssues int
	SensitiveFiles []string
}

// StateFromReport extracts the watched figures from a report.
func StateFromReport(r *engine.Report, at time.Time) *State {
	return &State{
		Timestamp:      at,
		TotalFiles:     r.CodeMetrics.TotalFiles,
		QualityScore:   r.CodeQuality.OverallScore,
		SecurityScore:  r.Security.Score,
		Organization:   r.ProjectStructure.OrganizationScore,
		CodeSmells:     len(r.CodeQuality.CodeSmells),
		SecurityIssues: len(r.Security.PotentialIssues),
		SensitiveFiles: slices.Clone(r.Security.SensitiveFiles),
	}
}

// DefaultScoreDrop is the score change that raises an alert when none is
// configured.
const DefaultScoreDrop = 0.5

// Compare detects notable changes between two states and returns alerts.
// Score changes smaller than drop are ignored; a non-positive drop means
// DefaultScoreDrop.
func Compare(prev, curr *State, drop float64) []Alert {
	if drop <= 0 {
		drop = DefaultScoreDrop
	}
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr, drop)...)
	alerts = append(alerts, compareWarning(prev, curr, drop)...)
	alerts = append(alerts, compareInfo(prev, curr, drop)...)

	return alerts
}

// compareCritical flags security regressions.
func compareCritical(prev, curr *State, drop float64) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	for _, f := range curr.SensitiveFiles {
		if !slices.Contains(prev.SensitiveFiles, f) {
			alerts = append(alerts, Alert{
				Level:   LevelCritical,
				Title:   fmt.Sprintf("Sensitive file added: %s", f),
				Message: "Remove or secure sensitive files before committing",
				Time:    now,
			})
		}
	}

	if prev.SecurityScore-curr.SecurityScore >= drop {
		alerts = append(alerts, Alert{
			Level:   LevelCritical,
			Title:   "Security score dropped",
			Message: fmt.Sprintf("%.1f → %.1f (%d potential issue(s), was %d)", prev.SecurityScore, curr.SecurityScore, curr.SecurityIssues, prev.SecurityIssues),
			Time:    now,
		})
	}
	return alerts
}

// compareWarning flags quality and organization regressions.
func compareWarning(prev, curr *State, drop float64) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	if prev.QualityScore-curr.QualityScore >= drop {
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   "Code quality dropped",
			Message: fmt.Sprintf("%.1f → %.1f (%d code smell(s), was %d)", prev.QualityScore, curr.QualityScore, curr.CodeSmells, prev.CodeSmells),
			Time:    now,
		})
	}

	if curr.Organization < prev.Organization {
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   "Project organization dropped",
			Message: fmt.Sprintf("Organization score %d → %d", prev.Organization, curr.Organization),
			Time:    now,
		})
	}
	return alerts
}

// compareInfo reports improvements.
func compareInfo(prev, curr *State, drop float64) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	if curr.QualityScore-prev.QualityScore >= drop {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   "Code quality improved",
			Message: fmt.Sprintf("%.1f → %.1f", prev.QualityScore, curr.QualityScore),
			Time:    now,
		})
	}
	if curr.SecurityScore-prev.SecurityScore >= drop {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   "Security score improved",
			Message: fmt.Sprintf("%.1f → %.1f", prev.SecurityScore, curr.SecurityScore),
			Time:    now,
		})
	}
	return alerts
}
