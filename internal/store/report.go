package store

import (
	"fmt"
	"math"
	"time"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

// Metric names recorded for every analysis.
const (
	MetricQualityOverall       = "quality_overall"
	MetricComplexityScore      = "quality_complexity"
	MetricMaintainability      = "quality_maintainability"
	MetricTechnicalDebt        = "quality_technical_debt"
	MetricCodeSmells           = "code_smells"
	MetricSecurityScore        = "security_score"
	MetricSecurityIssues       = "security_issues"
	MetricSensitiveFiles       = "sensitive_files"
	MetricOrganization         = "organization_score"
	MetricTotalFiles           = "total_files"
	MetricCodeFiles            = "code_files"
	MetricCodeLines            = "code_lines"
	MetricCommentLines         = "comment_lines"
	MetricDependencies         = "dependencies"
	MetricHealthOverall        = "health_overall"
	MetricAvgComplexity        = "avg_complexity"
	MetricMaintainabilityIndex = "maintainability_index"
)

// polarity is +1 when a higher value is better, -1 when lower is better,
// and 0 for size figures that are neither.
var polarity = map[string]int{
	MetricQualityOverall:       1,
	MetricComplexityScore:      1,
	MetricMaintainability:      1,
	MetricTechnicalDebt:        1,
	MetricCodeSmells:           -1,
	MetricSecurityScore:        1,
	MetricSecurityIssues:       -1,
	MetricSensitiveFiles:       -1,
	MetricOrganization:         1,
	MetricHealthOverall:        1,
	MetricAvgComplexity:        -1,
	MetricMaintainabilityIndex: 1,
}

const deltaEpsilon = 1e-9

// ReportMetrics flattens the comparable figures of a report. The health
// metric is present only when the report carries metadata.
func ReportMetrics(r *engine.Report) []MetricRow {
	q := r.CodeQuality
	rows := []MetricRow{
		{Name: MetricQualityOverall, Value: q.OverallScore},
		{Name: MetricComplexityScore, Value: q.ComplexityScore},
		{Name: MetricMaintainability, Value: q.MaintainabilityScore},
		{Name: MetricTechnicalDebt, Value: q.TechnicalDebtScore},
		{Name: MetricAvgComplexity, Value: q.Complexity.Average},
		{Name: MetricMaintainabilityIndex, Value: q.Maintainability.Index},
		{Name: MetricCodeSmells, Value: float64(len(q.CodeSmells))},
		{Name: MetricSecurityScore, Value: r.Security.Score},
		{Name: MetricSecurityIssues, Value: float64(len(r.Security.PotentialIssues))},
		{Name: MetricSensitiveFiles, Value: float64(len(r.Security.SensitiveFiles))},
		{Name: MetricOrganization, Value: float64(r.ProjectStructure.OrganizationScore)},
		{Name: MetricTotalFiles, Value: float64(r.CodeMetrics.TotalFiles)},
		{Name: MetricCodeFiles, Value: float64(r.CodeMetrics.CodeFiles)},
		{Name: MetricCodeLines, Value: float64(r.CodeMetrics.CodeLines), Detail: r.CodeMetrics.PrimaryLanguage},
		{Name: MetricCommentLines, Value: float64(r.CodeMetrics.CommentLines)},
		{Name: MetricDependencies, Value: float64(r.BuildSystems.DependenciesCount)},
	}
	if r.Health != nil {
		rows = append(rows, MetricRow{Name: MetricHealthOverall, Value: r.Health.Overall, Detail: r.Health.OverallHealth})
	}
	return rows
}

// SaveReport records a report and its suggestions as one snapshot of target
// and returns the snapshot ID. Nothing is written if any insert fails.
func (db *DB) SaveReport(target, command, version string, r *engine.Report, suggestions []suggest.Suggestion) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := createSnapshot(tx, target, command, version, time.Now())
	if err != nil {
		return 0, fmt.Errorf("creating snapshot: %w", err)
	}
	for _, m := range ReportMetrics(r) {
		if err := insertAggregateMetric(tx, id, m.Name, m.Value, m.Detail); err != nil {
			return 0, fmt.Errorf("inserting metric %s: %w", m.Name, err)
		}
	}
	for i, s := range suggestions {
		row := &Suggestion{
			SnapshotID:  id,
			Category:    s.Category,
			Priority:    s.Priority,
			Title:       s.Title,
			Description: s.Description,
		}
		if err := insertSuggestion(tx, row, i); err != nil {
			return 0, fmt.Errorf("inserting suggestion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Diff compares the metrics of two snapshots. Deltas follow the current
// snapshot's metric order; metrics missing from either side are skipped.
func (db *DB) Diff(previousID, currentID int64) (*SnapshotDiff, error) {
	prev, err := db.GetSnapshot(previousID)
	if err != nil {
		return nil, err
	}
	curr, err := db.GetSnapshot(currentID)
	if err != nil {
		return nil, err
	}
	if prev == nil || curr == nil {
		return nil, fmt.Errorf("snapshot %d or %d not found", previousID, currentID)
	}

	prevMetrics, err := db.GetAggregateMetrics(previousID)
	if err != nil {
		return nil, err
	}
	currMetrics, err := db.GetAggregateMetrics(currentID)
	if err != nil {
		return nil, err
	}

	before := make(map[string]float64, len(prevMetrics))
	for _, m := range prevMetrics {
		before[m.MetricName] = m.MetricValue
	}

	diff := &SnapshotDiff{Previous: prev, Current: curr, Deltas: []MetricDelta{}}
	for _, m := range currMetrics {
		old, ok := before[m.MetricName]
		if !ok {
			continue
		}
		diff.Deltas = append(diff.Deltas, NewDelta(m.MetricName, old, m.MetricValue))
	}
	return diff, nil
}

// LatestDiff compares the two most recent snapshots of target. It returns
// nil when fewer than two exist.
func (db *DB) LatestDiff(target string) (*SnapshotDiff, error) {
	snaps, err := db.ListSnapshots(target, 2)
	if err != nil {
		return nil, err
	}
	if len(snaps) < 2 {
		return nil, nil
	}
	return db.Diff(snaps[1].ID, snaps[0].ID)
}

// NewDelta builds the delta of one metric and labels its direction.
func NewDelta(name string, previous, current float64) MetricDelta {
	d := MetricDelta{
		Name:     name,
		Previous: previous,
		Current:  current,
		Delta:    current - previous,
	}
	switch sign := polarity[name]; {
	case math.Abs(d.Delta) < deltaEpsilon:
		d.Direction = DirectionUnchanged
	case sign == 0:
		d.Direction = DirectionChanged
	case (d.Delta > 0) == (sign > 0):
		d.Direction = DirectionImproved
	default:
		d.Direction = DirectionRegressed
	}
	return d
}
