package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/health"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/quality"
	"github.com/blackwell-systems/repolens/internal/scanner"
	"github.com/blackwell-systems/repolens/internal/security"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleReport(overall, sec float64, org int) *engine.Report {
	return &engine.Report{
		CodeMetrics: metrics.Summary{
			TotalFiles:      10,
			CodeFiles:       8,
			CodeLines:       400,
			CommentLines:    40,
			PrimaryLanguage: metrics.Go,
		},
		ProjectStructure: scanner.Structure{OrganizationScore: org},
		Security:         security.Summary{Score: sec},
		CodeQuality:      quality.Summary{OverallScore: overall},
	}
}

func metricValue(t *testing.T, ms []AggregateMetric, name string) float64 {
	t.Helper()
	for _, m := range ms {
		if m.MetricName == name {
			return m.MetricValue
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return 0
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func TestOpen_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "repolens.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an existing database keeps the schema version.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.Conn().QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	var rows int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Conn().Exec("UPDATE schema_version SET version = ?", currentSchemaVersion+1)
	require.NoError(t, err)

	assert.ErrorContains(t, db.Migrate(), "newer than this build")
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

func TestSnapshots_PerTarget(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.GetLatestSnapshot("a")
	require.NoError(t, err)
	assert.Nil(t, latest)

	id1, err := db.CreateSnapshot("a", "analyze", "dev")
	require.NoError(t, err)
	_, err = db.CreateSnapshot("b", "remote", "dev")
	require.NoError(t, err)
	id3, err := db.CreateSnapshot("a", "watch", "dev")
	require.NoError(t, err)

	latest, err = db.GetLatestSnapshot("a")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id3, latest.ID)
	assert.Equal(t, "watch", latest.Command)
	assert.False(t, latest.TakenAt.IsZero())

	prev, err := db.GetSnapshotN("a", 2)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, id1, prev.ID)

	none, err := db.GetSnapshotN("a", 3)
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := db.ListSnapshots("a", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id3, all[0].ID)

	one, err := db.ListSnapshots("a", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	targets, err := db.ListTargets()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, targets)

	missing, err := db.GetSnapshot(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

func TestSaveReport(t *testing.T) {
	db := openTestDB(t)
	r := sampleReport(7.5, 9, 6)
	r.Health = &health.Indicators{Overall: 6.5, OverallHealth: health.LabelGood}
	sugg := []suggest.Suggestion{
		{Category: suggest.CategoryStructure, Priority: suggest.PriorityHigh, Title: suggest.TitleReadme, Description: "d1"},
		{Category: suggest.CategoryQuality, Priority: suggest.PriorityLow, Title: suggest.TitleComments, Description: "d2"},
	}

	id, err := db.SaveReport("/src/repo", "analyze", "dev", r, sugg)
	require.NoError(t, err)

	ms, err := db.GetAggregateMetrics(id)
	require.NoError(t, err)
	assert.Len(t, ms, len(ReportMetrics(r)))
	assert.InDelta(t, 7.5, metricValue(t, ms, MetricQualityOverall), 1e-9)
	assert.InDelta(t, 9, metricValue(t, ms, MetricSecurityScore), 1e-9)
	assert.InDelta(t, 6, metricValue(t, ms, MetricOrganization), 1e-9)
	assert.InDelta(t, 6.5, metricValue(t, ms, MetricHealthOverall), 1e-9)

	got, err := db.GetSuggestions(id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, suggest.TitleReadme, got[0].Title)
	assert.Equal(t, suggest.TitleComments, got[1].Title)
	assert.Equal(t, id, got[1].SnapshotID)
}

func TestReportMetrics_NoHealthWithoutMetadata(t *testing.T) {
	for _, m := range ReportMetrics(sampleReport(5, 5, 5)) {
		assert.NotEqual(t, MetricHealthOverall, m.Name)
	}
}

func TestLatestDiff(t *testing.T) {
	db := openTestDB(t)

	diff, err := db.LatestDiff("repo")
	require.NoError(t, err)
	assert.Nil(t, diff)

	_, err = db.SaveReport("repo", "analyze", "dev", sampleReport(6, 10, 5), nil)
	require.NoError(t, err)
	diff, err = db.LatestDiff("repo")
	require.NoError(t, err)
	assert.Nil(t, diff, "one snapshot has nothing to compare against")

	next := sampleReport(7, 8.5, 5)
	next.CodeMetrics.CodeLines = 500
	_, err = db.SaveReport("repo", "analyze", "dev", next, nil)
	require.NoError(t, err)

	diff, err = db.LatestDiff("repo")
	require.NoError(t, err)
	require.NotNil(t, diff)
	require.NotNil(t, diff.Previous)
	assert.Less(t, diff.Previous.ID, diff.Current.ID)

	byName := map[string]MetricDelta{}
	for _, d := range diff.Deltas {
		byName[d.Name] = d
	}
	assert.Equal(t, DirectionImproved, byName[MetricQualityOverall].Direction)
	assert.InDelta(t, 1, byName[MetricQualityOverall].Delta, 1e-9)
	assert.Equal(t, DirectionRegressed, byName[MetricSecurityScore].Direction)
	assert.Equal(t, DirectionUnchanged, byName[MetricOrganization].Direction)
	assert.Equal(t, DirectionChanged, byName[MetricCodeLines].Direction)
	assert.Equal(t, MetricQualityOverall, diff.Deltas[0].Name)
}

func TestDiff_MissingSnapshot(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateSnapshot("repo", "analyze", "dev")
	require.NoError(t, err)

	_, err = db.Diff(id, id+10)
	assert.Error(t, err)
}

func TestNewDelta(t *testing.T) {
	tests := []struct {
		name      string
		metric    string
		prev, cur float64
		want      string
	}{
		{"score up", MetricSecurityScore, 7, 8, DirectionImproved},
		{"score down", MetricSecurityScore, 8, 7, DirectionRegressed},
		{"issues down", MetricSecurityIssues, 5, 2, DirectionImproved},
		{"issues up", MetricSecurityIssues, 2, 5, DirectionRegressed},
		{"size change", MetricTotalFiles, 10, 12, DirectionChanged},
		{"same", MetricCodeSmells, 3, 3, DirectionUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDelta(tt.metric, tt.prev, tt.cur).Direction)
		})
	}
}
