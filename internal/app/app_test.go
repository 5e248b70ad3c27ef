package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/repolens/internal/store"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

// resetFlags restores every package-level flag variable, since the command
// tree is shared between runs.
func resetFlags() {
	flagNoColor, flagVerbose, flagConfig, flagFormat = false, false, "", ""
	analyzeNoSave, analyzeExclude, analyzeQuiet = false, nil, false
	analyzeWorkers, analyzeSecurity = 0, 0
	remoteKeep, remoteNoWiki = false, false
	historyLimit = 10
	serveNoHistory = false
	watchDebounce, watchDrop, watchQuiet, watchNotify = 0, 0, false, false
}

// testEnv writes a config file pointing the history database into a temp
// directory and returns its path and the database path.
func testEnv(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "history.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := "db_path: " + dbPath + "\noutput:\n  color: false\nworkers:\n  analysis: 2\n  security: 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, dbPath
}

// run executes the command tree with args and returns stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.py":          "def main():\n    # start\n    if True:\n        return 1\n    return 0\n",
		"README.md":       "# demo\n",
		"tests/test_a.py": "def test_a():\n    assert True\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

// ---------------------------------------------------------------------------
// Command tree
// ---------------------------------------------------------------------------

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"analyze", "remote", "history", "languages", "serve", "watch"} {
		assert.Contains(t, names, want)
	}
}

func TestSetup_UnknownFormat(t *testing.T) {
	cfg, _ := testEnv(t)
	_, err := run(t, cfg, "languages", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

// ---------------------------------------------------------------------------
// analyze
// ---------------------------------------------------------------------------

func TestAnalyze_JSON(t *testing.T) {
	cfg, dbPath := testEnv(t)
	repo := writeRepo(t)

	out, err := run(t, cfg, "analyze", repo, "--format", "json")
	require.NoError(t, err)

	var got struct {
		CodeMetrics struct {
			TotalFiles      int    `json:"total_files"`
			PrimaryLanguage string `json:"primary_language"`
		} `json:"code_metrics"`
		ProjectStructure struct {
			HasReadme bool `json:"has_readme"`
			HasTests  bool `json:"has_tests"`
		} `json:"project_structure"`
		Recommendations []struct {
			Title string `json:"title"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.CodeMetrics.TotalFiles)
	assert.Equal(t, "Python", got.CodeMetrics.PrimaryLanguage)
	assert.True(t, got.ProjectStructure.HasReadme)
	assert.True(t, got.ProjectStructure.HasTests)
	assert.NotEmpty(t, got.Recommendations)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	snaps, err := db.ListSnapshots(repo, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "analyze", snaps[0].Command)
}

func TestAnalyze_YAML(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "analyze", writeRepo(t), "--format", "yaml", "--no-save")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "code_metrics")
	assert.Contains(t, got, "code_quality")
	assert.Contains(t, got, "recommendations")
	assert.NotContains(t, got, "report", "report fields are inlined")
}

func TestAnalyze_Table(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "analyze", writeRepo(t), "--no-save")
	require.NoError(t, err)

	for _, section := range []string{"Code Metrics", "Project Structure", "Security", "Code Quality", "Recommendations"} {
		assert.Contains(t, out, section)
	}
	assert.NotContains(t, out, "Health", "local runs carry no health section")
}

func TestAnalyze_NoSave(t *testing.T) {
	cfg, dbPath := testEnv(t)
	_, err := run(t, cfg, "analyze", writeRepo(t), "--format", "json", "--no-save")
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyze_MissingPath(t *testing.T) {
	cfg, _ := testEnv(t)
	_, err := run(t, cfg, "analyze", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// history
// ---------------------------------------------------------------------------

func TestHistory(t *testing.T) {
	cfg, _ := testEnv(t)
	repo := writeRepo(t)

	_, err := run(t, cfg, "analyze", repo, "--format", "json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "LICENSE"), []byte("MIT\n"), 0o644))
	_, err = run(t, cfg, "analyze", repo, "--format", "json")
	require.NoError(t, err)

	out, err := run(t, cfg, "history", repo, "--format", "json")
	require.NoError(t, err)
	var got historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, repo, got.Target)
	assert.Len(t, got.Snapshots, 2)
	require.NotNil(t, got.Latest)

	byName := map[string]store.MetricDelta{}
	for _, d := range got.Latest.Deltas {
		byName[d.Name] = d
	}
	assert.Equal(t, store.DirectionImproved, byName[store.MetricOrganization].Direction)

	var open []string
	for _, s := range got.Open {
		open = append(open, s.Title)
	}
	assert.Contains(t, open, suggest.TitleDocs)
	assert.NotContains(t, open, suggest.TitleLicense, "recommendations come from the latest run")

	table, err := run(t, cfg, "history", repo)
	require.NoError(t, err)
	assert.Contains(t, table, "compared with")
	assert.Contains(t, table, store.MetricOrganization)
	assert.Contains(t, table, "Open recommendations")

	targets, err := run(t, cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, targets, repo)
}

func TestHistory_Empty(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "history", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, "spf13/cobra", resolveTarget("spf13/cobra"))
	assert.Equal(t, "/srv/repo", resolveTarget("/srv/repo"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "sub", "dir"), resolveTarget("./sub/dir"))
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func TestLanguages_JSON(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "languages", "--format", "json")
	require.NoError(t, err)

	var rows []languageRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	byExt := map[string]languageRow{}
	for _, r := range rows {
		byExt[r.Extension] = r
	}
	assert.Equal(t, "Python", byExt[".py"].Language)
	assert.Equal(t, "structured-parse", byExt[".py"].QualityMethod)
	assert.Equal(t, []string{"#"}, byExt[".py"].CommentMarkers)
	assert.Empty(t, byExt[".json"].QualityMethod)
}

func TestLanguages_Table(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "token-pattern")
	assert.Contains(t, out, ".rs")
}

// ---------------------------------------------------------------------------
// remote
// ---------------------------------------------------------------------------

func TestRemote_InvalidReference(t *testing.T) {
	cfg, _ := testEnv(t)
	_, err := run(t, cfg, "remote", "not a repo")
	assert.ErrorContains(t, err, "invalid repository reference")
}
