package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/quality"
	"github.com/blackwell-systems/repolens/internal/store"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

// Tool names.
const (
	ToolAnalyze   = "analyze_repository_path"
	ToolLanguages = "list_languages"
	ToolHistory   = "get_analysis_history"
)

const (
	defaultHistoryLimit = 10
	snapshotCommand     = "mcp"
)

// AnalysisResult is the payload of the analyze tool.
type AnalysisResult struct {
	Path            string               `json:"path"`
	Report          *engine.Report       `json:"report"`
	Recommendations []suggest.Suggestion `json:"recommendations"`
	SnapshotID      int64                `json:"snapshot_id,omitempty"`
}

// LanguageEntry is one row of the languages tool.
type LanguageEntry struct {
	Extension     string `json:"extension"`
	Language      string `json:"language"`
	QualityMethod string `json:"quality_method,omitempty"`
}

// HistoryResult is the payload of the history tool.
type HistoryResult struct {
	Target    string              `json:"target"`
	Snapshots []store.Snapshot    `json:"snapshots"`
	Latest    *store.SnapshotDiff `json:"latest_change,omitempty"`
	// Open holds the recommendations recorded with the most recent snapshot.
	Open []store.Suggestion `json:"recommendations,omitempty"`
}

var errPathRequired = errors.New("path must be a non-empty string")

// addTools registers the MCP tools on s. The history tool needs a store.
func addTools(s *Server) {
	s.registerTool(mcp.NewTool(ToolAnalyze,
		mcp.WithDescription("Analyzes a local repository directory: line metrics, project structure, build systems, security findings, code quality scores and ranked recommendations."),
		mcp.WithString("path",
			mcp.Description("Directory to analyze (absolute, or relative to the server's working directory)"),
			mcp.Required(),
		),
	), s.handleAnalyze)

	s.registerTool(mcp.NewTool(ToolLanguages,
		mcp.WithDescription("Lists the recognized file extensions with their language and quality analysis method."),
	), s.handleLanguages)

	if s.db != nil {
		s.registerTool(mcp.NewTool(ToolHistory,
			mcp.WithDescription("Lists recorded analyses of a path and the metric changes between the last two."),
			mcp.WithString("path",
				mcp.Description("Directory whose history to return"),
				mcp.Required(),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of snapshots to list (default 10)"),
			),
		), s.handleHistory)
	}
}

func (s *Server) handleAnalyze(ctx context.Context, args map[string]interface{}) (any, error) {
	root, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	report, err := s.engine.Analyze(ctx, root, nil)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Path:            root,
		Report:          report,
		Recommendations: s.suggest.Run(report),
	}
	if s.db != nil {
		id, err := s.db.SaveReport(root, snapshotCommand, s.version, report, result.Recommendations)
		if err != nil {
			s.log.Warn("recording snapshot failed", "path", root, "err", err)
		} else {
			result.SnapshotID = id
		}
	}
	return result, nil
}

func (s *Server) handleLanguages(_ context.Context, _ map[string]interface{}) (any, error) {
	langs := metrics.Languages()
	out := make([]LanguageEntry, 0, len(langs))
	for _, l := range langs {
		entry := LanguageEntry{Extension: l.Extension, Language: l.Name}
		if quality.Eligible(l.Name) {
			entry.QualityMethod = quality.StrategyFor(l.Name).String()
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Server) handleHistory(_ context.Context, args map[string]interface{}) (any, error) {
	root, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	limit := defaultHistoryLimit
	if n, ok := args["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	snaps, err := s.db.ListSnapshots(root, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	diff, err := s.db.LatestDiff(root)
	if err != nil {
		return nil, fmt.Errorf("comparing snapshots: %w", err)
	}
	result := &HistoryResult{Target: root, Snapshots: snaps, Latest: diff}
	if len(snaps) == 0 {
		result.Snapshots = []store.Snapshot{}
		return result, nil
	}
	if result.Open, err = s.db.GetSuggestions(snaps[0].ID); err != nil {
		return nil, fmt.Errorf("loading recommendations: %w", err)
	}
	return result, nil
}

// pathArg returns the absolute form of the "path" argument, which must name
// an existing directory.
func pathArg(args map[string]interface{}) (string, error) {
	p, _ := args["path"].(string)
	if p == "" {
		return "", errPathRequired
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
