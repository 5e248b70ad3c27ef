// Package engine runs one repository analysis: a single scan, two bounded
// worker pools feeding a shared accumulator, and a final scoring pass.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/repolens/internal/buildsys"
	"github.com/blackwell-systems/repolens/internal/health"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/quality"
	"github.com/blackwell-systems/repolens/internal/scanner"
	"github.com/blackwell-systems/repolens/internal/security"
)

// Progress stages.
const (
	StageAnalysis = "analysis"
	StageSecurity = "security"
)

// Progress is reported after every merged file.
type Progress struct {
	Stage string
	Done  int
	Total int
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Logger receives run-level Info and per-file Debug messages.
	// Nil discards everything.
	Logger *slog.Logger

	// AnalysisWorkers and SecurityWorkers bound the two pools. Zero picks
	// min(32, NumCPU+4) and min(16, NumCPU+2).
	AnalysisWorkers int
	SecurityWorkers int

	// Exclude holds doublestar patterns passed to the scanner.
	Exclude []string

	// Progress, when set, is called outside the accumulator lock and may be
	// called concurrently from both pools.
	Progress func(Progress)

	// Now is the clock used for health scoring. Nil means time.Now.
	Now func() time.Time

	// Wiki lets the structure probe count a hosted wiki as documentation.
	Wiki scanner.WikiChecker
}

// Engine analyzes local repository trees. It holds no per-run state and can
// be shared.
type Engine struct {
	opts Options
	log  *slog.Logger
}

// New returns an Engine for opts.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts, log: log}
}

// DefaultAnalysisWorkers is the analysis pool size when none is configured.
func DefaultAnalysisWorkers() int {
	return min(32, runtime.NumCPU()+4)
}

// DefaultSecurityWorkers is the security pool size when none is configured.
func DefaultSecurityWorkers() int {
	return min(16, runtime.NumCPU()+2)
}

func (e *Engine) analysisWorkers() int {
	if e.opts.AnalysisWorkers > 0 {
		return e.opts.AnalysisWorkers
	}
	return DefaultAnalysisWorkers()
}

func (e *Engine) securityWorkers() int {
	if e.opts.SecurityWorkers > 0 {
		return e.opts.SecurityWorkers
	}
	return DefaultSecurityWorkers()
}

// Analyze scans root and builds its report. meta may be nil, in which case
// the report carries no repository or health section. Only root errors are
// returned; per-file failures degrade that file's contribution.
func (e *Engine) Analyze(ctx context.Context, root string, meta *health.Metadata) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	tree, err := scanner.Walk(root, scanner.WalkOptions{
		Exclude: e.opts.Exclude,
		Probe:   security.ProbePaths(),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	e.log.Info("analysis started", "root", tree.Root, "files", len(tree.Files), "hidden", len(tree.Hidden))

	acc := newAccumulator()
	e.fanOut(ctx, tree, acc)

	codeMetrics, codeQuality, sec := acc.finalize()
	report := &Report{
		Repository:       meta,
		CodeMetrics:      codeMetrics,
		ProjectStructure: scanner.ProbeStructure(ctx, tree.Root, meta, e.opts.Wiki),
		BuildSystems:     buildsys.Detect(ctx, tree.Root, e.log),
		Security:         sec,
		CodeQuality:      codeQuality,
	}
	if meta != nil {
		ind := health.Score(*meta, e.opts.Now())
		report.Health = &ind
	}

	e.log.Info("analysis finished",
		"root", tree.Root,
		"files", codeMetrics.TotalFiles,
		"quality", codeQuality.OverallScore,
		"security", sec.Score,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// fanOut runs the analysis and security pools side by side and returns when
// every task has merged. Cancellation of ctx no longer applies at this point.
func (e *Engine) fanOut(ctx context.Context, tree *scanner.Tree, acc *accumulator) {
	ctx = context.WithoutCancel(ctx)

	scanTargets := make([]scanner.FileDescriptor, 0, len(tree.Files)+len(tree.Hidden))
	scanTargets = append(scanTargets, tree.Files...)
	scanTargets = append(scanTargets, tree.Hidden...)

	wg := conc.NewWaitGroup()
	wg.Go(func() { e.runAnalysis(ctx, tree.Files, acc) })
	wg.Go(func() { e.runSecurity(scanTargets, acc) })
	wg.Wait()
}

func (e *Engine) runAnalysis(ctx context.Context, files []scanner.FileDescriptor, acc *accumulator) {
	var g errgroup.Group
	g.SetLimit(e.analysisWorkers())

	for _, desc := range files {
		g.Go(func() error {
			m, q := e.analyzeFile(ctx, desc)
			done := acc.mergeAnalysis(m, q)
			e.progress(StageAnalysis, done, len(files))
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) runSecurity(files []scanner.FileDescriptor, acc *accumulator) {
	var g errgroup.Group
	g.SetLimit(e.securityWorkers())

	for _, desc := range files {
		g.Go(func() error {
			done := acc.mergeSecurity(e.scanFile(desc))
			e.progress(StageSecurity, done, len(files))
			return nil
		})
	}
	_ = g.Wait()
}

// analyzeFile computes the line metrics and, for eligible languages, the
// quality record of one file. A panic degrades the file to a read failure.
func (e *Engine) analyzeFile(ctx context.Context, desc scanner.FileDescriptor) (m metrics.Record, q *quality.Record) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug("file analysis panicked", "path", desc.RelPath, "panic", r)
			m = metrics.Record{
				Path:       desc.RelPath,
				Ext:        desc.Ext,
				Size:       desc.Size,
				Language:   metrics.LanguageFor(desc.Ext),
				ReadFailed: true,
			}
			q = nil
		}
	}()

	m = metrics.CountLines(desc)
	if m.ReadFailed {
		e.log.Debug("file unreadable", "path", desc.RelPath)
		return m, nil
	}
	if !quality.Eligible(m.Language) {
		return m, nil
	}

	rec := quality.Analyze(ctx, desc, m.Language)
	switch {
	case rec.ReadFailed:
		e.log.Debug("file unreadable for quality", "path", desc.RelPath)
		return m, nil
	case rec.ParseFailed:
		e.log.Debug("file did not parse", "path", desc.RelPath, "strategy", rec.Strategy)
	}
	return m, &rec
}

func (e *Engine) scanFile(desc scanner.FileDescriptor) (res security.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug("security scan panicked", "path", desc.RelPath, "panic", r)
			res = security.Result{Path: desc.RelPath, Findings: []security.Finding{}}
		}
	}()

	res = security.Scan(desc)
	if res.ReadFailed {
		e.log.Debug("file unreadable for security scan", "path", desc.RelPath)
	}
	return res
}

func (e *Engine) progress(stage string, done, total int) {
	if e.opts.Progress != nil {
		e.opts.Progress(Progress{Stage: stage, Done: done, Total: total})
	}
}
