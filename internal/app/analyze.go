package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/config"
	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/output"
	"github.com/blackwell-systems/repolens/internal/scanner"
	"github.com/blackwell-systems/repolens/internal/store"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

var (
	analyzeNoSave   bool
	analyzeExclude  []string
	analyzeQuiet    bool
	analyzeWorkers  int
	analyzeSecurity int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a local repository tree",
	Long: `Scan a directory (default: the current one) and report line metrics,
project structure, build systems, security findings and code quality scores,
followed by ranked recommendations. The run is recorded for 'repolens history'
unless --no-save is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record this run in the history database")
	analyzeCmd.Flags().StringSliceVar(&analyzeExclude, "exclude", nil, "Glob of paths to skip, relative to the root (can be repeated)")
	analyzeCmd.Flags().BoolVar(&analyzeQuiet, "quiet", false, "Hide the progress bar")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Analysis pool size (0 = from config or automatic)")
	analyzeCmd.Flags().IntVar(&analyzeSecurity, "security-workers", 0, "Security pool size (0 = from config or automatic)")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisOutput is the structured form of an analysis: the report with the
// recommendations appended.
type analysisOutput struct {
	engine.Report   `yaml:",inline"`
	Recommendations []suggest.Suggestion `json:"recommendations" yaml:"recommendations"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	bar := env.progress("Analyzing", analyzeQuiet)
	eng := env.newEngine(bar, nil)
	report, err := eng.Analyze(cmd.Context(), root, nil)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	suggestions := suggest.NewEngine().Run(report)
	if !analyzeNoSave {
		env.record(root, "analyze", report, suggestions)
	}
	return env.writeAnalysis(root, report, suggestions)
}

// newEngine builds an engine from the configuration and command flags.
// bar may be nil.
func (e *runtimeEnv) newEngine(bar *output.Progress, wiki scanner.WikiChecker) *engine.Engine {
	opts := engine.Options{
		Logger:          e.log,
		AnalysisWorkers: e.cfg.Workers.Analysis,
		SecurityWorkers: e.cfg.Workers.Security,
		Exclude:         append(append([]string{}, e.cfg.Exclude...), analyzeExclude...),
		Wiki:            wiki,
	}
	if analyzeWorkers > 0 {
		opts.AnalysisWorkers = analyzeWorkers
	}
	if analyzeSecurity > 0 {
		opts.SecurityWorkers = analyzeSecurity
	}
	if bar != nil {
		opts.Progress = func(p engine.Progress) {
			bar.Update(p.Stage, p.Done, p.Total)
		}
	}
	return engine.New(opts)
}

// progress returns a bar on stderr, or nil when stderr is not a terminal,
// structured output was requested, or quiet is set.
func (e *runtimeEnv) progress(description string, quiet bool) *output.Progress {
	if quiet || e.format != config.FormatTable || !isTerminal(e.errOut) {
		return nil
	}
	return output.NewProgress(e.errOut, description)
}

// openStore opens the history database named by the configuration.
func (e *runtimeEnv) openStore() (*store.DB, error) {
	db, err := store.Open(e.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// record saves a run to the history database. Failures are logged and do not
// fail the command.
func (e *runtimeEnv) record(target, command string, r *engine.Report, suggestions []suggest.Suggestion) {
	db, err := e.openStore()
	if err != nil {
		e.log.Warn("history not recorded", "err", err)
		return
	}
	defer func() { _ = db.Close() }()

	id, err := db.SaveReport(target, command, appVersion, r, suggestions)
	if err != nil {
		e.log.Warn("history not recorded", "target", target, "err", err)
		return
	}
	e.log.Debug("snapshot recorded", "target", target, "id", id)
}
