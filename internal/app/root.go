// Package app contains the Cobra command tree for repolens.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/config"
	"github.com/blackwell-systems/repolens/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagVerbose bool
	flagConfig  string
	flagFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "Code metrics, quality and security analysis for repositories",
	Long: `repolens analyzes a repository tree: line counts per language, project
structure, build systems and dependencies, security findings, complexity and
maintainability scores, and a ranked list of recommendations.

Analyze a local checkout with 'repolens analyze <path>' or a GitHub
repository with 'repolens remote <owner>/<name>'. Every run is recorded so
'repolens history' can show how the scores move over time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/repolens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log per-file diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format: table, json or yaml (default from config)")
}

// runtimeEnv is the per-invocation state shared by the commands.
type runtimeEnv struct {
	cfg    *config.Config
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer
	format string
}

// setup loads the configuration and derives the logger, output format and
// color mode for cmd.
func setup(cmd *cobra.Command) (*runtimeEnv, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	format := cfg.Output.Format
	if flagFormat != "" {
		format = flagFormat
	}
	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	env := &runtimeEnv{
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: format,
	}
	env.log = newLogger(env.errOut, flagVerbose)

	if flagNoColor || !cfg.Output.Color || !isTerminal(env.out) {
		output.SetNoColor(true)
	}
	return env, nil
}

// newLogger returns a text logger on w. Only warnings are shown unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
