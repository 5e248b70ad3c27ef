package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/output"
	"github.com/blackwell-systems/repolens/internal/suggest"
	"github.com/blackwell-systems/repolens/internal/watcher"
)

var (
	watchDebounce time.Duration
	watchDrop     float64
	watchQuiet    bool
	watchNotify   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze on file changes and alert on regressions",
	Long: `Watch a directory tree (default: the current one) and re-run the analysis
once changes settle. Each run is compared with the previous one; a new
sensitive file or a security score drop raises a critical alert, a quality or
organization drop raises a warning, and improvements are reported as info.

Examples:
  repolens watch                      # watch the current directory (ctrl-c to stop)
  repolens watch ./service --notify   # also send desktop notifications
  repolens watch --drop 1             # only alert on score changes of 1.0 or more`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before re-analyzing (default from config)")
	watchCmd.Flags().Float64Var(&watchDrop, "drop", 0, "Score change that raises an alert (default from config)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send desktop notifications for warnings and critical alerts")
	watchCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record runs in the history database")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	opts := watcher.Options{
		Debounce:  env.cfg.Watch.Debounce,
		ScoreDrop: env.cfg.Watch.ScoreDrop,
		Logger:    env.log,
	}
	if watchDebounce > 0 {
		opts.Debounce = watchDebounce
	}
	if watchDrop > 0 {
		opts.ScoreDrop = watchDrop
	}
	if !analyzeNoSave {
		opts.OnReport = func(r *engine.Report) {
			env.record(root, "watch", r, suggest.NewEngine().Run(r))
		}
	}

	eng := env.newEngine(nil, nil)
	analyze := func(ctx context.Context) (*engine.Report, error) {
		return eng.Analyze(ctx, root, nil)
	}
	alertFn := func(a watcher.Alert) {
		if watchNotify && a.Level != watcher.LevelInfo {
			_ = watcher.Notify(a)
		}
		if !watchQuiet {
			printAlert(env.out, a)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	if !watchQuiet {
		fmt.Fprintf(env.out, "repolens watching %s (re-analyzing %s after changes settle)\n", root, opts.Debounce)
	}
	err = watcher.New(root, analyze, alertFn, opts).Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(env.out, "\nStopped.")
		}
		return nil
	}
	return err
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, output.LevelStyle(a.Level).Render(alertIcon(a.Level)), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "           %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return "✖"
	case watcher.LevelWarning:
		return "▲"
	case watcher.LevelInfo:
		return "✓"
	default:
		return " "
	}
}
