package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/config"
	"github.com/blackwell-systems/repolens/internal/output"
	"github.com/blackwell-systems/repolens/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [target]",
	Short: "Show recorded runs and score changes",
	Long: `List the recorded analyses of a target (a local path or owner/name) and
compare the two most recent runs metric by metric with trend arrows.
Without a target, list every target that has been recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to list (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

// historyOutput is the structured form of the history command.
type historyOutput struct {
	Target    string              `json:"target" yaml:"target"`
	Snapshots []store.Snapshot    `json:"snapshots" yaml:"snapshots"`
	Latest    *store.SnapshotDiff `json:"latest_change,omitempty" yaml:"latest_change,omitempty"`
	Open      []store.Suggestion  `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	db, err := env.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if len(args) == 0 {
		targets, err := db.ListTargets()
		if err != nil {
			return fmt.Errorf("listing targets: %w", err)
		}
		if env.format != config.FormatTable {
			return env.writeStructured(map[string][]string{"targets": targets})
		}
		renderTargets(env.out, targets, env.cfg.Output.Width)
		return nil
	}

	target := resolveTarget(args[0])
	snaps, err := db.ListSnapshots(target, historyLimit)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	diff, err := db.LatestDiff(target)
	if err != nil {
		return fmt.Errorf("comparing snapshots: %w", err)
	}
	var open []store.Suggestion
	if len(snaps) > 0 {
		if open, err = db.GetSuggestions(snaps[0].ID); err != nil {
			return fmt.Errorf("loading recommendations: %w", err)
		}
	}

	if env.format != config.FormatTable {
		if snaps == nil {
			snaps = []store.Snapshot{}
		}
		return env.writeStructured(historyOutput{Target: target, Snapshots: snaps, Latest: diff, Open: open})
	}
	renderHistory(env.out, target, snaps, diff, env.cfg.Output.Width)
	renderOpen(env.out, open, env.cfg.Output.Width)
	return nil
}

// resolveTarget maps a local path to the absolute form runs are recorded
// under. owner/name references are returned unchanged.
func resolveTarget(arg string) string {
	if !strings.HasPrefix(arg, ".") && !filepath.IsAbs(arg) && strings.Count(arg, "/") == 1 {
		return arg
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

func renderTargets(w io.Writer, targets []string, width int) {
	fmt.Fprintln(w, output.Section("Recorded targets", width))
	if len(targets) == 0 {
		fmt.Fprintln(w, " No runs recorded yet. Run 'repolens analyze' first.")
		return
	}
	for _, t := range targets {
		fmt.Fprintf(w, " %s\n", t)
	}
	fmt.Fprintln(w)
}

func renderHistory(w io.Writer, target string, snaps []store.Snapshot, diff *store.SnapshotDiff, width int) {
	fmt.Fprintln(w, output.Section("History: "+target, width))
	if len(snaps) == 0 {
		fmt.Fprintln(w, " No runs recorded for this target.")
		return
	}

	runs := output.NewTable("#", "Taken", "Command", "Version").AlignRight(0)
	for _, s := range snaps {
		runs.AddRow(strconv.FormatInt(s.ID, 10), s.TakenAt.Local().Format("2006-01-02 15:04:05"), s.Command, s.Version)
	}
	fmt.Fprintln(w)
	runs.Fprint(w)

	if diff == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, " Only one run recorded. Analyze again later to see trends.")
		return
	}

	fmt.Fprintln(w, output.Section(fmt.Sprintf("Run #%d compared with #%d", diff.Current.ID, diff.Previous.ID), width))
	fmt.Fprintln(w)
	tbl := output.NewTable("Metric", "Previous", "Current", "Trend").AlignRight(1, 2)
	for _, d := range diff.Deltas {
		tbl.AddRow(d.Name, formatMetric(d.Previous), formatMetric(d.Current), output.TrendArrow(d.Delta, d.Direction))
	}
	tbl.Fprint(w)
	fmt.Fprintln(w)
}

// renderOpen lists the recommendations recorded with the most recent run.
func renderOpen(w io.Writer, open []store.Suggestion, width int) {
	if len(open) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section("Open recommendations", width))
	fmt.Fprintln(w)
	for i, s := range open {
		fmt.Fprintf(w, " %d. %s %s\n", i+1, priorityLabel(s.Priority), output.StyleBold.Render(s.Title))
	}
	fmt.Fprintln(w)
}

func formatMetric(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
