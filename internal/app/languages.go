package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/config"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/output"
	"github.com/blackwell-systems/repolens/internal/quality"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List recognized file extensions",
	Long: `Print the extension table used for line counting: the language of each
extension, its comment markers and the method used to estimate complexity.
Files with other extensions are counted but not classified.`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

type languageRow struct {
	Extension      string   `json:"extension" yaml:"extension"`
	Language       string   `json:"language" yaml:"language"`
	CommentMarkers []string `json:"comment_markers" yaml:"comment_markers"`
	QualityMethod  string   `json:"quality_method,omitempty" yaml:"quality_method,omitempty"`
}

func languageRows() []languageRow {
	langs := metrics.Languages()
	rows := make([]languageRow, 0, len(langs))
	for _, l := range langs {
		row := languageRow{
			Extension:      l.Extension,
			Language:       l.Name,
			CommentMarkers: append([]string{}, l.CommentMarkers...),
		}
		if quality.Eligible(l.Name) {
			row.QualityMethod = quality.StrategyFor(l.Name).String()
		}
		rows = append(rows, row)
	}
	return rows
}

func runLanguages(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	rows := languageRows()
	if env.format != config.FormatTable {
		return env.writeStructured(rows)
	}

	fmt.Fprintln(env.out, output.Section("Languages", env.cfg.Output.Width))
	fmt.Fprintln(env.out)
	tbl := output.NewTable("Extension", "Language", "Comments", "Quality")
	for _, r := range rows {
		method := r.QualityMethod
		if method == "" {
			method = output.StyleMuted.Render("-")
		}
		tbl.AddRow(r.Extension, r.Language, strings.Join(r.CommentMarkers, " "), method)
	}
	tbl.Fprint(env.out)
	return nil
}
