package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/repolens/internal/config"
	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/output"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

// maxListed bounds the smells and findings shown in table output.
const maxListed = 10

// writeStructured encodes v as JSON or YAML according to the format.
func (e *runtimeEnv) writeStructured(v any) error {
	switch e.format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(e.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func (e *runtimeEnv) writeAnalysis(target string, r *engine.Report, suggestions []suggest.Suggestion) error {
	if e.format != config.FormatTable {
		return e.writeStructured(analysisOutput{Report: *r, Recommendations: suggestions})
	}
	renderReport(e.out, target, r, suggestions, e.cfg.Output.Width)
	return nil
}

// renderReport prints the report as styled sections.
func renderReport(w io.Writer, target string, r *engine.Report, suggestions []suggest.Suggestion, width int) {
	fmt.Fprintln(w, output.Section("repolens: "+target, width))

	if meta := r.Repository; meta != nil {
		fmt.Fprintln(w, output.Section("Repository", width))
		fmt.Fprintln(w, output.KeyValue("Name", meta.FullName))
		fmt.Fprintln(w, output.KeyValue("Description", meta.Description))
		fmt.Fprintln(w, output.KeyValue("Language", meta.Language))
		fmt.Fprintln(w, output.KeyValue("Stars / Forks", fmt.Sprintf("%d / %d", meta.Stars, meta.Forks)))
		fmt.Fprintln(w, output.KeyValue("Open issues", strconv.Itoa(meta.OpenIssues)))
	}

	m := r.CodeMetrics
	fmt.Fprintln(w, output.Section("Code Metrics", width))
	fmt.Fprintln(w, output.KeyValue("Files", fmt.Sprintf("%d (%d code)", m.TotalFiles, m.CodeFiles)))
	fmt.Fprintln(w, output.KeyValue("Lines", fmt.Sprintf("%d total, %d code, %d comment, %d blank", m.TotalLines, m.CodeLines, m.CommentLines, m.BlankLines)))
	fmt.Fprintln(w, output.KeyValue("Primary language", orNone(m.PrimaryLanguage)))
	fmt.Fprintln(w, output.KeyValue("Size", m.Complexity))
	if len(m.Languages) > 0 {
		fmt.Fprintln(w)
		tbl := output.NewTable("Language", "Files").AlignRight(1)
		for _, l := range m.Languages {
			tbl.AddRow(l.Name, strconv.Itoa(l.Files))
		}
		tbl.Fprint(w)
	}

	s := r.ProjectStructure
	fmt.Fprintln(w, output.Section("Project Structure", width))
	fmt.Fprintln(w, output.KeyValue("Organization", output.ScoreBar(float64(s.OrganizationScore), 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Present", presence(map[string]bool{
		"README": s.HasReadme, "LICENSE": s.HasLicense, "CONTRIBUTING": s.HasContributing,
		"CHANGELOG": s.HasChangelog, "tests": s.HasTests, "docs": s.HasDocs, "CI/CD": s.HasCICD,
	})))

	b := r.BuildSystems
	fmt.Fprintln(w, output.Section("Build Systems", width))
	fmt.Fprintln(w, output.KeyValue("Detected", orNone(strings.Join(b.DetectedSystems, ", "))))
	fmt.Fprintln(w, output.KeyValue("Package managers", orNone(strings.Join(b.PackageManagers, ", "))))
	fmt.Fprintln(w, output.KeyValue("Dependencies", strconv.Itoa(b.DependenciesCount)))

	sec := r.Security
	fmt.Fprintln(w, output.Section("Security", width))
	fmt.Fprintln(w, output.KeyValue("Score", output.ScoreBar(sec.Score, 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Sensitive files", orNone(strings.Join(sec.SensitiveFiles, ", "))))
	if len(sec.PotentialIssues) > 0 {
		fmt.Fprintln(w)
		tbl := output.NewTable("Severity", "Finding", "File")
		for _, f := range sec.PotentialIssues[:min(len(sec.PotentialIssues), maxListed)] {
			tbl.AddRow(output.LevelStyle(f.Severity).Render(f.Severity), f.Category, f.File)
		}
		tbl.Fprint(w)
		if n := len(sec.PotentialIssues) - maxListed; n > 0 {
			fmt.Fprintf(w, " ... and %d more\n", n)
		}
	}

	if h := r.Health; h != nil {
		fmt.Fprintln(w, output.Section("Health", width))
		fmt.Fprintln(w, output.KeyValue("Overall", fmt.Sprintf("%s (%.1f/10)", h.OverallHealth, h.Overall)))
		fmt.Fprintln(w, output.KeyValue("Activity", output.ScoreBar(float64(h.ActivityScore), 10, 20)))
		fmt.Fprintln(w, output.KeyValue("Maintenance", output.ScoreBar(float64(h.MaintenanceScore), 10, 20)))
		fmt.Fprintln(w, output.KeyValue("Community", output.ScoreBar(float64(h.CommunityScore), 10, 20)))
	}

	q := r.CodeQuality
	fmt.Fprintln(w, output.Section("Code Quality", width))
	fmt.Fprintln(w, output.KeyValue("Overall", output.ScoreBar(q.OverallScore, 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Complexity", output.ScoreBar(q.ComplexityScore, 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Maintainability", output.ScoreBar(q.MaintainabilityScore, 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Technical debt", output.ScoreBar(q.TechnicalDebtScore, 10, 20)))
	fmt.Fprintln(w, output.KeyValue("Files analyzed", strconv.Itoa(q.FilesAnalyzed)))
	fmt.Fprintln(w, output.KeyValue("Avg / max complexity", fmt.Sprintf("%.1f / %d", q.Complexity.Average, q.Complexity.Max)))
	fmt.Fprintln(w, output.KeyValue("Maintainability index", fmt.Sprintf("%.1f", q.Maintainability.Index)))
	if len(q.CodeSmells) > 0 {
		fmt.Fprintln(w)
		tbl := output.NewTable("Smell", "Location", "Detail")
		for _, sm := range q.CodeSmells[:min(len(q.CodeSmells), maxListed)] {
			tbl.AddRow(sm.Kind.String(), sm.Location, sm.Description)
		}
		tbl.Fprint(w)
		if n := len(q.CodeSmells) - maxListed; n > 0 {
			fmt.Fprintf(w, " ... and %d more\n", n)
		}
	}

	fmt.Fprintln(w, output.Section("Recommendations", width))
	if len(suggestions) == 0 {
		fmt.Fprintln(w, " Nothing to suggest.")
	}
	for i, sg := range suggestions {
		fmt.Fprintf(w, " %d. %s %s\n", i+1, priorityLabel(sg.Priority), output.StyleBold.Render(sg.Title))
		fmt.Fprintf(w, "    %s\n", output.StyleMuted.Render(sg.Description))
	}
	fmt.Fprintln(w)
}

// presence lists the names whose value is true, in a fixed order.
func presence(items map[string]bool) string {
	order := []string{"README", "LICENSE", "CONTRIBUTING", "CHANGELOG", "tests", "docs", "CI/CD"}
	var have []string
	for _, name := range order {
		if items[name] {
			have = append(have, name)
		}
	}
	return orNone(strings.Join(have, ", "))
}

func orNone(s string) string {
	if s == "" {
		return output.StyleMuted.Render("none")
	}
	return s
}

func priorityLabel(p int) string {
	switch p {
	case suggest.PriorityCritical:
		return output.StyleError.Render("[critical]")
	case suggest.PriorityHigh:
		return output.StyleError.Render("[high]")
	case suggest.PriorityMedium:
		return output.StyleWarning.Render("[medium]")
	default:
		return output.StyleMuted.Render("[low]")
	}
}
