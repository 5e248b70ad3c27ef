package suggest

import (
	"fmt"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/health"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/security"
)

// Suggestion titles. They are stable strings consumers match on.
const (
	TitleReadme     = "Add a comprehensive README.md file"
	TitleLicense    = "Add a LICENSE file to clarify usage rights"
	TitleTests      = "Implement unit tests to improve code quality"
	TitleDocs       = "Add documentation for better maintainability"
	TitleRefactor   = "Consider refactoring to reduce code complexity"
	TitleComments   = "Add more code comments for better readability"
	TitleEngagement = "Increase development activity and community engagement"
)

// minCommentRatio is the comment-to-code ratio below which comments are
// suggested.
const minCommentRatio = 0.1

// MissingReadme suggests a README when none was found at the root.
func MissingReadme(r *engine.Report) []Suggestion {
	if r.ProjectStructure.HasReadme {
		return nil
	}
	return []Suggestion{{
		Category:    CategoryStructure,
		Priority:    PriorityHigh,
		Title:       TitleReadme,
		Description: "No README was found. Describe what the project does, how to install it and how to use it.",
	}}
}

// MissingLicense suggests a LICENSE file.
func MissingLicense(r *engine.Report) []Suggestion {
	if r.ProjectStructure.HasLicense {
		return nil
	}
	return []Suggestion{{
		Category:    CategoryStructure,
		Priority:    PriorityMedium,
		Title:       TitleLicense,
		Description: "Without a license the terms under which others may use the code are unclear.",
	}}
}

// MissingTests suggests tests when no test directory or test file exists.
func MissingTests(r *engine.Report) []Suggestion {
	if r.ProjectStructure.HasTests {
		return nil
	}
	return []Suggestion{{
		Category:    CategoryStructure,
		Priority:    PriorityHigh,
		Title:       TitleTests,
		Description: "No tests were detected. Start with the modules that change most often.",
	}}
}

// MissingDocs suggests documentation when neither a docs directory nor a
// wiki with content exists.
func MissingDocs(r *engine.Report) []Suggestion {
	if r.ProjectStructure.HasDocs {
		return nil
	}
	return []Suggestion{{
		Category:    CategoryStructure,
		Priority:    PriorityLow,
		Title:       TitleDocs,
		Description: "No docs directory or wiki content was found.",
	}}
}

// HighComplexity suggests refactoring when the codebase size class is High.
func HighComplexity(r *engine.Report) []Suggestion {
	if r.CodeMetrics.Complexity != metrics.ComplexityHigh {
		return nil
	}
	return []Suggestion{{
		Category: CategoryQuality,
		Priority: PriorityMedium,
		Title:    TitleRefactor,
		Description: fmt.Sprintf(
			"%d code files and %d lines of code put this repository in the High complexity class. "+
				"Average cyclomatic complexity is %.1f.",
			r.CodeMetrics.CodeFiles, r.CodeMetrics.CodeLines, r.CodeQuality.Complexity.Average,
		),
	}}
}

// SparseComments suggests comments when comment lines are under a tenth of
// code lines.
func SparseComments(r *engine.Report) []Suggestion {
	m := r.CodeMetrics
	if float64(m.CommentLines) >= float64(m.CodeLines)*minCommentRatio {
		return nil
	}
	return []Suggestion{{
		Category: CategoryQuality,
		Priority: PriorityLow,
		Title:    TitleComments,
		Description: fmt.Sprintf(
			"%d comment lines for %d lines of code.", m.CommentLines, m.CodeLines,
		),
	}}
}

// SecurityAdvisories forwards the scanner's advisories in their order.
func SecurityAdvisories(r *engine.Report) []Suggestion {
	var suggestions []Suggestion
	for _, advice := range r.Security.Recommendations {
		s := Suggestion{
			Category: CategorySecurity,
			Priority: PriorityHigh,
			Title:    advice,
		}
		switch advice {
		case security.AdviceSensitiveFiles:
			s.Priority = PriorityCritical
			s.Description = fmt.Sprintf("%d sensitive file(s) are committed.", len(r.Security.SensitiveFiles))
		case security.AdviceReviewCode:
			s.Description = fmt.Sprintf("%d potential issue(s) matched known vulnerable patterns.", len(r.Security.PotentialIssues))
		default:
			s.Priority = PriorityMedium
			s.Description = fmt.Sprintf("Security score is %.1f out of 10.", r.Security.Score)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// WeakHealth suggests more activity when the health label is Poor or Fair.
// Reports without metadata have no health section and never trigger it.
func WeakHealth(r *engine.Report) []Suggestion {
	if r.Health == nil {
		return nil
	}
	switch r.Health.OverallHealth {
	case health.LabelPoor, health.LabelFair:
	default:
		return nil
	}
	return []Suggestion{{
		Category: CategoryHealth,
		Priority: PriorityMedium,
		Title:    TitleEngagement,
		Description: fmt.Sprintf(
			"Overall health is %s (activity %d, maintenance %d, community %d).",
			r.Health.OverallHealth, r.Health.ActivityScore, r.Health.MaintenanceScore, r.Health.CommunityScore,
		),
	}}
}
