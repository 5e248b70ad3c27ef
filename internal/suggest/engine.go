package suggest

import "github.com/blackwell-systems/repolens/internal/engine"

// MaxSuggestions caps the list returned by Run.
const MaxSuggestions = 10

// Engine runs all registered rules against a report and collects the
// resulting suggestions.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new suggest engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			MissingReadme,
			MissingLicense,
			MissingTests,
			MissingDocs,
			HighComplexity,
			SparseComments,
			SecurityAdvisories,
			WeakHealth,
		},
	}
}

// Run executes the rules in registration order and returns at most
// MaxSuggestions, in rule order. A nil report yields nothing.
func (e *Engine) Run(r *engine.Report) []Suggestion {
	all := []Suggestion{}
	if r == nil {
		return all
	}
	for _, rule := range e.rules {
		all = append(all, rule(r)...)
	}
	if len(all) > MaxSuggestions {
		all = all[:MaxSuggestions]
	}
	return all
}

// Titles returns just the suggestion titles, the flat form used in reports.
func Titles(suggestions []Suggestion) []string {
	titles := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	return titles
}
