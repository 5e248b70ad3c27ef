// Package suggest turns a finished analysis report into an ordered list of
// recommendations.
package suggest

import "github.com/blackwell-systems/repolens/internal/engine"

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Categories group suggestions by the report section that triggered them.
const (
	CategoryStructure = "structure"
	CategoryQuality   = "quality"
	CategorySecurity  = "security"
	CategoryHealth    = "health"
)

// Suggestion represents an actionable improvement recommendation.
type Suggestion struct {
	Category    string `json:"category" yaml:"category"`
	Priority    int    `json:"priority" yaml:"priority"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Rule is a function that examines the report and produces zero or more
// suggestions.
type Rule func(r *engine.Report) []Suggestion
