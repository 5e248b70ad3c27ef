// Package quality estimates per-file complexity and code smells and reduces
// them into maintainability and technical-debt scores.
package quality

import "fmt"

// Strategy identifies how a file is analyzed.
type Strategy int

const (
	// StructuredParse walks a real syntax tree.
	StructuredParse Strategy = iota
	// TokenPattern matches per-line patterns and tracks brace depth.
	TokenPattern
	// GenericHeuristic counts lower-cased keyword tokens.
	GenericHeuristic
)

func (s Strategy) String() string {
	switch s {
	case StructuredParse:
		return "structured-parse"
	case TokenPattern:
		return "token-pattern"
	case GenericHeuristic:
		return "generic-heuristic"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// MarshalText renders the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SmellKind is the closed set of smells the analyzers report.
type SmellKind int

const (
	LongMethod SmellKind = iota
	HighComplexity
	LargeClass
	DeepNesting
)

func (k SmellKind) String() string {
	switch k {
	case LongMethod:
		return "Long Method"
	case HighComplexity:
		return "High Complexity"
	case LargeClass:
		return "Large Class"
	case DeepNesting:
		return "Deep Nesting"
	default:
		return fmt.Sprintf("SmellKind(%d)", int(k))
	}
}

// MarshalText renders the smell by its display name.
func (k SmellKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Smell is one code smell found in a file.
type Smell struct {
	Kind        SmellKind `json:"type" yaml:"type"`
	File        string    `json:"file" yaml:"file"`
	Line        int       `json:"line,omitempty" yaml:"line,omitempty"`
	Location    string    `json:"location" yaml:"location"`
	Description string    `json:"description" yaml:"description"`
}

// Record is the quality result for one file.
type Record struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Strategy Strategy `json:"strategy"`

	Complexity   int `json:"complexity"`
	MethodsCount int `json:"methods_count"`
	LinesOfCode  int `json:"lines_of_code"`
	CommentLines int `json:"comment_lines"`

	CodeSmells   []Smell `json:"code_smells"`
	LongMethods  int     `json:"long_methods"`
	LargeClasses int     `json:"large_classes"`
	DeepNesting  int     `json:"deep_nesting"`
	MaxNesting   int     `json:"max_nesting"`

	ReadFailed  bool `json:"read_failed,omitempty"`
	ParseFailed bool `json:"parse_failed,omitempty"`
}

// Thresholds shared by every strategy.
const (
	LongMethodLines      = 50
	HighComplexityLimit  = 10
	LargeClassLines      = 500
	DeepNestingThreshold = 4
)

// ComplexityMetrics summarizes cyclomatic complexity.
type ComplexityMetrics struct {
	Cyclomatic int     `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	Max        int     `json:"max_complexity" yaml:"max_complexity"`
	Average    float64 `json:"avg_complexity" yaml:"avg_complexity"`
}

// MaintainabilityMetrics holds the maintainability index and comment density.
type MaintainabilityMetrics struct {
	Index              float64 `json:"maintainability_index" yaml:"maintainability_index"`
	DocumentationRatio float64 `json:"documentation_ratio" yaml:"documentation_ratio"`
}

// DebtMetrics counts technical-debt indicators.
type DebtMetrics struct {
	LongMethods  int `json:"long_methods" yaml:"long_methods"`
	LargeClasses int `json:"large_classes" yaml:"large_classes"`
	DeepNesting  int `json:"deep_nesting" yaml:"deep_nesting"`
}

// LanguageQuality is the per-language bucket of a Summary.
type LanguageQuality struct {
	Name          string  `json:"name" yaml:"name"`
	Files         int     `json:"files" yaml:"files"`
	AvgComplexity float64 `json:"avg_complexity" yaml:"avg_complexity"`
	Issues        int     `json:"issues" yaml:"issues"`
	Lines         int     `json:"lines" yaml:"lines"`
}

// Summary is the finalized code-quality section of a report. Scores are in
// [0,10]; the maintainability index is in [0,100].
type Summary struct {
	OverallScore         float64 `json:"overall_score" yaml:"overall_score"`
	ComplexityScore      float64 `json:"complexity_score" yaml:"complexity_score"`
	MaintainabilityScore float64 `json:"maintainability_score" yaml:"maintainability_score"`
	TechnicalDebtScore   float64 `json:"technical_debt_score" yaml:"technical_debt_score"`

	FilesAnalyzed   int                    `json:"files_analyzed" yaml:"files_analyzed"`
	Complexity      ComplexityMetrics      `json:"complexity_metrics" yaml:"complexity_metrics"`
	Maintainability MaintainabilityMetrics `json:"maintainability_metrics" yaml:"maintainability_metrics"`
	TechnicalDebt   DebtMetrics            `json:"technical_debt" yaml:"technical_debt"`
	CodeSmells      []Smell                `json:"code_smells" yaml:"code_smells"`
	Languages       []LanguageQuality      `json:"languages" yaml:"languages"`
}
