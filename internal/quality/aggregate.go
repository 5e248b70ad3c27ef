package quality

import (
	"math"
	"sort"

	"github.com/blackwell-systems/repolens/internal/metrics"
)

type languageBucket struct {
	files      int
	complexity int
	issues     int
	lines      int
}

// Aggregator reduces quality records. It is not safe for concurrent use;
// callers serialize Merge calls.
type Aggregator struct {
	files         int
	complexity    int
	methods       int
	maxComplexity int
	linesOfCode   int
	commentLines  int
	longMethods   int
	largeClasses  int
	deepNesting   int
	smells        []Smell
	languages     map[string]*languageBucket
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{languages: make(map[string]*languageBucket)}
}

// Merge folds one whole record into the totals.
func (a *Aggregator) Merge(rec Record) {
	a.files++
	a.complexity += rec.Complexity
	a.methods += rec.MethodsCount
	a.maxComplexity = max(a.maxComplexity, rec.Complexity)
	a.linesOfCode += rec.LinesOfCode
	a.commentLines += rec.CommentLines
	a.longMethods += rec.LongMethods
	a.largeClasses += rec.LargeClasses
	a.deepNesting += rec.DeepNesting
	a.smells = append(a.smells, rec.CodeSmells...)

	b, ok := a.languages[rec.Language]
	if !ok {
		b = &languageBucket{}
		a.languages[rec.Language] = b
	}
	b.files++
	b.complexity += rec.Complexity
	b.issues += len(rec.CodeSmells)
	b.lines += rec.LinesOfCode
}

// Summary computes the scores over the final totals. It may be called more
// than once.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		FilesAnalyzed: a.files,
		Complexity: ComplexityMetrics{
			Cyclomatic: a.complexity,
			Max:        a.maxComplexity,
		},
		TechnicalDebt: DebtMetrics{
			LongMethods:  a.longMethods,
			LargeClasses: a.largeClasses,
			DeepNesting:  a.deepNesting,
		},
		CodeSmells: append([]Smell{}, a.smells...),
		Languages:  make([]LanguageQuality, 0, len(a.languages)),
	}

	if a.methods > 0 {
		s.Complexity.Average = float64(a.complexity) / float64(a.methods)
	}

	ratio := 0.0
	if a.linesOfCode > 0 {
		ratio = float64(a.commentLines) / float64(a.linesOfCode)
	}
	s.Maintainability.Index = MaintainabilityIndex(a.linesOfCode, s.Complexity.Average, ratio)
	s.Maintainability.DocumentationRatio = ratio * 100

	s.ComplexityScore = clamp(10-s.Complexity.Average/2, 0, 10)
	s.MaintainabilityScore = clamp(s.Maintainability.Index/10, 0, 10)
	s.TechnicalDebtScore = 10
	if a.files > 0 {
		issues := len(a.smells) + a.longMethods + a.largeClasses + a.deepNesting
		s.TechnicalDebtScore = clamp(10-float64(issues)/float64(a.files), 0, 10)
	}
	s.OverallScore = 0.3*s.ComplexityScore + 0.4*s.MaintainabilityScore + 0.3*s.TechnicalDebtScore

	sort.Slice(s.CodeSmells, func(i, j int) bool {
		x, y := s.CodeSmells[i], s.CodeSmells[j]
		if x.File != y.File {
			return x.File < y.File
		}
		if x.Line != y.Line {
			return x.Line < y.Line
		}
		return x.Kind < y.Kind
	})

	names := make([]string, 0, len(a.languages))
	for name := range a.languages {
		names = append(names, name)
	}
	metrics.RankLanguages(names, func(name string) int { return a.languages[name].files })
	for _, name := range names {
		b := a.languages[name]
		s.Languages = append(s.Languages, LanguageQuality{
			Name:          name,
			Files:         b.files,
			AvgComplexity: float64(b.complexity) / float64(b.files),
			Issues:        b.issues,
			Lines:         b.lines,
		})
	}
	return s
}

// MaintainabilityIndex applies the classic formula with a simplified volume
// term. The result is in [0,100] and is 0 when there are no lines of code.
func MaintainabilityIndex(linesOfCode int, avgComplexity, commentRatio float64) float64 {
	if linesOfCode <= 0 {
		return 0
	}
	l := float64(linesOfCode)
	volume := math.Max(0.5*l, 1)
	mi := 171 -
		5.2*math.Log(volume) -
		0.23*avgComplexity -
		16.2*math.Log(l) +
		50*math.Sin(math.Sqrt(2.4*commentRatio))
	return clamp(mi, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
