package metrics

import "sort"

// Complexity classes.
const (
	ComplexityHigh   = "High"
	ComplexityMedium = "Medium"
	ComplexityLow    = "Low"
)

// LargestFilesLimit is K for the top-K largest files list.
const LargestFilesLimit = 5

// noExtension is the file-type key for files without an extension.
const noExtension = "no_extension"

// LanguageCount is one entry of the ranked language histogram.
type LanguageCount struct {
	Name  string `json:"name" yaml:"name"`
	Files int    `json:"files" yaml:"files"`
}

// FileSize is one entry of the largest-files list.
type FileSize struct {
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
}

// Summary is the finalized line-metrics section of a report.
type Summary struct {
	TotalFiles   int `json:"total_files" yaml:"total_files"`
	CodeFiles    int `json:"code_files" yaml:"code_files"`
	TotalLines   int `json:"total_lines" yaml:"total_lines"`
	CodeLines    int `json:"code_lines" yaml:"code_lines"`
	CommentLines int `json:"comment_lines" yaml:"comment_lines"`
	BlankLines   int `json:"blank_lines" yaml:"blank_lines"`

	Languages       []LanguageCount `json:"languages" yaml:"languages"`
	FileTypes       map[string]int  `json:"file_types" yaml:"file_types"`
	LargestFiles    []FileSize      `json:"largest_files" yaml:"largest_files"`
	PrimaryLanguage string          `json:"primary_language" yaml:"primary_language"`
	Complexity      string          `json:"complexity" yaml:"complexity"`
}

// Aggregator reduces line-metrics records. It is not safe for concurrent
// use; callers serialize Merge calls.
type Aggregator struct {
	totalFiles   int
	codeFiles    int
	totalLines   int
	codeLines    int
	commentLines int
	blankLines   int

	languages map[string]int
	fileTypes map[string]int
	votes     map[string]int
	largest   []FileSize
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		languages: make(map[string]int),
		fileTypes: make(map[string]int),
		votes:     make(map[string]int),
	}
}

// Merge folds one whole record into the totals.
func (a *Aggregator) Merge(rec Record) {
	a.totalFiles++

	ext := rec.Ext
	if ext == "" {
		ext = noExtension
	}
	a.fileTypes[ext]++
	a.offerLargest(FileSize{Path: rec.Path, Size: rec.Size})

	if !rec.Recognized() || rec.ReadFailed {
		return
	}

	a.codeFiles++
	a.languages[rec.Language]++
	a.totalLines += rec.Total
	a.codeLines += rec.Code
	a.commentLines += rec.Comment
	a.blankLines += rec.Blank

	if !IsDocumentation(rec.Language) && rec.Code > 0 {
		a.votes[rec.Language] += rec.Code
	}
}

// offerLargest keeps a bounded list ordered by size descending, then path.
func (a *Aggregator) offerLargest(f FileSize) {
	i := sort.Search(len(a.largest), func(i int) bool {
		return largerFirst(f, a.largest[i])
	})
	if i >= LargestFilesLimit {
		return
	}
	a.largest = append(a.largest, FileSize{})
	copy(a.largest[i+1:], a.largest[i:])
	a.largest[i] = f
	if len(a.largest) > LargestFilesLimit {
		a.largest = a.largest[:LargestFilesLimit]
	}
}

func largerFirst(x, y FileSize) bool {
	if x.Size != y.Size {
		return x.Size > y.Size
	}
	return x.Path < y.Path
}

// Summary finalizes the aggregate. It may be called more than once.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		TotalFiles:   a.totalFiles,
		CodeFiles:    a.codeFiles,
		TotalLines:   a.totalLines,
		CodeLines:    a.codeLines,
		CommentLines: a.commentLines,
		BlankLines:   a.blankLines,
		FileTypes:    make(map[string]int, len(a.fileTypes)),
		LargestFiles: append([]FileSize{}, a.largest...),
		Languages:    make([]LanguageCount, 0, len(a.languages)),
	}
	for ext, n := range a.fileTypes {
		s.FileTypes[ext] = n
	}

	names := make([]string, 0, len(a.languages))
	for name := range a.languages {
		names = append(names, name)
	}
	RankLanguages(names, func(name string) int { return a.languages[name] })
	for _, name := range names {
		s.Languages = append(s.Languages, LanguageCount{Name: name, Files: a.languages[name]})
	}

	s.PrimaryLanguage = a.primaryLanguage()
	s.Complexity = Classify(a.codeFiles, a.codeLines)
	return s
}

// primaryLanguage applies the fallback chain: most code-line votes, then most
// files among non-documentation languages, then most files overall.
func (a *Aggregator) primaryLanguage() string {
	if name := argmax(a.votes, nil); name != "" {
		return name
	}
	if name := argmax(a.languages, func(n string) bool { return !IsDocumentation(n) }); name != "" {
		return name
	}
	if name := argmax(a.languages, nil); name != "" {
		return name
	}
	return Unknown
}

// argmax returns the key with the highest value among keys accepted by keep,
// breaking ties by name.
func argmax(m map[string]int, keep func(string) bool) string {
	best, bestN := "", 0
	for name, n := range m {
		if keep != nil && !keep(name) {
			continue
		}
		if best == "" || n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

// Classify maps final totals onto a complexity class.
func Classify(codeFiles, codeLines int) string {
	switch {
	case codeFiles > 100 || codeLines > 10000:
		return ComplexityHigh
	case codeFiles > 50 || codeLines > 5000:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
