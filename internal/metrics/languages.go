package metrics

import (
	"sort"
	"strings"
)

// Language names as reported in summaries.
const (
	Python     = "Python"
	JavaScript = "JavaScript"
	TypeScript = "TypeScript"
	Java       = "Java"
	CPP        = "C++"
	C          = "C"
	CSharp     = "C#"
	PHP        = "PHP"
	Ruby       = "Ruby"
	Go         = "Go"
	Rust       = "Rust"
	Swift      = "Swift"
	Kotlin     = "Kotlin"
	Scala      = "Scala"
	HTML       = "HTML"
	CSS        = "CSS"
	SCSS       = "SCSS"
	JSON       = "JSON"
	XML        = "XML"
	YAML       = "YAML"
	Markdown   = "Markdown"
	Text       = "Text"
	Shell      = "Shell"
	SQL        = "SQL"
	R          = "R"
	ObjectiveC = "Objective-C"

	// Unknown is the primary language of a tree with no recognized files.
	Unknown = "Unknown"
)

// Comment marker families.
var (
	hashMarkers   = []string{"#"}
	slashMarkers  = []string{"//"}
	sqlMarkers    = []string{"--"}
	markupMarkers = []string{"<!--"}
	cssMarkers    = []string{"/*"}
	phpMarkers    = []string{"//", "#"}
	scssMarkers   = []string{"//", "/*"}
)

// Language is one entry of the extension table.
type Language struct {
	Extension      string   `json:"extension" yaml:"extension"`
	Name           string   `json:"name" yaml:"name"`
	CommentMarkers []string `json:"comment_markers" yaml:"comment_markers"`
}

var languageTable = map[string]Language{
	".py":    {".py", Python, hashMarkers},
	".js":    {".js", JavaScript, slashMarkers},
	".ts":    {".ts", TypeScript, slashMarkers},
	".java":  {".java", Java, slashMarkers},
	".cpp":   {".cpp", CPP, slashMarkers},
	".c":     {".c", C, slashMarkers},
	".cs":    {".cs", CSharp, slashMarkers},
	".php":   {".php", PHP, phpMarkers},
	".rb":    {".rb", Ruby, hashMarkers},
	".go":    {".go", Go, slashMarkers},
	".rs":    {".rs", Rust, slashMarkers},
	".swift": {".swift", Swift, slashMarkers},
	".kt":    {".kt", Kotlin, slashMarkers},
	".scala": {".scala", Scala, slashMarkers},
	".html":  {".html", HTML, markupMarkers},
	".css":   {".css", CSS, cssMarkers},
	".scss":  {".scss", SCSS, scssMarkers},
	".json":  {".json", JSON, nil},
	".xml":   {".xml", XML, markupMarkers},
	".yaml":  {".yaml", YAML, hashMarkers},
	".yml":   {".yml", YAML, hashMarkers},
	".md":    {".md", Markdown, markupMarkers},
	".txt":   {".txt", Text, nil},
	".sh":    {".sh", Shell, hashMarkers},
	".sql":   {".sql", SQL, sqlMarkers},
	".r":     {".r", R, hashMarkers},
	".m":     {".m", ObjectiveC, slashMarkers},
}

// documentation languages never vote for the primary language.
var documentation = map[string]bool{
	Markdown: true,
	Text:     true,
	JSON:     true,
	XML:      true,
	YAML:     true,
}

// markup languages are ranked after every programming language.
var markup = map[string]bool{
	Markdown: true,
	Text:     true,
	JSON:     true,
	XML:      true,
	YAML:     true,
	HTML:     true,
	CSS:      true,
}

// LookupExtension returns the table entry for a lower-cased extension such as ".py".
func LookupExtension(ext string) (Language, bool) {
	lang, ok := languageTable[strings.ToLower(ext)]
	return lang, ok
}

// LanguageFor returns the language name for ext, or "" if unrecognized.
func LanguageFor(ext string) string {
	if lang, ok := LookupExtension(ext); ok {
		return lang.Name
	}
	return ""
}

// IsDocumentation reports whether lang is excluded from primary-language voting.
func IsDocumentation(lang string) bool {
	return documentation[lang]
}

// IsMarkup reports whether lang ranks below programming languages.
func IsMarkup(lang string) bool {
	return markup[lang]
}

// Languages returns the extension table sorted by extension.
func Languages() []Language {
	out := make([]Language, 0, len(languageTable))
	for _, lang := range languageTable {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
	return out
}

// RankLanguages orders names programming-first, then by count descending,
// then by name. counts supplies the count for each name.
func RankLanguages(names []string, counts func(string) int) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if IsMarkup(a) != IsMarkup(b) {
			return !IsMarkup(a)
		}
		if ca, cb := counts(a), counts(b); ca != cb {
			return ca > cb
		}
		return a < b
	})
}
