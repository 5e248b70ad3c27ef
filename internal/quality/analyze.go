package quality

import (
	"context"
	"os"
	"strings"

	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/scanner"
)

// ineligible languages are markup, stylesheets or data and get no quality record.
var ineligible = map[string]bool{
	metrics.Markdown: true,
	metrics.Text:     true,
	metrics.JSON:     true,
	metrics.XML:      true,
	metrics.YAML:     true,
	metrics.HTML:     true,
	metrics.CSS:      true,
	metrics.SCSS:     true,
}

// commentPrefixes mark comment lines for every strategy.
var commentPrefixes = []string{"#", "//", "/*", "*", "<!--"}

// Eligible reports whether files of language get a quality record.
func Eligible(language string) bool {
	return language != "" && !ineligible[language]
}

// StrategyFor selects the analysis strategy for an eligible language.
func StrategyFor(language string) Strategy {
	switch language {
	case metrics.Python:
		return StructuredParse
	case metrics.JavaScript, metrics.TypeScript:
		return TokenPattern
	default:
		return GenericHeuristic
	}
}

// Analyze computes the quality record of one file. It never fails: unreadable
// files and Python that does not parse produce an all-zero record with
// ReadFailed or ParseFailed set.
func Analyze(ctx context.Context, desc scanner.FileDescriptor, language string) Record {
	strategy := StrategyFor(language)
	rec := Record{
		Path:       desc.RelPath,
		Language:   language,
		Strategy:   strategy,
		CodeSmells: []Smell{},
	}

	data, err := os.ReadFile(desc.Path)
	if err != nil {
		rec.ReadFailed = true
		return rec
	}
	content := strings.ToValidUTF8(string(data), "")
	lines := metrics.SplitLines(content)

	switch strategy {
	case StructuredParse:
		if !analyzePython(ctx, &rec, []byte(content)) {
			return Record{
				Path:        rec.Path,
				Language:    language,
				Strategy:    strategy,
				CodeSmells:  []Smell{},
				ParseFailed: true,
			}
		}
	case TokenPattern:
		analyzeTokens(&rec, lines)
	case GenericHeuristic:
		analyzeGeneric(&rec, lines)
	}

	rec.LinesOfCode, rec.CommentLines = countCodeAndComments(lines)
	return rec
}

// countCodeAndComments counts non-blank lines and comment-looking lines.
func countCodeAndComments(lines []string) (code, comments int) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		code++
		for _, p := range commentPrefixes {
			if strings.HasPrefix(trimmed, p) {
				comments++
				break
			}
		}
	}
	return code, comments
}
