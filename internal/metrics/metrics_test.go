package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/repolens/internal/scanner"
)

func descriptorFor(t *testing.T, dir, name, content string) scanner.FileDescriptor {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return scanner.FileDescriptor{
		Path:    path,
		RelPath: name,
		Name:    name,
		Ext:     strings.ToLower(filepath.Ext(name)),
		Size:    int64(len(content)),
	}
}

// ---------------------------------------------------------------------------
// ClassifyLines / CountLines
// ---------------------------------------------------------------------------

func TestClassifyLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		markers []string
		total   int
		code    int
		comment int
		blank   int
	}{
		{"empty", "", hashMarkers, 0, 0, 0, 0},
		{"single newline", "\n", hashMarkers, 1, 0, 0, 1},
		{"no trailing newline", "a\nb", hashMarkers, 2, 2, 0, 0},
		{"trailing newline", "a\nb\n", hashMarkers, 2, 2, 0, 0},
		{"python", "# c\n\nx = 1\n    # indented\n", hashMarkers, 4, 1, 2, 1},
		{"crlf", "// c\r\n\r\nx();\r\n", slashMarkers, 3, 1, 1, 1},
		{"php both", "# a\n// b\necho 1;\n", phpMarkers, 3, 1, 2, 0},
		{"json has none", "{\n  \"#\": 1\n}\n", nil, 3, 3, 0, 0},
		{"sql", "-- q\nSELECT 1;\n", sqlMarkers, 2, 1, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			total, code, comment, blank := ClassifyLines(tc.content, tc.markers)
			assert.Equal(t, tc.total, total, "total")
			assert.Equal(t, tc.code, code, "code")
			assert.Equal(t, tc.comment, comment, "comment")
			assert.Equal(t, tc.blank, blank, "blank")
			assert.Equal(t, total, code+comment+blank)
		})
	}
}

func TestCountLines_InvalidUTF8(t *testing.T) {
	desc := descriptorFor(t, t.TempDir(), "bad.py", "x = 1\n\xff\xfe\n# c\n")
	rec := CountLines(desc)
	assert.False(t, rec.ReadFailed)
	assert.Equal(t, Python, rec.Language)
	assert.Equal(t, 3, rec.Total)
	assert.Equal(t, 1, rec.Blank, "a line of only invalid bytes becomes blank")
}

func TestCountLines_Unrecognized(t *testing.T) {
	desc := descriptorFor(t, t.TempDir(), "data.bin", "abc\n")
	rec := CountLines(desc)
	assert.False(t, rec.Recognized())
	assert.Zero(t, rec.Total)
}

func TestCountLines_ReadFailure(t *testing.T) {
	desc := scanner.FileDescriptor{Path: filepath.Join(t.TempDir(), "gone.go"), RelPath: "gone.go", Ext: ".go", Size: 12}
	rec := CountLines(desc)
	assert.True(t, rec.ReadFailed)
	assert.Equal(t, Go, rec.Language)
	assert.Zero(t, rec.Total)
}

// ---------------------------------------------------------------------------
// Aggregator
// ---------------------------------------------------------------------------

func TestAggregator_EmptyTree(t *testing.T) {
	s := NewAggregator().Summary()
	assert.Zero(t, s.TotalFiles)
	assert.Zero(t, s.CodeFiles)
	assert.Equal(t, ComplexityLow, s.Complexity)
	assert.Equal(t, Unknown, s.PrimaryLanguage)
	assert.Empty(t, s.LargestFiles)
}

func TestAggregator_PythonAndJavaScript(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator()
	agg.Merge(CountLines(descriptorFor(t, dir, "a.py", "print('hi')\n")))
	agg.Merge(CountLines(descriptorFor(t, dir, "b.js", "console.log('hi');\n")))

	s := agg.Summary()
	assert.Equal(t, 2, s.TotalFiles)
	assert.Equal(t, 2, s.TotalLines)
	assert.Equal(t, ComplexityLow, s.Complexity)
	assert.ElementsMatch(t, []LanguageCount{{Python, 1}, {JavaScript, 1}}, s.Languages)
	assert.Contains(t, []string{Python, JavaScript}, s.PrimaryLanguage)
}

func TestAggregator_FileCountDominatesClassification(t *testing.T) {
	agg := NewAggregator()
	for i := range 120 {
		code := 1
		if i < 80 {
			code = 2
		}
		agg.Merge(Record{Path: fmt.Sprintf("f%03d.go", i), Ext: ".go", Language: Go, Total: code, Code: code})
	}

	s := agg.Summary()
	assert.Equal(t, 120, s.CodeFiles)
	assert.Equal(t, 200, s.CodeLines)
	assert.Equal(t, ComplexityHigh, s.Complexity)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ComplexityLow, Classify(50, 5000))
	assert.Equal(t, ComplexityMedium, Classify(51, 0))
	assert.Equal(t, ComplexityMedium, Classify(0, 5001))
	assert.Equal(t, ComplexityHigh, Classify(101, 0))
	assert.Equal(t, ComplexityHigh, Classify(0, 10001))
}

func TestAggregator_LineSumIdentity(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator()
	agg.Merge(CountLines(descriptorFor(t, dir, "a.py", "# c\n\nx = 1\ny = 2\n")))
	agg.Merge(CountLines(descriptorFor(t, dir, "b.go", "package b\n\n// doc\nfunc F() {}\n")))
	agg.Merge(CountLines(descriptorFor(t, dir, "c.md", "# title\n\ntext\n")))

	s := agg.Summary()
	assert.Equal(t, s.TotalLines, s.CodeLines+s.CommentLines+s.BlankLines)
	assert.GreaterOrEqual(t, s.TotalFiles, s.CodeFiles)
}

func TestAggregator_ReadFailureCountsFileOnly(t *testing.T) {
	agg := NewAggregator()
	agg.Merge(Record{Path: "x.py", Ext: ".py", Size: 900, Language: Python, ReadFailed: true})

	s := agg.Summary()
	assert.Equal(t, 1, s.TotalFiles)
	assert.Zero(t, s.CodeFiles)
	assert.Zero(t, s.TotalLines)
	assert.Equal(t, map[string]int{".py": 1}, s.FileTypes)
	assert.Equal(t, []FileSize{{"x.py", 900}}, s.LargestFiles)
	assert.Empty(t, s.Languages)
}

func TestAggregator_FileTypes(t *testing.T) {
	agg := NewAggregator()
	agg.Merge(Record{Path: "Makefile"})
	agg.Merge(Record{Path: "LICENSE"})
	agg.Merge(Record{Path: "a.bin", Ext: ".bin"})

	s := agg.Summary()
	assert.Equal(t, map[string]int{"no_extension": 2, ".bin": 1}, s.FileTypes)
	assert.Zero(t, s.CodeFiles)
}

func TestAggregator_LargestFiles(t *testing.T) {
	agg := NewAggregator()
	sizes := []int64{10, 500, 30, 500, 7, 90, 1000, 2}
	for i, size := range sizes {
		agg.Merge(Record{Path: fmt.Sprintf("f%d", i), Size: size})
	}

	s := agg.Summary()
	require.Len(t, s.LargestFiles, LargestFilesLimit)
	assert.Equal(t, []FileSize{{"f6", 1000}, {"f1", 500}, {"f3", 500}, {"f5", 90}, {"f2", 30}}, s.LargestFiles)
}

func TestAggregator_PrimaryLanguageFallbacks(t *testing.T) {
	t.Run("code line votes", func(t *testing.T) {
		agg := NewAggregator()
		agg.Merge(Record{Path: "a.py", Ext: ".py", Language: Python, Total: 100, Code: 100})
		agg.Merge(Record{Path: "b.js", Ext: ".js", Language: JavaScript, Total: 10, Code: 10})
		agg.Merge(Record{Path: "c.js", Ext: ".js", Language: JavaScript, Total: 10, Code: 10})
		agg.Merge(Record{Path: "d.md", Ext: ".md", Language: Markdown, Total: 5000, Code: 5000})
		assert.Equal(t, Python, agg.Summary().PrimaryLanguage)
	})

	t.Run("non-documentation file count", func(t *testing.T) {
		agg := NewAggregator()
		agg.Merge(Record{Path: "a.md", Ext: ".md", Language: Markdown, Total: 3, Code: 3})
		agg.Merge(Record{Path: "b.md", Ext: ".md", Language: Markdown, Total: 3, Code: 3})
		agg.Merge(Record{Path: "c.sh", Ext: ".sh", Language: Shell, Total: 1, Comment: 1})
		assert.Equal(t, Shell, agg.Summary().PrimaryLanguage)
	})

	t.Run("any language", func(t *testing.T) {
		agg := NewAggregator()
		agg.Merge(Record{Path: "a.yml", Ext: ".yml", Language: YAML, Total: 1, Code: 1})
		agg.Merge(Record{Path: "b.yml", Ext: ".yml", Language: YAML, Total: 1, Code: 1})
		agg.Merge(Record{Path: "c.json", Ext: ".json", Language: JSON, Total: 1, Code: 1})
		assert.Equal(t, YAML, agg.Summary().PrimaryLanguage)
	})
}

func TestAggregator_LanguageRanking(t *testing.T) {
	agg := NewAggregator()
	add := func(lang, ext string, n int) {
		for i := range n {
			agg.Merge(Record{Path: fmt.Sprintf("%s%d%s", lang, i, ext), Ext: ext, Language: lang, Total: 1, Code: 1})
		}
	}
	add(Markdown, ".md", 40)
	add(HTML, ".html", 12)
	add(Go, ".go", 3)
	add(Rust, ".rs", 3)
	add(Python, ".py", 9)

	var got []string
	for _, lc := range agg.Summary().Languages {
		got = append(got, lc.Name)
	}
	assert.Equal(t, []string{Python, Go, Rust, Markdown, HTML}, got)
}

func TestLanguages_Table(t *testing.T) {
	table := Languages()
	assert.Len(t, table, 27)
	assert.Equal(t, YAML, LanguageFor(".yml"))
	assert.Equal(t, ObjectiveC, LanguageFor(".M"))
	assert.Equal(t, "", LanguageFor(".zig"))
	assert.True(t, IsDocumentation(JSON))
	assert.False(t, IsDocumentation(HTML))
	assert.True(t, IsMarkup(HTML))
}
