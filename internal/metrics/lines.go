// Package metrics counts lines per file and reduces the per-file records into
// repository totals, language histograms and the primary language.
package metrics

import (
	"os"
	"strings"

	"github.com/blackwell-systems/repolens/internal/scanner"
)

// Record is the line-metrics result for one file.
type Record struct {
	Path     string `json:"path"`
	Ext      string `json:"ext"`
	Size     int64  `json:"size"`
	Language string `json:"language,omitempty"`

	Total   int `json:"total"`
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`

	// ReadFailed is set when a recognized file could not be read. Such a
	// record still counts as a file but contributes no lines.
	ReadFailed bool `json:"read_failed,omitempty"`
}

// Recognized reports whether the record's extension is in the language table.
func (r Record) Recognized() bool {
	return r.Language != ""
}

// CountLines classifies the lines of desc. Unrecognized extensions are not
// read at all. Invalid UTF-8 is dropped rather than treated as an error.
func CountLines(desc scanner.FileDescriptor) Record {
	rec := Record{
		Path: desc.RelPath,
		Ext:  desc.Ext,
		Size: desc.Size,
	}

	lang, ok := LookupExtension(desc.Ext)
	if !ok {
		return rec
	}
	rec.Language = lang.Name

	data, err := os.ReadFile(desc.Path)
	if err != nil {
		rec.ReadFailed = true
		return rec
	}

	rec.Total, rec.Code, rec.Comment, rec.Blank = ClassifyLines(string(data), lang.CommentMarkers)
	return rec
}

// ClassifyLines splits content into lines and counts each trimmed line as
// blank, comment (starts with one of markers) or code. A trailing newline
// does not produce an extra empty line. Block comments and markers inside
// string literals are not understood.
func ClassifyLines(content string, markers []string) (total, code, comment, blank int) {
	for _, line := range SplitLines(content) {
		total++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blank++
		case hasAnyPrefix(trimmed, markers):
			comment++
		default:
			code++
		}
	}
	return total, code, comment, blank
}

// SplitLines returns the lines of content after dropping invalid UTF-8.
func SplitLines(content string) []string {
	content = strings.ToValidUTF8(content, "")
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
