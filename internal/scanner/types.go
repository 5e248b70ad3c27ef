// Package scanner provides the repository file walk and the project structure probe.
package scanner

// FileDescriptor describes one file discovered by Walk. It is immutable once
// created and is shared read-only by every analysis worker.
type FileDescriptor struct {
	// Path is the absolute filesystem path to the file.
	Path string `json:"path"`

	// RelPath is the slash-separated path relative to the walk root.
	RelPath string `json:"rel_path"`

	// Name is the base name of the file.
	Name string `json:"name"`

	// Ext is the lower-cased extension including the dot, or "" if none.
	Ext string `json:"ext"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Tree is the result of a single walk over a repository.
type Tree struct {
	// Root is the absolute path that was walked.
	Root string `json:"root"`

	// Files holds every non-hidden file under non-hidden directories.
	Files []FileDescriptor `json:"files"`

	// Hidden holds hidden files found directly inside visited directories.
	// Hidden directories are never descended into, so nothing below them appears here.
	Hidden []FileDescriptor `json:"hidden"`
}

// Structure is the outcome of ProbeStructure.
type Structure struct {
	HasReadme          bool     `json:"has_readme" yaml:"has_readme"`
	HasLicense         bool     `json:"has_license" yaml:"has_license"`
	HasContributing    bool     `json:"has_contributing" yaml:"has_contributing"`
	HasChangelog       bool     `json:"has_changelog" yaml:"has_changelog"`
	HasTests           bool     `json:"has_tests" yaml:"has_tests"`
	HasDocs            bool     `json:"has_docs" yaml:"has_docs"`
	HasCICD            bool     `json:"has_ci_cd" yaml:"has_ci_cd"`
	DirectoryStructure []string `json:"directory_structure" yaml:"directory_structure"`

	// OrganizationScore is the weighted presence score, capped at 10.
	OrganizationScore int `json:"organization_score" yaml:"organization_score"`
}
