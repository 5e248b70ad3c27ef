package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// WalkOptions tunes Walk.
type WalkOptions struct {
	// Exclude lists doublestar patterns matched against the slash-separated
	// relative path. Matching directories are pruned and matching files skipped.
	Exclude []string
	// Probe lists slash-separated paths below hidden directories that are
	// looked up directly and added to Tree.Hidden when they are files.
	Probe []string
}

// IsHidden reports whether a file or directory name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Walk traverses root once and returns a descriptor for every non-hidden file
// reachable through non-hidden directories. Unreadable entries are skipped;
// only a missing or non-directory root is an error.
func Walk(root string, opts WalkOptions) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", abs)
	}

	tree := &Tree{
		Root:   abs,
		Files:  []FileDescriptor{},
		Hidden: []FileDescriptor{},
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip whatever we can't read; the root itself was already checked.
			if d != nil && d.IsDir() && path != abs {
				return filepath.SkipDir
			}
			return nil
		}
		if path == abs {
			return nil
		}

		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if IsHidden(d.Name()) || excluded(opts.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded(opts.Exclude, rel) {
			return nil
		}

		desc, ok := describe(path, rel, d)
		if !ok {
			return nil
		}
		if IsHidden(d.Name()) {
			tree.Hidden = append(tree.Hidden, desc)
		} else {
			tree.Files = append(tree.Files, desc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", abs, err)
	}

	for _, rel := range opts.Probe {
		if desc, ok := probe(abs, rel, opts.Exclude); ok {
			tree.Hidden = append(tree.Hidden, desc)
		}
	}
	return tree, nil
}

// probe looks up one path that the walk could not reach because a directory
// on it is hidden. Paths the walk visits anyway are ignored.
func probe(root, rel string, exclude []string) (FileDescriptor, bool) {
	rel = strings.Trim(rel, "/")
	parts := strings.Split(rel, "/")
	if rel == "" || len(parts) < 2 || excluded(exclude, rel) {
		return FileDescriptor{}, false
	}
	if !slices.ContainsFunc(parts[:len(parts)-1], IsHidden) {
		return FileDescriptor{}, false
	}
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Lstat(path)
	if err != nil {
		return FileDescriptor{}, false
	}
	return describe(path, rel, fs.FileInfoToDirEntry(info))
}

// describe builds a descriptor for regular files and symlinks to regular
// files. Devices, sockets and dangling links are ignored.
func describe(path, rel string, d fs.DirEntry) (FileDescriptor, bool) {
	var info fs.FileInfo
	var err error
	if d.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = d.Info()
	}
	if err != nil || !info.Mode().IsRegular() {
		return FileDescriptor{}, false
	}

	return FileDescriptor{
		Path:    path,
		RelPath: rel,
		Name:    d.Name(),
		Ext:     strings.ToLower(filepath.Ext(d.Name())),
		Size:    info.Size(),
	}, true
}

// excluded reports whether rel matches any exclude pattern. Bad patterns never match.
func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}
