package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExpandInputs turns a mix of files and directories into a file list.
// Files are kept as given. Directories contribute the files whose extension
// (case-insensitive) is in exts, walking subdirectories when recursive is set.
// Paths are made absolute, duplicates dropped, and first-seen order kept.
func ExpandInputs(inputs []string, exts []string, recursive bool) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", in, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			// let the converter report the missing file against this path
			add(abs)
			continue
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != abs && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if HasExt(path, exts...) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", abs, err)
		}
	}
	return out, nil
}

// HasExt reports whether path ends in one of exts, ignoring case.
func HasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
