package utils

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindRigFiles recursively finds the rig documents in dir whose base name
// matches one of patterns. Hidden directories are skipped. The result is in
// lexical order.
func FindRigFiles(dir string, patterns []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if MatchesAny(d.Name(), patterns) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// MatchesAny reports whether name matches one of the glob patterns
func MatchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
