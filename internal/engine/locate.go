package engine

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File extensions recognized as desktop database files.
var sourceExtensions = map[string]bool{
	".accdb":   true,
	".mdb":     true,
	".sqlite":  true,
	".sqlite3": true,
	".db":      true,
}

// Locate resolves the source database file. A file path is returned as-is;
// for a directory, candidates are collected recursively and a file whose
// name contains the keyword is preferred over the first match found.
func Locate(source, keyword string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoDatabase, source)
	}
	if !info.IsDir() {
		return source, nil
	}

	var candidates []string
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", source, err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDatabase, source)
	}
	sort.Strings(candidates)

	if keyword != "" {
		for _, c := range candidates {
			base := strings.ToLower(filepath.Base(c))
			if strings.Contains(base, strings.ToLower(keyword)) {
				return c, nil
			}
		}
		log.Printf("Warning: no %q database found in %s, using first match", keyword, source)
	}
	return candidates[0], nil
}
