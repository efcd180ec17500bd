package importer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileInfo describes a matched CSV file.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// ResolveDir joins dir onto base unless dir is absolute. An empty dir is base itself.
func ResolveDir(base, dir string) string {
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// Discover returns the files in dir matching <prefix>*.csv, sorted by name.
// It fails unless at least two files match.
func Discover(dir, prefix string) ([]FileInfo, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &DirError{Kind: ErrPathNotFound, Dir: dir}
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, &DirError{Kind: ErrPathNotFound, Dir: dir}
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Clean(dir), prefix+"*.csv"))
	if err != nil {
		return nil, fmt.Errorf("bad file prefix %q: %w", prefix, err)
	}

	// Glob output is already sorted.
	var files []FileInfo
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if fi.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Name: fi.Name(),
			Path: m,
			Size: fi.Size(),
		})
	}

	switch len(files) {
	case 0:
		return nil, &DirError{Kind: ErrNoMatchingFiles, Dir: dir}
	case 1:
		return nil, &DirError{Kind: ErrSingleFileOnly, Dir: dir}
	}
	return files, nil
}
