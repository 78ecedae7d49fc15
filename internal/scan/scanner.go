package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanRoot lists the chat exports (*.txt) below root, sorted by path.
// A missing root yields no files.
func ScanRoot(root string) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}
	files, err := scanExports(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat describes a single export file.
func Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return FileInfo{Path: abs, Mtime: info.ModTime().Unix(), Size: info.Size()}, nil
}

func scanExports(root string) ([]FileInfo, error) {
	var files []FileInfo
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		base := filepath.Base(path)
		if info.IsDir() {
			if path != root && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".txt") || strings.HasPrefix(base, ".") {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}
