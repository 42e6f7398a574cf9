package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	// InboxDir holds bank exports waiting to be imported.
	InboxDir = "import"
	// ProcessedDir receives files after a successful import.
	ProcessedDir = "import/processed"
)

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files in <root>/import/, sorted by name.
// A missing directory yields no files.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, InboxDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// MarkProcessed moves name from import/ to import/processed/ and returns
// the new path. An existing file of the same name is kept; the moved file
// gets a numeric suffix instead.
func MarkProcessed(root, name string) (string, error) {
	src := filepath.Join(root, InboxDir, name)
	dstDir := filepath.Join(root, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dst = filepath.Join(dstDir, stem+"-"+strconv.Itoa(n)+ext)
	}

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return dst, nil
}
