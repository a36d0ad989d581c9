package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileKind string

const (
	Monthly FileKind = "monthly"
	Yearly  FileKind = "yearly"
)

// ExportFile is one discovered export CSV. DateKey is YYYYMM for monthly
// files and YYYY for yearly ones.
type ExportFile struct {
	Name    string   `json:"filename"`
	Path    string   `json:"-"`
	Kind    FileKind `json:"type"`
	DateKey string   `json:"date_key"`
	Size    int64    `json:"size"`
}

const exportMarker = "Exports_HS10_by_Country"

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// ListFiles finds export CSVs in dir, most recent first. A missing dir yields
// no files.
func ListFiles(dir string) ([]ExportFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	var files []ExportFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") || !strings.Contains(name, exportMarker) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}

		f := ExportFile{Name: name, Path: filepath.Join(dir, name), Size: info.Size()}
		f.Kind, f.DateKey = classify(name)
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].DateKey != files[j].DateKey {
			return files[i].DateKey > files[j].DateKey
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// classify reads "Jan_2024_..." as monthly and "2023_..." as yearly.
func classify(name string) (FileKind, string) {
	parts := strings.Split(name, "_")
	if mm, ok := monthNumbers[parts[0]]; ok && len(parts) > 1 {
		return Monthly, parts[1] + mm
	}
	return Yearly, parts[0]
}
