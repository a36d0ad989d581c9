package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/viktsys/woolauction/metrics"
	"github.com/viktsys/woolauction/models"
	"go.uber.org/zap"
)

// Options narrows a load. Zero values leave a dimension unrestricted.
// Months are YYYYMM and both bounds are inclusive.
type Options struct {
	Categories []string `json:"wool_categories"`
	MonthFrom  int      `json:"month_from"`
	MonthTo    int      `json:"month_to"`
	Countries  []string `json:"countries"`
}

type admission struct {
	codes     map[string]bool
	countries map[string]bool
	from, to  int
}

func (o Options) compile() admission {
	a := admission{codes: codeSet(o.Categories), from: o.MonthFrom, to: o.MonthTo}
	if len(o.Countries) > 0 {
		a.countries = make(map[string]bool, len(o.Countries))
		for _, c := range o.Countries {
			a.countries[c] = true
		}
	}
	return a
}

func (a admission) admits(row *models.TradeExport) bool {
	if !a.codes[row.HS] {
		return false
	}
	if a.from > 0 && row.Month < a.from {
		return false
	}
	if a.to > 0 && row.Month > a.to {
		return false
	}
	return a.countries == nil || a.countries[row.Country]
}

// Loader reads export files from one directory.
type Loader struct {
	dir     string
	workers int
	log     *zap.Logger
}

func NewLoader(dir string, workers int, log *zap.Logger) *Loader {
	if workers <= 0 {
		workers = 1
	}
	return &Loader{dir: dir, workers: workers, log: log}
}

func (l *Loader) Files() ([]ExportFile, error) {
	return ListFiles(l.dir)
}

// FileRows holds the rows parsed from one export file.
type FileRows struct {
	Name string
	Rows []models.TradeExport
}

// Load parses names (all discovered files when empty) concurrently and
// returns their rows in the order the names were given. Files that are
// missing or fail to parse are logged and skipped.
func (l *Loader) Load(ctx context.Context, names []string, opts Options) ([]models.TradeExport, error) {
	loaded, _, err := l.LoadFiles(ctx, names, opts)
	if err != nil {
		return nil, err
	}
	var out []models.TradeExport
	for _, f := range loaded {
		out = append(out, f.Rows...)
	}
	return out, nil
}

// LoadFiles is Load keeping rows grouped per file. It also reports the names
// that could not be loaded.
func (l *Loader) LoadFiles(ctx context.Context, names []string, opts Options) ([]FileRows, []string, error) {
	if len(names) == 0 {
		files, err := l.Files()
		if err != nil {
			return nil, nil, err
		}
		for _, f := range files {
			names = append(names, f.Name)
		}
	}

	results := make([][]models.TradeExport, len(names))
	ok := make([]bool, len(names))
	semaphore := make(chan struct{}, l.workers)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			start := time.Now()
			rows, err := l.loadFile(name, opts)
			if err != nil {
				l.log.Warn("Skipping export file", zap.String("file", name), zap.Error(err))
				return
			}
			results[i], ok[i] = rows, true
			l.log.Debug("Loaded export file",
				zap.String("file", name),
				zap.Int("rows", len(rows)),
				zap.Duration("took", time.Since(start)),
			)
		}(i, name)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		loaded []FileRows
		failed []string
		total  int
	)
	for i, name := range names {
		if !ok[i] {
			failed = append(failed, name)
			continue
		}
		loaded = append(loaded, FileRows{Name: name, Rows: results[i]})
		total += len(results[i])
	}
	metrics.ExportRecordsLoaded.Add(float64(total))
	return loaded, failed, nil
}

var errBadName = errors.New("file name must not contain a path")

func (l *Loader) loadFile(name string, opts Options) ([]models.TradeExport, error) {
	if filepath.Base(name) != name || name == "." || name == ".." {
		return nil, errBadName
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseExportCSV(f, name, opts)
}
