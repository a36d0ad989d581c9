package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viktsys/woolauction/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultBatchSize   = 1000
	DefaultWorkerCount = 4
)

// Processor writes loaded export rows to postgres and rebuilds the monthly
// rollup.
type Processor struct {
	db        *gorm.DB
	loader    *Loader
	log       *zap.Logger
	batchSize int
	workers   int

	persistedRows int64
}

func NewProcessor(db *gorm.DB, loader *Loader, batchSize, workers int, log *zap.Logger) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &Processor{db: db, loader: loader, log: log, batchSize: batchSize, workers: workers}
}

// ErrFilesSkipped reports that some requested files could not be loaded.
// Rows stored earlier from those files are left untouched.
var ErrFilesSkipped = errors.New("export files skipped")

// IngestFiles loads names (every discovered file when empty), replaces the
// rows previously stored from each file that loaded, and rebuilds the
// monthly rollup.
func (p *Processor) IngestFiles(ctx context.Context, names []string, opts Options) (int64, error) {
	startTime := time.Now()

	if len(names) == 0 {
		files, err := p.loader.Files()
		if err != nil {
			return 0, err
		}
		if len(files) == 0 {
			return 0, fmt.Errorf("no export files found")
		}
		for _, f := range files {
			names = append(names, f.Name)
		}
	}
	p.log.Info("Loading export files", zap.Int("files", len(names)), zap.Int("file_workers", p.loader.workers))

	loaded, failed, err := p.loader.LoadFiles(ctx, names, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to load export files: %w", err)
	}
	if len(loaded) == 0 {
		return 0, fmt.Errorf("%w: none of %s could be loaded", ErrFilesSkipped, strings.Join(failed, ", "))
	}
	p.log.Info("Export files parsed",
		zap.Int("loaded", len(loaded)),
		zap.Int("failed", len(failed)),
		zap.Duration("took", time.Since(startTime)),
	)

	n, err := p.Persist(ctx, loaded)
	if err != nil {
		return n, err
	}

	aggStart := time.Now()
	if err := p.AggregateMonthly(ctx); err != nil {
		return n, fmt.Errorf("failed to aggregate monthly exports: %w", err)
	}
	p.log.Info("Monthly aggregation completed", zap.Duration("took", time.Since(aggStart)))

	p.log.Info("Export ingestion completed", zap.Int64("rows", n), zap.Duration("took", time.Since(startTime)))
	if len(failed) > 0 {
		return n, fmt.Errorf("%w: %s", ErrFilesSkipped, strings.Join(failed, ", "))
	}
	return n, nil
}

// batches splits rows into consecutive chunks of at most size.
func batches(rows []models.TradeExport, size int) [][]models.TradeExport {
	var out [][]models.TradeExport
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}

// Persist stores files using a pool of workers. Each file replaces its
// previous rows in one transaction; the first failure cancels the rest.
func (p *Processor) Persist(ctx context.Context, files []FileRows) (int64, error) {
	atomic.StoreInt64(&p.persistedRows, 0)
	if len(files) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fileChan := make(chan FileRows, p.workers)
	errorChan := make(chan error, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, fileChan, errorChan, &wg)
	}

	go func() {
		defer close(fileChan)
		for _, f := range files {
			select {
			case fileChan <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(errorChan)
	}()

	for err := range errorChan {
		if err != nil {
			cancel()
			return atomic.LoadInt64(&p.persistedRows), fmt.Errorf("worker error: %w", err)
		}
	}
	return atomic.LoadInt64(&p.persistedRows), ctx.Err()
}

func (p *Processor) worker(ctx context.Context, fileChan <-chan FileRows, errorChan chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case f, ok := <-fileChan:
			if !ok {
				return
			}
			if err := p.replaceFile(ctx, f); err != nil {
				errorChan <- fmt.Errorf("%s: %w", f.Name, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// replaceFile deletes the rows stored from f.Name and inserts f.Rows in
// batches, all in one transaction.
func (p *Processor) replaceFile(ctx context.Context, f FileRows) error {
	now := time.Now()
	for i := range f.Rows {
		f.Rows[i].CreatedAt = now
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_file = ?", f.Name).Delete(&models.TradeExport{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous rows: %w", err)
		}
		for _, batch := range batches(f.Rows, p.batchSize) {
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	atomic.AddInt64(&p.persistedRows, int64(len(f.Rows)))
	return nil
}

// AggregateMonthly rebuilds export_monthly_aggregates from trade_exports.
func (p *Processor) AggregateMonthly(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM export_monthly_aggregates").Error; err != nil {
			return fmt.Errorf("failed to clear monthly aggregates: %w", err)
		}
		return tx.Exec(`
			INSERT INTO export_monthly_aggregates (month, wool_category, total_export_fob, total_export_qty, created_at)
			SELECT
				month,
				wool_category,
				SUM(total_export_fob) AS total_export_fob,
				SUM(total_export_qty) AS total_export_qty,
				NOW() AS created_at
			FROM trade_exports
			GROUP BY month, wool_category
			ORDER BY month, wool_category
		`).Error
	})
}
