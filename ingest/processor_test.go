package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/viktsys/woolauction/models"
	"go.uber.org/zap"
)

func TestBatches(t *testing.T) {
	rows := make([]models.TradeExport, 7)
	got := batches(rows, 3)

	if len(got) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(got))
	}
	if len(got[0]) != 3 || len(got[1]) != 3 || len(got[2]) != 1 {
		t.Errorf("Unexpected batch sizes %d/%d/%d", len(got[0]), len(got[1]), len(got[2]))
	}
	if batches(nil, 3) != nil {
		t.Error("Expected no batches for no rows")
	}
}

func TestNewProcessorDefaults(t *testing.T) {
	p := NewProcessor(nil, nil, 0, -1, zap.NewNop())
	if p.batchSize != DefaultBatchSize || p.workers != DefaultWorkerCount {
		t.Errorf("Expected defaults %d/%d, got %d/%d", DefaultBatchSize, DefaultWorkerCount, p.batchSize, p.workers)
	}
}

func TestPersistNothing(t *testing.T) {
	p := NewProcessor(nil, nil, 10, 2, zap.NewNop())
	n, err := p.Persist(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("Expected 0 rows and no error, got %d (%v)", n, err)
	}
}

func TestIngestFilesKeepsRowsOfUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Mar_2024_Exports_HS10_by_Country.csv", "Month,Country\n202403,China\n")

	// A nil db fails the test with a panic if any delete or insert is attempted.
	loader := NewLoader(dir, 1, zap.NewNop())
	p := NewProcessor(nil, loader, 10, 2, zap.NewNop())

	n, err := p.IngestFiles(context.Background(), []string{"Mar_2024_Exports_HS10_by_Country.csv"}, Options{})
	if !errors.Is(err, ErrFilesSkipped) {
		t.Fatalf("Expected ErrFilesSkipped, got %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 rows stored, got %d", n)
	}
}
