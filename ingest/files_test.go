package ingest

import (
	"path/filepath"
	"testing"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2023_Exports_HS10_by_Country.csv", "x")
	writeFile(t, dir, "Jan_2024_Exports_HS10_by_Country.csv", "x")
	writeFile(t, dir, "Dec_2023_Exports_HS10_by_Country.csv", "x")
	writeFile(t, dir, "Imports_HS10_by_Country.csv", "x")
	writeFile(t, dir, "notes.txt", "x")

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 export files, got %d", len(files))
	}

	wantKeys := []string{"202401", "202312", "2023"}
	for i, want := range wantKeys {
		if files[i].DateKey != want {
			t.Errorf("Position %d: expected date key %s, got %s", i, want, files[i].DateKey)
		}
	}
	if files[0].Kind != Monthly || files[2].Kind != Yearly {
		t.Errorf("Unexpected kinds %s and %s", files[0].Kind, files[2].Kind)
	}
	if files[0].Path != filepath.Join(dir, files[0].Name) || files[0].Size != 1 {
		t.Errorf("Unexpected file info %+v", files[0])
	}
}

func TestListFilesMissingDir(t *testing.T) {
	files, err := ListFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Errorf("Expected no files and no error, got %v (%v)", files, err)
	}
}
