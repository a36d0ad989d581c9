package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `Month,Country,Harmonised System Code,Harmonised System Description,Unit Qty,Exports ($NZD fob),Exports Qty,Re-exports ($NZD fob),Re-exports Qty,Total Exports ($NZD fob),Total Exports Qty,Status
202401,China,5101110002,Greasy fine,KGM,"1,200",100,0,0,"1,200",100,Final
202401,India,5101110008,Greasy very coarse,KGM,800,90,50,5,850,95,Final
202402,China,5105210000,Wool tops,KGM,2000,150,0,0,2000,150,Provisional
202402,Australia,0201100000,Beef,KGM,9999,9,0,0,9999,9,Provisional
202402,Italy,5109900001,Yarn,KGM,n/a,1,0,0,n/a,1,Provisional
bad,China,5101110002,Greasy fine,KGM,1,1,0,0,1,1,Final
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}
