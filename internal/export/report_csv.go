package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crm-ad-sync/internal/sync"
)

// Report CSV layout, one row per processed user.
// Keep header order EXACT: downstream ops tooling matches by position.
var reportHeader = []string{
	"SYSTEM_USER_ID",
	"DOMAIN_NAME",
	"OUTCOME",
	"DETAIL",
}

// WriteSyncReportCSV writes one run's per-user outcomes.
func WriteSyncReportCSV(w io.Writer, results []sync.Result) error {
	cw := csv.NewWriter(w)
	// the drop folder is consumed from Windows
	cw.UseCRLF = true

	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.UserID, r.DomainName, string(r.Outcome), r.Detail}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSyncReportFile is the file-path convenience used by cmd/syncad.
func WriteSyncReportFile(outPath string, results []sync.Result) error {
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir report dir: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("export: create report file: %w", err)
	}
	if err := WriteSyncReportCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("export: write report: %w", err)
	}
	return f.Close()
}
