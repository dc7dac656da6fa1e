// database/run_store.go
package database

import (
	"fmt"

	"github.com/ahzs645/spartandb/models"
)

// RecordSourceRun appends one provenance row. Provenance is append-only;
// the same file reloaded tomorrow gets its own row under a new run id.
func RecordSourceRun(run models.SourceRun) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO source_runs (
			run_id, source_name, source_file, file_sha256,
			rows_read, rows_loaded, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SourceName, run.SourceFile, run.FileSHA256,
		run.RowsRead, run.RowsLoaded, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record source run for '%s': %w", run.SourceName, err)
	}
	return nil
}

// ListSourceRuns returns provenance rows, newest run first.
func ListSourceRuns(limit int) ([]models.SourceRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT id, run_id, source_name, source_file, file_sha256,
		       rows_read, rows_loaded, started_at, finished_at
		FROM source_runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query source runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SourceRun
	for rows.Next() {
		var r models.SourceRun
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.SourceName, &r.SourceFile, &r.FileSHA256,
			&r.RowsRead, &r.RowsLoaded, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan source run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source run rows: %w", err)
	}
	return runs, nil
}
