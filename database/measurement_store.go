// database/measurement_store.go
package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ahzs645/spartandb/models"
)

// UnlinkedRow is a label-keyed fact row still awaiting filter resolution.
type UnlinkedRow struct {
	MeasurementID int64
	SampleID      string
}

// FilterLink binds a resolved filter identifier to one fact row.
type FilterLink struct {
	MeasurementID int64
	FilterID      string
}

// InsertSampleMeasurements appends FTIR carbon facts. Facts are plain
// appends: every accepted source row lands, duplicates included, and the
// autoincrement key tells re-loaded rows apart.
func InsertSampleMeasurements(ms []models.SampleMeasurement) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(ms) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for sample measurements: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ftir_sample_measurements (
			filter_id, ftir_batch_id, sample_id, volume_m3,
			oc_ftir, oc_ftir_mdl, ec_ftir, ec_ftir_mdl, comments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sample measurement insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		_, err := stmt.Exec(
			m.FilterID, m.FTIRBatchID, m.SampleID, m.VolumeM3,
			m.OCFtir, m.OCFtirMDL, m.ECFtir, m.ECFtirMDL, m.Comments,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sample measurement (filter %v, sample %v): %w",
				deref(m.FilterID), deref(m.SampleID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for sample measurements: %w", err)
	}

	log.Debugf("Inserted %d sample measurements", len(ms))
	return len(ms), nil
}

// InsertBlankMeasurements loads blank facts. Blanks are keyed 1:1 by
// filter_id, so they load like a dimension: insert-or-ignore, first
// writer wins.
func InsertBlankMeasurements(ms []models.BlankMeasurement) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(ms) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for blank measurements: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertIgnore() + ` INTO ftir_blank_measurements (
			filter_id, ftir_batch_id, oc_ftir, ec_ftir, tau, comments
		) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare blank measurement insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, m := range ms {
		res, err := stmt.Exec(m.FilterID, m.FTIRBatchID, m.OCFtir, m.ECFtir, m.Tau, m.Comments)
		if err != nil {
			return 0, fmt.Errorf("failed to insert blank measurement '%s': %w", m.FilterID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for blank measurements: %w", err)
	}

	log.Debugf("Inserted %d of %d blank measurements", inserted, len(ms))
	return inserted, nil
}

// InsertHipsMeasurements appends optical-absorption facts.
func InsertHipsMeasurements(ms []models.HipsMeasurement) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(ms) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for hips measurements: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO hips_measurements (
			filter_id, analysis_date, analysis_time,
			t1, r1, intercept, slope, t, r, tau,
			deposit_area, volume, fabs, fabs_mdl, fabs_uncertainty,
			analysis_comments, ftir_batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare hips measurement insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		_, err := stmt.Exec(
			m.FilterID, m.AnalysisDate, m.AnalysisTime,
			m.T1, m.R1, m.Intercept, m.Slope, m.T, m.R, m.Tau,
			m.DepositArea, m.Volume, m.Fabs, m.FabsMDL, m.FabsUncertainty,
			m.AnalysisComments, m.FTIRBatchID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert hips measurement (filter %v): %w", deref(m.FilterID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for hips measurements: %w", err)
	}

	log.Debugf("Inserted %d hips measurements", len(ms))
	return len(ms), nil
}

// InsertFunctionalGroups appends functional-group facts.
func InsertFunctionalGroups(ms []models.FunctionalGroupMeasurement) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(ms) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for functional groups: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO functional_groups (
			filter_id, sample_id, acoh, ach, naco, cooh, om
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare functional group insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		_, err := stmt.Exec(m.FilterID, m.SampleID, m.ACOH, m.ACH, m.NaCO, m.COOH, m.OM)
		if err != nil {
			return 0, fmt.Errorf("failed to insert functional group row (sample %v): %w", deref(m.SampleID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for functional groups: %w", err)
	}

	log.Debugf("Inserted %d functional group rows", len(ms))
	return len(ms), nil
}

// UnlinkedSampleMeasurements returns sample facts that carry a label but
// no filter yet, inside the caller's transaction.
func UnlinkedSampleMeasurements(tx *sql.Tx) ([]UnlinkedRow, error) {
	return unlinkedRows(tx, "ftir_sample_measurements")
}

// UnlinkedFunctionalGroups returns functional-group facts that carry a
// label but no filter yet, inside the caller's transaction.
func UnlinkedFunctionalGroups(tx *sql.Tx) ([]UnlinkedRow, error) {
	return unlinkedRows(tx, "functional_groups")
}

func unlinkedRows(tx *sql.Tx, table string) ([]UnlinkedRow, error) {
	rows, err := tx.Query(fmt.Sprintf(`
		SELECT measurement_id, sample_id FROM %s
		WHERE filter_id IS NULL AND sample_id IS NOT NULL`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked rows from %s: %w", table, err)
	}
	defer rows.Close()

	var out []UnlinkedRow
	for rows.Next() {
		var r UnlinkedRow
		if err := rows.Scan(&r.MeasurementID, &r.SampleID); err != nil {
			return nil, fmt.Errorf("failed to scan unlinked row from %s: %w", table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlinked rows from %s: %w", table, err)
	}
	return out, nil
}

// LinkSampleMeasurements backfills filter_id on sample facts by primary
// key, inside the caller's transaction.
func LinkSampleMeasurements(tx *sql.Tx, links []FilterLink) error {
	return applyLinks(tx, "ftir_sample_measurements", links)
}

// LinkFunctionalGroups backfills filter_id on functional-group facts by
// primary key, inside the caller's transaction.
func LinkFunctionalGroups(tx *sql.Tx, links []FilterLink) error {
	return applyLinks(tx, "functional_groups", links)
}

func applyLinks(tx *sql.Tx, table string, links []FilterLink) error {
	if len(links) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"UPDATE %s SET filter_id = ? WHERE measurement_id = ?", table))
	if err != nil {
		return fmt.Errorf("failed to prepare link update for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, l := range links {
		if _, err := stmt.Exec(l.FilterID, l.MeasurementID); err != nil {
			return fmt.Errorf("failed to link row %d in %s to filter '%s': %w",
				l.MeasurementID, table, l.FilterID, err)
		}
	}
	return nil
}

// deref renders a nullable string for error messages.
func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
