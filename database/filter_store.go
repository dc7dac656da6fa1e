// database/filter_store.go
package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ahzs645/spartandb/models"
)

// InsertFilters loads filter candidates with insert-or-ignore semantics.
// Any referenced site that has no committed row yet gets a code-only
// placeholder first, so the site_code foreign key always resolves.
// Returns filters inserted and placeholder sites created.
func InsertFilters(filters []models.Filter) (int, int, error) {
	if DB == nil {
		return 0, 0, fmt.Errorf("database connection is not initialized")
	}
	if len(filters) == 0 {
		return 0, 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction for filters: %w", err)
	}
	defer tx.Rollback()

	referenced := make(map[string]struct{})
	for _, f := range filters {
		if f.SiteCode != nil && *f.SiteCode != "" {
			referenced[*f.SiteCode] = struct{}{}
		}
	}
	sitesCreated, err := ensureSitesExist(tx, referenced)
	if err != nil {
		return 0, 0, err
	}

	stmt, err := tx.Prepare(insertIgnore() + ` INTO filters (
			filter_id, barcode, site_code, sample_date, filter_type,
			lot_id, project_id, external_shipment_id, filter_comments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare filter insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range filters {
		res, err := stmt.Exec(
			f.FilterID, f.Barcode, f.SiteCode, f.SampleDate, f.FilterType,
			f.LotID, f.ProjectID, f.ExternalShipmentID, f.FilterComments,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert filter '%s': %w", f.FilterID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction for filters: %w", err)
	}

	log.Debugf("Inserted %d of %d filter candidates (%d placeholder sites)", inserted, len(filters), sitesCreated)
	return inserted, sitesCreated, nil
}

// EnsureFiltersExist creates placeholder filter rows inside the caller's
// transaction, stubbing any missing parent sites first. Placeholders
// carry only filter_id and site_code.
func EnsureFiltersExist(tx *sql.Tx, filters []models.Filter) (int, int, error) {
	if len(filters) == 0 {
		return 0, 0, nil
	}

	referenced := make(map[string]struct{})
	for _, f := range filters {
		if f.SiteCode != nil && *f.SiteCode != "" {
			referenced[*f.SiteCode] = struct{}{}
		}
	}
	sitesCreated, err := ensureSitesExist(tx, referenced)
	if err != nil {
		return 0, 0, err
	}

	stmt, err := tx.Prepare(insertIgnore() + ` INTO filters (filter_id, site_code) VALUES (?, ?)`)
	if err != nil {
		return 0, sitesCreated, fmt.Errorf("failed to prepare placeholder filter statement: %w", err)
	}
	defer stmt.Close()

	created := 0
	for _, f := range filters {
		res, err := stmt.Exec(f.FilterID, f.SiteCode)
		if err != nil {
			return created, sitesCreated, fmt.Errorf("failed to create placeholder filter '%s': %w", f.FilterID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Debugf("Created placeholder filter %s", f.FilterID)
			created++
		}
	}
	return created, sitesCreated, nil
}

// FilterIDSet returns every committed filter identifier.
func FilterIDSet() (map[string]struct{}, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query("SELECT filter_id FROM filters")
	if err != nil {
		return nil, fmt.Errorf("failed to query filter ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan filter id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filter ids: %w", err)
	}
	return ids, nil
}

// GetFilter returns one filter row, or nil when absent.
func GetFilter(filterID string) (*models.Filter, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var f models.Filter
	err := DB.QueryRow(`
		SELECT filter_id, barcode, site_code, sample_date, filter_type,
		       lot_id, project_id, external_shipment_id, filter_comments
		FROM filters WHERE filter_id = ?`, filterID,
	).Scan(
		&f.FilterID, &f.Barcode, &f.SiteCode, &f.SampleDate, &f.FilterType,
		&f.LotID, &f.ProjectID, &f.ExternalShipmentID, &f.FilterComments,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query filter '%s': %w", filterID, err)
	}
	return &f, nil
}
