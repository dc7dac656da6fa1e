// database/site_store.go
package database

import (
	"database/sql"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ahzs645/spartandb/models"
)

// InsertSites loads site candidates with insert-or-ignore semantics: the
// first writer of a site_code wins and re-runs leave existing rows
// untouched. Returns the number of rows actually inserted.
func InsertSites(sites []models.Site) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(sites) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for sites: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertIgnore() + ` INTO sites (site_code, latitude, longitude, site_name)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare site insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, s := range sites {
		res, err := stmt.Exec(s.SiteCode, s.Latitude, s.Longitude, s.SiteName)
		if err != nil {
			return 0, fmt.Errorf("failed to insert site '%s': %w", s.SiteCode, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for sites: %w", err)
	}

	log.Debugf("Inserted %d of %d site candidates", inserted, len(sites))
	return inserted, nil
}

// ensureSitesExist creates a code-only placeholder row for every code not
// already present, inside the caller's transaction. Callers rely on it to
// satisfy the filters.site_code foreign key before filter rows land.
func ensureSitesExist(tx *sql.Tx, codes map[string]struct{}) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	created := 0
	for _, code := range sorted {
		var one int
		err := tx.QueryRow("SELECT 1 FROM sites WHERE site_code = ? LIMIT 1", code).Scan(&one)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return created, fmt.Errorf("failed to check site '%s': %w", code, err)
		}
		if _, err := tx.Exec("INSERT INTO sites (site_code) VALUES (?)", code); err != nil {
			return created, fmt.Errorf("failed to create placeholder site '%s': %w", code, err)
		}
		log.Debugf("Created placeholder site %s", code)
		created++
	}
	return created, nil
}

// SiteCodeSet returns every committed site code.
func SiteCodeSet() (map[string]struct{}, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query("SELECT site_code FROM sites")
	if err != nil {
		return nil, fmt.Errorf("failed to query site codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan site code: %w", err)
		}
		codes[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site codes: %w", err)
	}
	return codes, nil
}
