// database/stats_store.go
package database

import (
	"database/sql"
	"fmt"
)

// StoreTables lists every table the loader owns, in load order.
var StoreTables = []string{
	"sites",
	"filters",
	"ftir_sample_measurements",
	"ftir_blank_measurements",
	"hips_measurements",
	"functional_groups",
	"source_runs",
}

// IntegrityCounts summarizes referential health: rows whose filter_id
// points nowhere (orphans, always zero when the linker ran) and
// label-keyed rows the linker could not resolve.
type IntegrityCounts struct {
	OrphanSamples          int64 `json:"orphan_samples"`
	OrphanFunctionalGroups int64 `json:"orphan_functional_groups"`
	OrphanHips             int64 `json:"orphan_hips"`
	OrphanBlanks           int64 `json:"orphan_blanks"`
	OrphanFilters          int64 `json:"orphan_filters"`

	UnresolvedSamples          int64 `json:"unresolved_samples"`
	UnresolvedFunctionalGroups int64 `json:"unresolved_functional_groups"`
}

// SiteFilterCount pairs a site with its committed filter count.
type SiteFilterCount struct {
	SiteCode string `json:"site_code"`
	Filters  int64  `json:"filters"`
}

// TableCounts returns the row count of every owned table.
func TableCounts() (map[string]int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	counts := make(map[string]int64, len(StoreTables))
	for _, table := range StoreTables {
		var n int64
		if err := DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// CheckIntegrity counts orphaned and unresolved rows across the store.
func CheckIntegrity() (IntegrityCounts, error) {
	var c IntegrityCounts
	if DB == nil {
		return c, fmt.Errorf("database connection is not initialized")
	}

	checks := []struct {
		dst   *int64
		query string
	}{
		{&c.OrphanSamples, `SELECT COUNT(*) FROM ftir_sample_measurements m
			LEFT JOIN filters f ON m.filter_id = f.filter_id
			WHERE m.filter_id IS NOT NULL AND f.filter_id IS NULL`},
		{&c.OrphanFunctionalGroups, `SELECT COUNT(*) FROM functional_groups m
			LEFT JOIN filters f ON m.filter_id = f.filter_id
			WHERE m.filter_id IS NOT NULL AND f.filter_id IS NULL`},
		{&c.OrphanHips, `SELECT COUNT(*) FROM hips_measurements m
			LEFT JOIN filters f ON m.filter_id = f.filter_id
			WHERE m.filter_id IS NOT NULL AND f.filter_id IS NULL`},
		{&c.OrphanBlanks, `SELECT COUNT(*) FROM ftir_blank_measurements m
			LEFT JOIN filters f ON m.filter_id = f.filter_id
			WHERE f.filter_id IS NULL`},
		{&c.OrphanFilters, `SELECT COUNT(*) FROM filters fl
			LEFT JOIN sites s ON fl.site_code = s.site_code
			WHERE fl.site_code IS NOT NULL AND s.site_code IS NULL`},
		{&c.UnresolvedSamples, `SELECT COUNT(*) FROM ftir_sample_measurements
			WHERE filter_id IS NULL AND sample_id IS NOT NULL`},
		{&c.UnresolvedFunctionalGroups, `SELECT COUNT(*) FROM functional_groups
			WHERE filter_id IS NULL AND sample_id IS NOT NULL`},
	}

	for _, q := range checks {
		if err := DB.QueryRow(q.query).Scan(q.dst); err != nil {
			return c, fmt.Errorf("failed to run integrity query: %w", err)
		}
	}
	return c, nil
}

// TopSitesByFilterCount returns the busiest sites, most filters first.
func TopSitesByFilterCount(limit int) ([]SiteFilterCount, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := DB.Query(`
		SELECT s.site_code, COUNT(f.filter_id) AS n
		FROM sites s
		LEFT JOIN filters f ON f.site_code = s.site_code
		GROUP BY s.site_code
		ORDER BY n DESC, s.site_code
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites by filter count: %w", err)
	}
	defer rows.Close()

	var out []SiteFilterCount
	for rows.Next() {
		var sc SiteFilterCount
		if err := rows.Scan(&sc.SiteCode, &sc.Filters); err != nil {
			return nil, fmt.Errorf("failed to scan site filter count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site filter counts: %w", err)
	}
	return out, nil
}

// SampleDateRange returns the earliest and latest committed sample dates,
// or empty strings when no filter carries a date.
func SampleDateRange() (string, string, error) {
	if DB == nil {
		return "", "", fmt.Errorf("database connection is not initialized")
	}

	var min, max sql.NullString
	err := DB.QueryRow(`SELECT MIN(sample_date), MAX(sample_date) FROM filters
		WHERE sample_date IS NOT NULL`).Scan(&min, &max)
	if err != nil {
		return "", "", fmt.Errorf("failed to query sample date range: %w", err)
	}
	return min.String, max.String, nil
}
