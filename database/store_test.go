// database/store_test.go
package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahzs645/spartandb/config"
	"github.com/ahzs645/spartandb/models"
)

func openTestStore(t *testing.T) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "spartan_test.db"),
	}
	require.NoError(t, InitDB(cfg))
	t.Cleanup(CloseDB)
	require.NoError(t, EnsureSchema())
}

func str(v string) *string   { return &v }
func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	openTestStore(t)
	require.NoError(t, EnsureSchema())

	counts, err := TableCounts()
	require.NoError(t, err)
	assert.Len(t, counts, len(StoreTables))
	for table, n := range counts {
		assert.Zerof(t, n, "expected empty table %s", table)
	}
}

func TestInsertSitesFirstWriterWins(t *testing.T) {
	openTestStore(t)

	first := []models.Site{
		{SiteCode: "CHTS", Latitude: f64(23.1), Longitude: f64(113.2)},
		{SiteCode: "ILHA"},
	}
	n, err := InsertSites(first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-offering CHTS with different coordinates must not overwrite.
	n, err = InsertSites([]models.Site{{SiteCode: "CHTS", Latitude: f64(99.9)}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var lat float64
	require.NoError(t, DB.QueryRow(
		"SELECT latitude FROM sites WHERE site_code = 'CHTS'").Scan(&lat))
	assert.InDelta(t, 23.1, lat, 1e-9)

	counts, err := TableCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["sites"])
}

func TestInsertFiltersStubsMissingSites(t *testing.T) {
	openTestStore(t)

	filters := []models.Filter{
		{FilterID: "5555-CHTS-0042-2", SiteCode: str("CHTS"), SampleDate: str("2023-02-13")},
		{FilterID: "5555-CHTS-0043-1", SiteCode: str("CHTS")},
		{FilterID: "9999-NOSI-0001-1"},
	}
	inserted, sitesCreated, err := InsertFilters(filters)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
	assert.Equal(t, 1, sitesCreated)

	codes, err := SiteCodeSet()
	require.NoError(t, err)
	assert.Contains(t, codes, "CHTS")

	var lat *float64
	require.NoError(t, DB.QueryRow(
		"SELECT latitude FROM sites WHERE site_code = 'CHTS'").Scan(&lat))
	assert.Nil(t, lat, "stubbed site should hold nothing but its code")

	f, err := GetFilter("5555-CHTS-0042-2")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "2023-02-13", *f.SampleDate)

	missing, err := GetFilter("no-such-filter")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertFiltersIsIdempotent(t *testing.T) {
	openTestStore(t)

	filters := []models.Filter{
		{FilterID: "5555-CHTS-0042-2", SiteCode: str("CHTS"), Barcode: str("B-1")},
	}
	inserted, _, err := InsertFilters(filters)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Second offer, different attributes: ignored, first writer wins.
	again := []models.Filter{
		{FilterID: "5555-CHTS-0042-2", SiteCode: str("CHTS"), Barcode: str("B-2")},
	}
	inserted, _, err = InsertFilters(again)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	f, err := GetFilter("5555-CHTS-0042-2")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "B-1", *f.Barcode)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	openTestStore(t)

	// A fact claiming a filter that was never committed must be rejected.
	_, err := InsertSampleMeasurements([]models.SampleMeasurement{
		{FilterID: str("5555-CHTS-0042-2"), OCFtir: f64(1.0)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert sample measurement")
}

func TestBlankMeasurementsAreKeyed(t *testing.T) {
	openTestStore(t)

	_, _, err := InsertFilters([]models.Filter{
		{FilterID: "5555-CHTS-0090-3", SiteCode: str("CHTS")},
	})
	require.NoError(t, err)

	blank := []models.BlankMeasurement{
		{FilterID: "5555-CHTS-0090-3", OCFtir: f64(0.12), Tau: f64(0.01)},
	}
	n, err := InsertBlankMeasurements(blank)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = InsertBlankMeasurements(blank)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	counts, err := TableCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["ftir_blank_measurements"])
}

func TestSampleMeasurementsAppend(t *testing.T) {
	openTestStore(t)

	_, _, err := InsertFilters([]models.Filter{
		{FilterID: "5555-CHTS-0042-2", SiteCode: str("CHTS")},
	})
	require.NoError(t, err)

	ms := []models.SampleMeasurement{
		{FilterID: str("5555-CHTS-0042-2"), OCFtir: f64(4.2), ECFtir: f64(1.1), FTIRBatchID: i64(4)},
	}
	n, err := InsertSampleMeasurements(ms)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Facts append; the same payload twice means two rows.
	n, err = InsertSampleMeasurements(ms)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := TableCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["ftir_sample_measurements"])
}

func TestLinkRoundTrip(t *testing.T) {
	openTestStore(t)

	// Label-keyed facts land with no filter.
	_, err := InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: str("1B_CHTS_0042_2_R1"), OCFtir: f64(4.2), FTIRBatchID: i64(4)},
	})
	require.NoError(t, err)
	_, err = InsertFunctionalGroups([]models.FunctionalGroupMeasurement{
		{SampleID: str("1B_CHTS_0042_2_R1"), ACOH: f64(0.3)},
	})
	require.NoError(t, err)

	tx, err := DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	unlinkedSamples, err := UnlinkedSampleMeasurements(tx)
	require.NoError(t, err)
	require.Len(t, unlinkedSamples, 1)
	assert.Equal(t, "1B_CHTS_0042_2_R1", unlinkedSamples[0].SampleID)

	unlinkedFGs, err := UnlinkedFunctionalGroups(tx)
	require.NoError(t, err)
	require.Len(t, unlinkedFGs, 1)

	created, sites, err := EnsureFiltersExist(tx, []models.Filter{
		{FilterID: "CHTS-0042-2", SiteCode: str("CHTS")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, sites)

	require.NoError(t, LinkSampleMeasurements(tx, []FilterLink{
		{MeasurementID: unlinkedSamples[0].MeasurementID, FilterID: "CHTS-0042-2"},
	}))
	require.NoError(t, LinkFunctionalGroups(tx, []FilterLink{
		{MeasurementID: unlinkedFGs[0].MeasurementID, FilterID: "CHTS-0042-2"},
	}))
	require.NoError(t, tx.Commit())

	integ, err := CheckIntegrity()
	require.NoError(t, err)
	assert.Zero(t, integ.UnresolvedSamples)
	assert.Zero(t, integ.UnresolvedFunctionalGroups)
	assert.Zero(t, integ.OrphanSamples)
	assert.Zero(t, integ.OrphanFunctionalGroups)
}

func TestCheckIntegrityCountsUnresolved(t *testing.T) {
	openTestStore(t)

	_, err := InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: str("garbled label"), OCFtir: f64(1.0)},
	})
	require.NoError(t, err)

	integ, err := CheckIntegrity()
	require.NoError(t, err)
	assert.EqualValues(t, 1, integ.UnresolvedSamples)
	assert.Zero(t, integ.OrphanSamples)
}

func TestRecordAndListSourceRuns(t *testing.T) {
	openTestStore(t)

	runs := []models.SourceRun{
		{RunID: "run-1", SourceName: "sample", SourceFile: "a.csv", FileSHA256: "aa", RowsRead: 10, RowsLoaded: 9, StartedAt: "2026-08-25 10:00:00", FinishedAt: "2026-08-25 10:00:01"},
		{RunID: "run-1", SourceName: "batch4", SourceFile: "b.xlsx", FileSHA256: "bb", RowsRead: 5, RowsLoaded: 5, StartedAt: "2026-08-25 10:00:01", FinishedAt: "2026-08-25 10:00:02"},
	}
	for _, r := range runs {
		require.NoError(t, RecordSourceRun(r))
	}

	got, err := ListSourceRuns(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest insert first.
	assert.Equal(t, "batch4", got[0].SourceName)
	assert.Equal(t, 5, got[0].RowsLoaded)
	assert.Equal(t, "sample", got[1].SourceName)
	assert.Equal(t, "2026-08-25 10:00:00", got[1].StartedAt)
}

func TestTopSitesAndDateRange(t *testing.T) {
	openTestStore(t)

	_, _, err := InsertFilters([]models.Filter{
		{FilterID: "F-1", SiteCode: str("CHTS"), SampleDate: str("2023-02-13")},
		{FilterID: "F-2", SiteCode: str("CHTS"), SampleDate: str("2023-03-01")},
		{FilterID: "F-3", SiteCode: str("ILHA"), SampleDate: str("2022-12-31")},
	})
	require.NoError(t, err)

	top, err := TopSitesByFilterCount(5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "CHTS", top[0].SiteCode)
	assert.EqualValues(t, 2, top[0].Filters)

	earliest, latest, err := SampleDateRange()
	require.NoError(t, err)
	assert.Equal(t, "2022-12-31", earliest)
	assert.Equal(t, "2023-03-01", latest)
}

func TestSampleDateRangeEmptyStore(t *testing.T) {
	openTestStore(t)

	earliest, latest, err := SampleDateRange()
	require.NoError(t, err)
	assert.Empty(t, earliest)
	assert.Empty(t, latest)
}
