// services/linker_test.go
package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahzs645/spartandb/config"
	"github.com/ahzs645/spartandb/database"
	"github.com/ahzs645/spartandb/models"
)

func openLinkerStore(t *testing.T) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "linker_test.db"),
	}
	require.NoError(t, database.InitDB(cfg))
	t.Cleanup(database.CloseDB)
	require.NoError(t, database.EnsureSchema())
}

func strp(v string) *string   { return &v }
func f64p(v float64) *float64 { return &v }

func TestLinkMeasurementsPrefersCommittedFilters(t *testing.T) {
	openLinkerStore(t)

	_, _, err := database.InsertFilters([]models.Filter{
		{FilterID: "CHTS-0042-2", SiteCode: strp("CHTS"), Barcode: strp("BC-1042")},
	})
	require.NoError(t, err)

	_, err = database.InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: strp("1B_CHTS_0042_2_R1"), OCFtir: f64p(4.2)},
	})
	require.NoError(t, err)

	report, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SamplesLinked)
	assert.Zero(t, report.FiltersCreated)
	assert.Zero(t, report.SitesCreated)
	assert.Zero(t, report.Unresolved)

	// The committed filter kept its attributes.
	f, err := database.GetFilter("CHTS-0042-2")
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NotNil(t, f.Barcode)
	assert.Equal(t, "BC-1042", *f.Barcode)
}

func TestLinkMeasurementsSharesOnePlaceholderAcrossTables(t *testing.T) {
	openLinkerStore(t)

	// The same label in both fact tables must yield one filter row.
	_, err := database.InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: strp("2_XSTN_0005_1_T"), OCFtir: f64p(2.0)},
	})
	require.NoError(t, err)
	_, err = database.InsertFunctionalGroups([]models.FunctionalGroupMeasurement{
		{SampleID: strp("2_XSTN_0005_1_T"), NaCO: f64p(0.1)},
	})
	require.NoError(t, err)

	report, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SamplesLinked)
	assert.Equal(t, 1, report.FunctionalGroupsLinked)
	assert.Equal(t, 1, report.FiltersCreated)
	assert.Equal(t, 1, report.SitesCreated)

	counts, err := database.TableCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["filters"])
	assert.EqualValues(t, 1, counts["sites"])
}

func TestLinkMeasurementsReusesCommittedSites(t *testing.T) {
	openLinkerStore(t)

	// The site is known from an explicit-identifier source; only the
	// filter needs synthesizing.
	_, err := database.InsertSites([]models.Site{
		{SiteCode: "XSTN", Latitude: f64p(45.5), Longitude: f64p(-73.6)},
	})
	require.NoError(t, err)
	_, err = database.InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: strp("3_XSTN_0007_1_N"), OCFtir: f64p(3.1)},
	})
	require.NoError(t, err)

	report, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SamplesLinked)
	assert.Equal(t, 1, report.FiltersCreated)
	assert.Zero(t, report.SitesCreated)

	// The committed site keeps its coordinates.
	var lat float64
	require.NoError(t, database.DB.QueryRow(
		"SELECT latitude FROM sites WHERE site_code = 'XSTN'").Scan(&lat))
	assert.InDelta(t, 45.5, lat, 1e-9)
}

func TestLinkMeasurementsWithNothingToDo(t *testing.T) {
	openLinkerStore(t)

	report, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Zero(t, report.SamplesLinked)
	assert.Zero(t, report.FunctionalGroupsLinked)
	assert.Zero(t, report.Unresolved)
}

func TestLinkMeasurementsIsRepeatable(t *testing.T) {
	openLinkerStore(t)

	_, err := database.InsertSampleMeasurements([]models.SampleMeasurement{
		{SampleID: strp("1B_CHTS_0042_2_R1"), OCFtir: f64p(4.2)},
		{SampleID: strp("no key here"), OCFtir: f64p(1.0)},
	})
	require.NoError(t, err)

	first, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SamplesLinked)
	assert.Equal(t, 1, first.Unresolved)

	// Linked rows stay linked; only the hopeless label is revisited.
	second, err := LinkMeasurements(true)
	require.NoError(t, err)
	assert.Zero(t, second.SamplesLinked)
	assert.Zero(t, second.FiltersCreated)
	assert.Equal(t, 1, second.Unresolved)
}
