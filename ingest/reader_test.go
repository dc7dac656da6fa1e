// ingest/reader_test.go
package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDecodeSourceCSV(t *testing.T) {
	// BOM on the first header cell, padded headers, an extra instrument
	// column, and a ragged final row.
	body := "\uFEFFFilterId, OC_ftir ,EC_ftir,Site,InstrumentSerial\n" +
		"F1,3.2,1.1,XSTN,SN151\n" +
		"F2,2.0,0.9\n"
	path := writeFile(t, "sample.csv", body)

	var rows []combinedRow
	require.NoError(t, decodeSource(SourceSample, path, &rows))

	require.Len(t, rows, 2)
	assert.Equal(t, "F1", rows[0].FilterID)
	assert.Equal(t, "3.2", rows[0].OCFtir)
	assert.Equal(t, "XSTN", rows[0].Site)
	assert.Equal(t, "F2", rows[1].FilterID)
	// Ragged row: missing cells decode as empty.
	assert.Equal(t, "", rows[1].Site)
}

func TestDecodeSourceMissingRequiredColumn(t *testing.T) {
	path := writeFile(t, "sample.csv", "FilterId,OC_ftir\nF1,3.2\n")

	var rows []combinedRow
	err := decodeSource(SourceSample, path, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EC_ftir")
}

func TestDecodeSourceHeaderOnly(t *testing.T) {
	path := writeFile(t, "blank.csv", "FilterId,OC_ftir,EC_ftir\n")

	var rows []combinedRow
	require.NoError(t, decodeSource(SourceBlank, path, &rows))
	assert.Empty(t, rows)
}

func TestDecodeSourceEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	var rows []combinedRow
	err := decodeSource(SourceSample, path, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDecodeSourceUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "sample.parquet", "junk")

	var rows []combinedRow
	err := decodeSource(SourceSample, path, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestDecodeSourceXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"sample", "FTIR_OC", "OC MDL", "FTIR_EC", "EC MDL", "volume"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"x_ETAD_0042_2_y", 2.1, 0.1, 0.9, 0.05, 24.0}))
	// Trailing empty cells are dropped by the sheet reader; the decoder
	// must pad this row back to header width.
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"x_ETAD_0043_1_y", 1.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	var rows []batchRow
	require.NoError(t, decodeSource(SourceBatch4, path, &rows))

	require.Len(t, rows, 2)
	assert.Equal(t, "x_ETAD_0042_2_y", rows[0].Sample)
	assert.Equal(t, "2.1", rows[0].FTIROC)
	assert.Equal(t, "24", rows[0].Volume)
	assert.Equal(t, "1.5", rows[1].FTIROC)
	assert.Equal(t, "", rows[1].FTIREC)
}

func TestReadSourceBatch(t *testing.T) {
	body := "sample,FTIR_OC,OC MDL,FTIR_EC,EC MDL,volume,aCOH,aCH,naCO,COOH,OM\n" +
		"x_ETAD_0042_2_y,2.1,0.1,0.9,0.05,24.0,0.5,0.2,NA,0.1,3.4\n" +
		"x_ETAD_0099_9_y,NA,NA,NA,NA,NA,NA,NA,NA,NA,NA\n"
	path := writeFile(t, "batch4.csv", body)

	set, rowsRead, err := ReadSource(SourceBatch4, path, defaultNormalizer())
	require.NoError(t, err)

	assert.Equal(t, 2, rowsRead)
	require.Len(t, set.Samples, 1)
	require.NotNil(t, set.Samples[0].FTIRBatchID)
	assert.Equal(t, int64(4), *set.Samples[0].FTIRBatchID)
	assert.Len(t, set.FunctionalGroups, 1)
}

func TestReadSourceUnknownName(t *testing.T) {
	path := writeFile(t, "x.csv", "a\n1\n")
	_, _, err := ReadSource("mystery", path, defaultNormalizer())
	assert.Error(t, err)
}
