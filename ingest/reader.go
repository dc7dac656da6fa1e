// ingest/reader.go
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/ahzs645/spartandb/models"
	"github.com/ahzs645/spartandb/utils"
)

// recordReader is the record-at-a-time shape csvutil decodes from; both
// *csv.Reader and the XLSX adapter satisfy it.
type recordReader interface {
	Read() ([]string, error)
}

// sliceRecords adapts in-memory rows (an XLSX sheet) to recordReader.
type sliceRecords struct {
	rows [][]string
	i    int
}

func (s *sliceRecords) Read() ([]string, error) {
	if s.i >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.i]
	s.i++
	return r, nil
}

// paddedRecords normalizes every record to the header width: exporters pad
// or truncate rows inconsistently (excelize additionally drops trailing
// empty cells), and a ragged record should degrade to empty cells, not
// fail the batch.
type paddedRecords struct {
	src   recordReader
	width int
}

func (p *paddedRecords) Read() ([]string, error) {
	rec, err := p.src.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) == p.width {
		return rec, nil
	}
	out := make([]string, p.width)
	copy(out, rec)
	return out, nil
}

// openRecords opens a source file and returns its cleaned header, a reader
// over the remaining records, and a close function. CSV and XLSX (first
// sheet) are dispatched on extension.
func openRecords(path string) (header []string, records recordReader, closeFn func() error, err error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open source file: %w", err)
		}
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		first, err := r.Read()
		if err != nil {
			f.Close()
			if err == io.EOF {
				return nil, nil, nil, fmt.Errorf("source file %s is empty", path)
			}
			return nil, nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
		return utils.CleanHeaders(first), r, f.Close, nil

	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, nil, nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			f.Close()
			return nil, nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
		}
		if len(rows) == 0 {
			f.Close()
			return nil, nil, nil, fmt.Errorf("source file %s is empty", path)
		}
		return utils.CleanHeaders(rows[0]), &sliceRecords{rows: rows[1:]}, f.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported source file type %q (want .csv or .xlsx)", ext)
	}
}

// decodeSource decodes every data row of the file at path into dst (a
// pointer to a slice of csv-tagged row structs), after validating the
// header against the source's column contract.
func decodeSource(source, path string, dst interface{}) error {
	contract, ok := sourceContracts[source]
	if !ok {
		return fmt.Errorf("unknown source %q", source)
	}

	header, records, closeFn, err := openRecords(path)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := contract.check(header); err != nil {
		return err
	}

	dec, err := csvutil.NewDecoder(&paddedRecords{src: records, width: len(header)}, header...)
	if err != nil {
		return fmt.Errorf("failed to create decoder for %s: %w", source, err)
	}
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode %s rows: %w", source, err)
	}
	return nil
}

// ReadSource reads and adapts one source file into candidate records.
// The returned count is the number of data rows read (before the drop
// predicates).
func ReadSource(source, path string, n *Normalizer) (models.CandidateSet, int, error) {
	switch source {
	case SourceSample:
		var rows []combinedRow
		if err := decodeSource(source, path, &rows); err != nil {
			return models.CandidateSet{}, 0, err
		}
		return adaptSample(rows, n), len(rows), nil
	case SourceBlank:
		var rows []combinedRow
		if err := decodeSource(source, path, &rows); err != nil {
			return models.CandidateSet{}, 0, err
		}
		return adaptBlank(rows, n), len(rows), nil
	case SourceEtad:
		var rows []etadRow
		if err := decodeSource(source, path, &rows); err != nil {
			return models.CandidateSet{}, 0, err
		}
		return adaptEtad(rows, n), len(rows), nil
	case SourceBatch23:
		var rows []batchRow
		if err := decodeSource(source, path, &rows); err != nil {
			return models.CandidateSet{}, 0, err
		}
		return adaptBatch(rows, nil, n), len(rows), nil
	case SourceBatch4:
		var rows []batchRow
		if err := decodeSource(source, path, &rows); err != nil {
			return models.CandidateSet{}, 0, err
		}
		batchID := int64(4)
		return adaptBatch(rows, &batchID, n), len(rows), nil
	}
	return models.CandidateSet{}, 0, fmt.Errorf("unknown source %q", source)
}
