// ingest/sources.go
package ingest

import (
	"fmt"
	"strings"
)

// Source names, fixed. These double as the keys of the sources section in
// config.yaml and the source_name values recorded per run.
const (
	SourceSample  = "sample"
	SourceBlank   = "blank"
	SourceEtad    = "etad"
	SourceBatch23 = "batch23"
	SourceBatch4  = "batch4"
)

// SourceNames lists every configured source in pipeline order.
var SourceNames = []string{SourceSample, SourceBlank, SourceEtad, SourceBatch23, SourceBatch4}

// sourceContract is the explicit per-source column mapping check: the
// columns a file must carry before any of its rows are processed. The
// mapping itself lives in the csv tags of the row structs; the contract
// makes a missing expected column a startup error instead of a silent
// run of NULLs. Extra instrument columns are always tolerated.
type sourceContract struct {
	source   string
	required []string
}

var sourceContracts = map[string]sourceContract{
	SourceSample:  {SourceSample, []string{"FilterId", "OC_ftir", "EC_ftir"}},
	SourceBlank:   {SourceBlank, []string{"FilterId"}},
	SourceEtad:    {SourceEtad, []string{"FilterId", "Fabs"}},
	SourceBatch23: {SourceBatch23, []string{"sample", "FTIR_OC", "FTIR_EC"}},
	SourceBatch4:  {SourceBatch4, []string{"sample", "FTIR_OC", "FTIR_EC"}},
}

// check validates a cleaned header row against the contract.
func (c sourceContract) check(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range c.required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("source %s: missing required column(s) %s", c.source, strings.Join(missing, ", "))
	}
	return nil
}
