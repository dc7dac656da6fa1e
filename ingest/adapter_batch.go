// ingest/adapter_batch.go
package ingest

import "github.com/ahzs645/spartandb/models"

// batchRow is one row of the batch-era FTIR exports. These files carry no
// explicit filter identifier, only the free-text sample label the linker
// later resolves; functional-group columns ride along in the same file.
type batchRow struct {
	Sample    string `csv:"sample"`
	FTIROC    string `csv:"FTIR_OC"`
	OCMDL     string `csv:"OC MDL"`
	FTIREC    string `csv:"FTIR_EC"`
	ECMDL     string `csv:"EC MDL"`
	Volume    string `csv:"volume"`
	ACOH      string `csv:"aCOH"`
	ACH       string `csv:"aCH"`
	NaCO      string `csv:"naCO"`
	COOH      string `csv:"COOH"`
	OM        string `csv:"OM"`
	Site      string `csv:"Site"`
	Latitude  string `csv:"Latitude"`
	Longitude string `csv:"Longitude"`
}

// adaptBatch maps a batch-era export. batchID is the batch number stamped
// on its measurements (the batch 2+3 file predates batch numbering, so
// its rows carry none). Label-only rows produce unlinked measurements;
// the linker resolves them after loading.
func adaptBatch(rows []batchRow, batchID *int64, n *Normalizer) models.CandidateSet {
	var out models.CandidateSet
	seenSites := make(map[string]struct{})

	for _, r := range rows {
		if code := n.Clean(r.Site); code != nil {
			if _, dup := seenSites[*code]; !dup {
				seenSites[*code] = struct{}{}
				out.Sites = append(out.Sites, models.Site{
					SiteCode:  *code,
					Latitude:  n.ToFloat(r.Latitude),
					Longitude: n.ToFloat(r.Longitude),
				})
			}
		}

		label := n.Clean(r.Sample)
		if label == nil {
			continue
		}

		oc := n.ToFloat(r.FTIROC)
		ec := n.ToFloat(r.FTIREC)
		if oc != nil || ec != nil {
			out.Samples = append(out.Samples, models.SampleMeasurement{
				FTIRBatchID: batchID,
				SampleID:    label,
				VolumeM3:    n.ToFloat(r.Volume),
				OCFtir:      oc,
				OCFtirMDL:   n.ToFloat(r.OCMDL),
				ECFtir:      ec,
				ECFtirMDL:   n.ToFloat(r.ECMDL),
			})
		}

		fg := models.FunctionalGroupMeasurement{
			SampleID: label,
			ACOH:     n.ToFloat(r.ACOH),
			ACH:      n.ToFloat(r.ACH),
			NaCO:     n.ToFloat(r.NaCO),
			COOH:     n.ToFloat(r.COOH),
			OM:       n.ToFloat(r.OM),
		}
		if fg.ACOH != nil || fg.ACH != nil || fg.NaCO != nil || fg.COOH != nil || fg.OM != nil {
			out.FunctionalGroups = append(out.FunctionalGroups, fg)
		}
	}
	return out
}
