// ingest/adapter_sample.go
package ingest

import "github.com/ahzs645/spartandb/models"

// combinedRow is one row of the combined FTIR+HIPS laboratory export. The
// SAMPLE and BLANK files share this vocabulary; the blank file simply
// lacks the HIPS analyte columns, which decode as empty cells.
type combinedRow struct {
	FilterID           string `csv:"FilterId"`
	Barcode            string `csv:"Barcode"`
	Site               string `csv:"Site"`
	Latitude           string `csv:"Latitude"`
	Longitude          string `csv:"Longitude"`
	SampleDate         string `csv:"SampleDate"`
	FilterType         string `csv:"FilterType"`
	LotID              string `csv:"LotId"`
	ProjectID          string `csv:"ProjectId"`
	ExternalShipmentID string `csv:"ExternalShipmentId"`
	FilterComments     string `csv:"FilterComments"`
	FTIRBatchID        string `csv:"FTIRBatchId"`
	VolumeM3           string `csv:"Volume_m3"`
	OCFtir             string `csv:"OC_ftir"`
	OCFtirMDL          string `csv:"OC_ftir_MDL"`
	ECFtir             string `csv:"EC_ftir"`
	ECFtirMDL          string `csv:"EC_ftir_MDL"`
	Tau                string `csv:"tau"`
	HIPSComments       string `csv:"HIPSComments"`
	Fabs               string `csv:"Fabs"`
	FabsMDL            string `csv:"Fabs_MDL"`
	FabsUncertainty    string `csv:"Fabs_Uncertainty"`
}

func siteFromCombined(r combinedRow, n *Normalizer) *models.Site {
	code := n.Clean(r.Site)
	if code == nil {
		return nil
	}
	return &models.Site{
		SiteCode:  *code,
		Latitude:  n.ToFloat(r.Latitude),
		Longitude: n.ToFloat(r.Longitude),
	}
}

func filterFromCombined(fid string, r combinedRow, n *Normalizer) models.Filter {
	return models.Filter{
		FilterID:           fid,
		Barcode:            n.Clean(r.Barcode),
		SiteCode:           n.Clean(r.Site),
		SampleDate:         n.ToISODate(r.SampleDate),
		FilterType:         n.Clean(r.FilterType),
		LotID:              n.ToInt(r.LotID),
		ProjectID:          n.Clean(r.ProjectID),
		ExternalShipmentID: n.Clean(r.ExternalShipmentID),
		FilterComments:     n.Clean(r.FilterComments),
	}
}

// adaptSample maps the combined SAMPLE export: site and filter candidates,
// one FTIR sample measurement per row carrying at least one carbon value,
// and one HIPS measurement per row carrying an Fabs value.
func adaptSample(rows []combinedRow, n *Normalizer) models.CandidateSet {
	var out models.CandidateSet
	seenSites := make(map[string]struct{})

	for _, r := range rows {
		if site := siteFromCombined(r, n); site != nil {
			if _, dup := seenSites[site.SiteCode]; !dup {
				seenSites[site.SiteCode] = struct{}{}
				out.Sites = append(out.Sites, *site)
			}
		}

		fid := n.Clean(r.FilterID)
		if fid != nil {
			out.Filters = append(out.Filters, filterFromCombined(*fid, r, n))
		}

		oc := n.ToFloat(r.OCFtir)
		ec := n.ToFloat(r.ECFtir)
		if fid != nil && (oc != nil || ec != nil) {
			out.Samples = append(out.Samples, models.SampleMeasurement{
				FilterID:    fid,
				FTIRBatchID: n.ToInt(r.FTIRBatchID),
				VolumeM3:    n.ToFloat(r.VolumeM3),
				OCFtir:      oc,
				OCFtirMDL:   n.ToFloat(r.OCFtirMDL),
				ECFtir:      ec,
				ECFtirMDL:   n.ToFloat(r.ECFtirMDL),
				Comments:    n.Clean(r.HIPSComments),
			})
		}

		if fabs := n.ToFloat(r.Fabs); fid != nil && fabs != nil {
			out.Hips = append(out.Hips, models.HipsMeasurement{
				FilterID:         fid,
				Volume:           n.ToFloat(r.VolumeM3),
				Fabs:             fabs,
				FabsMDL:          n.ToFloat(r.FabsMDL),
				FabsUncertainty:  n.ToFloat(r.FabsUncertainty),
				AnalysisComments: n.Clean(r.HIPSComments),
				FTIRBatchID:      n.ToInt(r.FTIRBatchID),
			})
		}
	}
	return out
}

// adaptBlank maps the combined BLANK export: filter candidates plus one
// blank measurement per row. Blanks are keyed 1:1 by filter, so a row
// without a filter identifier carries nothing loadable and is dropped.
// Blank rows contribute no site candidates; the richer exports do.
func adaptBlank(rows []combinedRow, n *Normalizer) models.CandidateSet {
	var out models.CandidateSet

	for _, r := range rows {
		fid := n.Clean(r.FilterID)
		if fid == nil {
			continue
		}
		out.Filters = append(out.Filters, filterFromCombined(*fid, r, n))
		out.Blanks = append(out.Blanks, models.BlankMeasurement{
			FilterID:    *fid,
			FTIRBatchID: n.ToInt(r.FTIRBatchID),
			OCFtir:      n.ToFloat(r.OCFtir),
			ECFtir:      n.ToFloat(r.ECFtir),
			Tau:         n.ToFloat(r.Tau),
			Comments:    n.Clean(r.HIPSComments),
		})
	}
	return out
}
