// ingest/adapter_etad.go
package ingest

import "github.com/ahzs645/spartandb/models"

// etadRow is one row of the standalone ETAD/HIPS instrument export, which
// carries the full reflectance and transmittance set alongside the filter
// metadata.
type etadRow struct {
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
	AnalysisDate       string `csv:"AnalysisDate"`
	AnalysisTime       string `csv:"AnalysisTime"`
	T1                 string `csv:"T1"`
	R1                 string `csv:"R1"`
	Intercept          string `csv:"Intercept"`
	Slope              string `csv:"Slope"`
	T                  string `csv:"t"`
	R                  string `csv:"r"`
	Tau                string `csv:"tau"`
	DepositArea        string `csv:"DepositArea"`
	Volume             string `csv:"Volume"`
	Fabs               string `csv:"Fabs"`
	MDL                string `csv:"MDL"`
	Uncertainty        string `csv:"Uncertainty"`
	AnalysisComments   string `csv:"AnalysisComments"`
}

// adaptEtad maps the ETAD export: site and filter candidates plus one HIPS
// measurement per filter-bearing row with at least one optical value.
func adaptEtad(rows []etadRow, n *Normalizer) models.CandidateSet {
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

		fid := n.Clean(r.FilterID)
		if fid == nil {
			continue
		}

		out.Filters = append(out.Filters, models.Filter{
			FilterID:           *fid,
			Barcode:            n.Clean(r.Barcode),
			SiteCode:           n.Clean(r.Site),
			SampleDate:         n.ToISODate(r.SampleDate),
			FilterType:         n.Clean(r.FilterType),
			LotID:              n.ToInt(r.LotID),
			ProjectID:          n.Clean(r.ProjectID),
			ExternalShipmentID: n.Clean(r.ExternalShipmentID),
			FilterComments:     n.Clean(r.FilterComments),
		})

		m := models.HipsMeasurement{
			FilterID:         fid,
			AnalysisDate:     n.ToISODate(r.AnalysisDate),
			AnalysisTime:     n.Clean(r.AnalysisTime),
			T1:               n.ToFloat(r.T1),
			R1:               n.ToFloat(r.R1),
			Intercept:        n.ToFloat(r.Intercept),
			Slope:            n.ToFloat(r.Slope),
			T:                n.ToFloat(r.T),
			R:                n.ToFloat(r.R),
			Tau:              n.ToFloat(r.Tau),
			DepositArea:      n.ToFloat(r.DepositArea),
			Volume:           n.ToFloat(r.Volume),
			Fabs:             n.ToFloat(r.Fabs),
			FabsMDL:          n.ToFloat(r.MDL),
			FabsUncertainty:  n.ToFloat(r.Uncertainty),
			AnalysisComments: n.Clean(r.AnalysisComments),
		}
		if m.Fabs != nil || m.Tau != nil || m.T != nil || m.R != nil || m.T1 != nil || m.R1 != nil {
			out.Hips = append(out.Hips, m)
		}
	}
	return out
}
