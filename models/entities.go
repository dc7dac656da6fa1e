// models/entities.go
package models

// Site is a fixed sampling station, keyed by its four-letter station code.
// Coordinates and name are unknown for placeholder rows synthesized during
// linking, so every attribute beyond the code is nullable.
type Site struct {
	SiteCode  string   `db:"site_code"`
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
	SiteName  *string  `db:"site_name"`
}

// Filter is a physical sample-collection medium. FilterID is either a
// laboratory identifier carried by a source row or a synthesized
// SITE-NNNN-P code derived from a sample label. SampleDate is kept as an
// ISO YYYY-MM-DD string so both SQL dialects bind it the same way.
type Filter struct {
	FilterID           string  `db:"filter_id"`
	Barcode            *string `db:"barcode"`
	SiteCode           *string `db:"site_code"`
	SampleDate         *string `db:"sample_date"`
	FilterType         *string `db:"filter_type"`
	LotID              *int64  `db:"lot_id"`
	ProjectID          *string `db:"project_id"`
	ExternalShipmentID *string `db:"external_shipment_id"`
	FilterComments     *string `db:"filter_comments"`
}

// SampleMeasurement is one FTIR carbon result. FilterID is nullable until
// the linker resolves it from SampleID; SampleID is the free-text label
// the batch-era exports carry instead of an explicit filter identifier.
type SampleMeasurement struct {
	MeasurementID int64    `db:"measurement_id"`
	FilterID      *string  `db:"filter_id"`
	FTIRBatchID   *int64   `db:"ftir_batch_id"`
	SampleID      *string  `db:"sample_id"`
	VolumeM3      *float64 `db:"volume_m3"`
	OCFtir        *float64 `db:"oc_ftir"`
	OCFtirMDL     *float64 `db:"oc_ftir_mdl"`
	ECFtir        *float64 `db:"ec_ftir"`
	ECFtirMDL     *float64 `db:"ec_ftir_mdl"`
	Comments      *string  `db:"comments"`
}

// BlankMeasurement is a field/lab blank, keyed 1:1 by its filter.
type BlankMeasurement struct {
	FilterID    string   `db:"filter_id"`
	FTIRBatchID *int64   `db:"ftir_batch_id"`
	OCFtir      *float64 `db:"oc_ftir"`
	ECFtir      *float64 `db:"ec_ftir"`
	Tau         *float64 `db:"tau"`
	Comments    *string  `db:"comments"`
}

// HipsMeasurement is one optical-absorption result. Rows from the combined
// sample export carry only the Fabs triple and volume; rows from the ETAD
// instrument export carry the full reflectance/transmittance set.
type HipsMeasurement struct {
	MeasurementID    int64    `db:"measurement_id"`
	FilterID         *string  `db:"filter_id"`
	AnalysisDate     *string  `db:"analysis_date"`
	AnalysisTime     *string  `db:"analysis_time"`
	T1               *float64 `db:"t1"`
	R1               *float64 `db:"r1"`
	Intercept        *float64 `db:"intercept"`
	Slope            *float64 `db:"slope"`
	T                *float64 `db:"t"`
	R                *float64 `db:"r"`
	Tau              *float64 `db:"tau"`
	DepositArea      *float64 `db:"deposit_area"`
	Volume           *float64 `db:"volume"`
	Fabs             *float64 `db:"fabs"`
	FabsMDL          *float64 `db:"fabs_mdl"`
	FabsUncertainty  *float64 `db:"fabs_uncertainty"`
	AnalysisComments *string  `db:"analysis_comments"`
	FTIRBatchID      *int64   `db:"ftir_batch_id"`
}

// FunctionalGroupMeasurement is one row of functional-group concentrations,
// label-keyed like the batch-era sample measurements and linkable the same
// way.
type FunctionalGroupMeasurement struct {
	MeasurementID int64    `db:"measurement_id"`
	FilterID      *string  `db:"filter_id"`
	SampleID      *string  `db:"sample_id"`
	ACOH          *float64 `db:"acoh"`
	ACH           *float64 `db:"ach"`
	NaCO          *float64 `db:"naco"`
	COOH          *float64 `db:"cooh"`
	OM            *float64 `db:"om"`
}

// CandidateSet accumulates every candidate record the source adapters emit
// for one pipeline run. The whole batch is collected before any write so
// the linker can check queued keys as well as committed ones.
type CandidateSet struct {
	Sites            []Site
	Filters          []Filter
	Samples          []SampleMeasurement
	Blanks           []BlankMeasurement
	Hips             []HipsMeasurement
	FunctionalGroups []FunctionalGroupMeasurement
}

// Merge appends every candidate from other into the receiver.
func (c *CandidateSet) Merge(other CandidateSet) {
	c.Sites = append(c.Sites, other.Sites...)
	c.Filters = append(c.Filters, other.Filters...)
	c.Samples = append(c.Samples, other.Samples...)
	c.Blanks = append(c.Blanks, other.Blanks...)
	c.Hips = append(c.Hips, other.Hips...)
	c.FunctionalGroups = append(c.FunctionalGroups, other.FunctionalGroups...)
}
