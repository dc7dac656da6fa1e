// models/run.go
package models

import "time"

// TimestampLayout is how run timestamps are stored: a UTC wall-clock
// string both SQL dialects accept and return unchanged.
const TimestampLayout = "2006-01-02 15:04:05"

// SourceRun records the provenance of one source file in one pipeline run:
// which file was read, its content hash, and how many rows it contributed.
type SourceRun struct {
	ID         int64  `db:"id" json:"id"`
	RunID      string `db:"run_id" json:"run_id"`
	SourceName string `db:"source_name" json:"source_name"`
	SourceFile string `db:"source_file" json:"source_file"`
	FileSHA256 string `db:"file_sha256" json:"file_sha256,omitempty"`
	RowsRead   int    `db:"rows_read" json:"rows_read"`
	RowsLoaded int    `db:"rows_loaded" json:"rows_loaded"`
	StartedAt  string `db:"started_at" json:"started_at"`
	FinishedAt string `db:"finished_at" json:"finished_at"`
}

// SourceReport summarizes what one source contributed to a run.
type SourceReport struct {
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Missing    bool   `json:"missing"`
	FileSHA256 string `json:"file_sha256,omitempty"`
	RowsRead   int    `json:"rows_read"`

	Sites            int `json:"sites"`
	Filters          int `json:"filters"`
	Samples          int `json:"samples"`
	Blanks           int `json:"blanks"`
	Hips             int `json:"hips"`
	FunctionalGroups int `json:"functional_groups"`
}

// LinkReport summarizes the referential-integrity backfill of one run.
type LinkReport struct {
	SamplesLinked          int `json:"samples_linked"`
	FunctionalGroupsLinked int `json:"functional_groups_linked"`
	FiltersCreated         int `json:"filters_created"`
	SitesCreated           int `json:"sites_created"`
	Unresolved             int `json:"unresolved"`
}

// RunReport is the JSON manifest written at the end of a build run.
type RunReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Driver     string         `json:"driver"`
	Store      string         `json:"store"`
	Sources    []SourceReport `json:"sources"`

	SitesLoaded   int        `json:"sites_loaded"`
	FiltersLoaded int        `json:"filters_loaded"`
	SamplesLoaded int        `json:"samples_loaded"`
	BlanksLoaded  int        `json:"blanks_loaded"`
	HipsLoaded    int        `json:"hips_loaded"`
	FGLoaded      int        `json:"functional_groups_loaded"`
	Linking       LinkReport `json:"linking"`
}
