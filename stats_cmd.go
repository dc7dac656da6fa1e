// stats_cmd.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/ahzs645/spartandb/config"
	"github.com/ahzs645/spartandb/database"
	"github.com/ahzs645/spartandb/models"
)

type statsOutput struct {
	Driver         string                     `json:"driver"`
	Store          string                     `json:"store"`
	Tables         map[string]int64           `json:"tables"`
	Integrity      database.IntegrityCounts   `json:"integrity"`
	TopSites       []database.SiteFilterCount `json:"top_sites,omitempty"`
	EarliestSample string                     `json:"earliest_sample,omitempty"`
	LatestSample   string                     `json:"latest_sample,omitempty"`
	RecentRuns     []models.SourceRun         `json:"recent_runs,omitempty"`
}

func newStatsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the store: row counts, linkage health, busiest sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.InitDB(config.AppConfig.Database); err != nil {
				return err
			}
			defer database.CloseDB()
			if err := database.EnsureSchema(); err != nil {
				return err
			}

			tables, err := database.TableCounts()
			if err != nil {
				return err
			}
			integ, err := database.CheckIntegrity()
			if err != nil {
				return err
			}
			top, err := database.TopSitesByFilterCount(limit)
			if err != nil {
				return err
			}
			earliest, latest, err := database.SampleDateRange()
			if err != nil {
				return err
			}
			runs, err := database.ListSourceRuns(limit)
			if err != nil {
				return err
			}

			out := statsOutput{
				Driver:         config.AppConfig.Database.Driver,
				Store:          config.AppConfig.Database.Path,
				Tables:         tables,
				Integrity:      integ,
				TopSites:       top,
				EarliestSample: earliest,
				LatestSample:   latest,
				RecentRuns:     runs,
			}
			if out.Driver == "mysql" {
				out.Store = config.AppConfig.Database.DBName
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "How many top sites and recent runs to show")
	return cmd
}
