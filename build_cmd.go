// build_cmd.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ahzs645/spartandb/config"
	"github.com/ahzs645/spartandb/database"
	"github.com/ahzs645/spartandb/services"
)

func newBuildCmd() *cobra.Command {
	var (
		dbPath    string
		dataDir   string
		reportOut string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Read every configured source export and load the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath != "" {
				config.AppConfig.Database.Path = dbPath
				if dir := filepath.Dir(dbPath); dir != "." {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("failed to create directory for database file: %w", err)
					}
				}
			}
			if dataDir != "" {
				config.AppConfig.DataDir = dataDir
			}

			if err := database.InitDB(config.AppConfig.Database); err != nil {
				return err
			}
			defer database.CloseDB()

			report, err := services.RunPipeline()
			if err != nil {
				return err
			}

			if reportOut != "" {
				if err := writeReportFile(reportOut, report); err != nil {
					return fmt.Errorf("failed to write run report to %s: %w", reportOut, err)
				}
				log.Infof("Run report written to %s", reportOut)
				return nil
			}
			return writeJSON(report)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file (overrides config; sqlite driver only)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the source exports (overrides config)")
	cmd.Flags().StringVar(&reportOut, "report", "", "Write the run report JSON here instead of stdout")
	return cmd
}
