// services/pipeline_service.go
package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ahzs645/spartandb/config"
	"github.com/ahzs645/spartandb/database"
	"github.com/ahzs645/spartandb/ingest"
	"github.com/ahzs645/spartandb/models"
)

// RunPipeline executes one build run end to end: ensure the schema, read
// and adapt every configured source, load dimensions before facts, then
// backfill filter links. Sources that are disabled or whose file is
// absent are skipped with a warning; a run with no readable source at
// all fails. Each load step commits on its own, so a failure partway
// leaves earlier steps durable and the report tells which step died.
func RunPipeline() (*models.RunReport, error) {
	cfg := config.AppConfig

	report := &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Driver:    cfg.Database.Driver,
		Store:     cfg.Database.Path,
	}
	if cfg.Database.Driver == "mysql" {
		report.Store = cfg.Database.DBName
	}
	log.Infof("Starting pipeline run %s against %s store %s", report.RunID, report.Driver, report.Store)

	if err := database.EnsureSchema(); err != nil {
		return nil, err
	}

	norm := ingest.NewNormalizer(cfg.NaTokens)
	var combined models.CandidateSet
	var provenance []models.SourceRun

	for _, name := range ingest.SourceNames {
		srcReport := models.SourceReport{Name: name, Missing: true}

		rel := cfg.Sources.FileFor(name)
		if rel == "" {
			log.Debugf("Source %s is disabled in configuration", name)
			report.Sources = append(report.Sources, srcReport)
			continue
		}
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, rel)
		}
		if _, err := os.Stat(path); err != nil {
			log.Warnf("Source %s: file %s not found, skipping", name, path)
			report.Sources = append(report.Sources, srcReport)
			continue
		}

		sum, err := fileSHA256(path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash source file %s: %w", path, err)
		}

		started := time.Now().UTC()
		set, rowsRead, err := ingest.ReadSource(name, path, norm)
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", name, err)
		}

		srcReport.Missing = false
		srcReport.Path = path
		srcReport.FileSHA256 = sum
		srcReport.RowsRead = rowsRead
		srcReport.Sites = len(set.Sites)
		srcReport.Filters = len(set.Filters)
		srcReport.Samples = len(set.Samples)
		srcReport.Blanks = len(set.Blanks)
		srcReport.Hips = len(set.Hips)
		srcReport.FunctionalGroups = len(set.FunctionalGroups)
		report.Sources = append(report.Sources, srcReport)

		provenance = append(provenance, models.SourceRun{
			RunID:      report.RunID,
			SourceName: name,
			SourceFile: path,
			FileSHA256: sum,
			RowsRead:   rowsRead,
			RowsLoaded: candidateCount(set),
			StartedAt:  started.Format(models.TimestampLayout),
			FinishedAt: time.Now().UTC().Format(models.TimestampLayout),
		})

		log.Infof("Source %s: %d rows read, %d filter and %d site candidates, %d/%d/%d/%d facts",
			name, rowsRead, srcReport.Filters, srcReport.Sites,
			srcReport.Samples, srcReport.Blanks, srcReport.Hips, srcReport.FunctionalGroups)

		combined.Merge(set)
	}

	if len(provenance) == 0 {
		return nil, fmt.Errorf("no readable source files under %s", cfg.DataDir)
	}

	// Dimensions land before any fact that references them.
	sitesLoaded, err := database.InsertSites(combined.Sites)
	if err != nil {
		return nil, err
	}
	filtersLoaded, sitesStubbed, err := database.InsertFilters(combined.Filters)
	if err != nil {
		return nil, err
	}
	if sitesStubbed > 0 {
		log.Warnf("%d filters referenced sites absent from every site-bearing source; created code-only rows", sitesStubbed)
	}
	report.SitesLoaded = sitesLoaded + sitesStubbed
	report.FiltersLoaded = filtersLoaded

	if report.SamplesLoaded, err = database.InsertSampleMeasurements(combined.Samples); err != nil {
		return nil, err
	}
	if report.BlanksLoaded, err = database.InsertBlankMeasurements(combined.Blanks); err != nil {
		return nil, err
	}
	if report.HipsLoaded, err = database.InsertHipsMeasurements(combined.Hips); err != nil {
		return nil, err
	}
	if report.FGLoaded, err = database.InsertFunctionalGroups(combined.FunctionalGroups); err != nil {
		return nil, err
	}

	if report.Linking, err = LinkMeasurements(cfg.Pipeline.CreateMissingFilters); err != nil {
		return nil, err
	}
	report.SitesLoaded += report.Linking.SitesCreated
	report.FiltersLoaded += report.Linking.FiltersCreated

	for _, run := range provenance {
		if err := database.RecordSourceRun(run); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.Infof("Pipeline run %s complete in %s: %d sites, %d filters, %d samples, %d blanks, %d hips, %d functional-group rows",
		report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
		report.SitesLoaded, report.FiltersLoaded,
		report.SamplesLoaded, report.BlanksLoaded, report.HipsLoaded, report.FGLoaded)
	return report, nil
}

// candidateCount is the number of candidate records a source contributed
// after its drop predicates ran.
func candidateCount(set models.CandidateSet) int {
	return len(set.Sites) + len(set.Filters) + len(set.Samples) +
		len(set.Blanks) + len(set.Hips) + len(set.FunctionalGroups)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
