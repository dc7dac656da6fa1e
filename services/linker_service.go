// services/linker_service.go
package services

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ahzs645/spartandb/database"
	"github.com/ahzs645/spartandb/ingest"
	"github.com/ahzs645/spartandb/models"
)

// LinkMeasurements resolves label-keyed fact rows to filters. Every fact
// row with a sample label and no filter gets its label parsed into a
// canonical SITE-NNNN-P key; keys with no committed filter get a
// placeholder filter (and site, if needed) unless createMissingFilters
// is off. The whole backfill commits in one transaction, so a failure
// leaves every row as it was.
func LinkMeasurements(createMissingFilters bool) (models.LinkReport, error) {
	var report models.LinkReport

	if database.DB == nil {
		return report, fmt.Errorf("database connection is not initialized")
	}

	// Committed keys are read before the transaction opens; the pipeline
	// is the only writer while it runs.
	committed, err := database.FilterIDSet()
	if err != nil {
		return report, fmt.Errorf("failed to load committed filter ids: %w", err)
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return report, fmt.Errorf("failed to begin linking transaction: %w", err)
	}
	defer tx.Rollback()

	unlinkedSamples, err := database.UnlinkedSampleMeasurements(tx)
	if err != nil {
		return report, err
	}
	unlinkedFGs, err := database.UnlinkedFunctionalGroups(tx)
	if err != nil {
		return report, err
	}
	if len(unlinkedSamples) == 0 && len(unlinkedFGs) == 0 {
		log.Debug("No unlinked measurements to resolve")
		return report, nil
	}

	queued := make(map[string]models.Filter)
	resolve := func(rows []database.UnlinkedRow) []database.FilterLink {
		var links []database.FilterLink
		for _, r := range rows {
			key, ok := ingest.ResolveFilterKey(r.SampleID)
			if !ok {
				log.Debugf("Could not resolve sample label %q to a filter key", r.SampleID)
				report.Unresolved++
				continue
			}
			_, have := committed[key]
			_, pending := queued[key]
			if !have && !pending {
				if !createMissingFilters {
					report.Unresolved++
					continue
				}
				site := ingest.SiteFromFilterKey(key)
				queued[key] = models.Filter{FilterID: key, SiteCode: &site}
			}
			links = append(links, database.FilterLink{
				MeasurementID: r.MeasurementID,
				FilterID:      key,
			})
		}
		return links
	}

	sampleLinks := resolve(unlinkedSamples)
	fgLinks := resolve(unlinkedFGs)

	if len(queued) > 0 {
		keys := make([]string, 0, len(queued))
		for key := range queued {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		placeholders := make([]models.Filter, 0, len(keys))
		for _, key := range keys {
			placeholders = append(placeholders, queued[key])
		}
		filtersCreated, sitesCreated, err := database.EnsureFiltersExist(tx, placeholders)
		if err != nil {
			return report, err
		}
		report.FiltersCreated = filtersCreated
		report.SitesCreated = sitesCreated
	}

	if err := database.LinkSampleMeasurements(tx, sampleLinks); err != nil {
		return report, err
	}
	if err := database.LinkFunctionalGroups(tx, fgLinks); err != nil {
		return report, err
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("failed to commit linking transaction: %w", err)
	}

	report.SamplesLinked = len(sampleLinks)
	report.FunctionalGroupsLinked = len(fgLinks)
	log.Infof("Linked %d sample and %d functional-group rows (%d placeholder filters, %d placeholder sites, %d unresolved)",
		report.SamplesLinked, report.FunctionalGroupsLinked,
		report.FiltersCreated, report.SitesCreated, report.Unresolved)
	return report, nil
}
