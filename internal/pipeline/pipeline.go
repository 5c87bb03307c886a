package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"atlasworker/internal/enrich"
	"atlasworker/internal/export"
	"atlasworker/internal/normalize"
	"atlasworker/internal/scraper"
	"atlasworker/logger"
	"atlasworker/services/publisher"
)

// Collector produces the raw records for a collection run
type Collector interface {
	Collect() []scraper.RawItem
}

// Enricher derives attributes for the clean records
type Enricher interface {
	EnrichAll(ctx context.Context, items []normalize.CleanItem) []enrich.EnrichedItem
}

// Store persists the stage snapshots
type Store interface {
	Save(path string, v any) error
	Load(path string, v any) error
}

// Paths names the snapshot and export files of one run
type Paths struct {
	Raw       string
	Clean     string
	Final     string
	ExportCSV string
}

// Pipeline sequences the stages of a run: collect, normalize, enrich,
// export, publish. Each stage hands the next one a whole snapshot file;
// record-level failures never fail the run.
type Pipeline struct {
	Collector Collector
	Store     Store
	Enricher  Enricher            // nil skips enrichment and everything after it
	Publisher publisher.Publisher // nil skips publishing
	Paths     Paths
}

// Run executes the pipeline stages in order. It returns an error only
// for infrastructure failures (snapshot or export I/O); everything else
// degrades to a logged, best-effort output.
func (p *Pipeline) Run(ctx context.Context) error {
	log := logger.ForPipeline()

	// Stage 1: collection
	raw := p.Collector.Collect()
	if err := p.Store.Save(p.Paths.Raw, raw); err != nil {
		return err
	}
	log.Info().Int("items", len(raw)).Str("path", p.Paths.Raw).Msg("Raw snapshot saved")

	// Stage 2: normalization, fed from the raw snapshot file
	var rawLoaded []scraper.RawItem
	if err := p.Store.Load(p.Paths.Raw, &rawLoaded); err != nil {
		return err
	}
	clean, retained := normalize.Normalize(rawLoaded)
	if err := p.Store.Save(p.Paths.Clean, clean); err != nil {
		return err
	}
	log.Info().Int("records", retained).Str("path", p.Paths.Clean).Msg("Clean snapshot saved")

	if p.Enricher == nil {
		log.Warn().Msg("No enricher configured, stopping after clean snapshot")
		return nil
	}

	// Stage 3: enrichment, fed from the clean snapshot file
	var cleanLoaded []normalize.CleanItem
	if err := p.Store.Load(p.Paths.Clean, &cleanLoaded); err != nil {
		return err
	}
	enriched := p.Enricher.EnrichAll(ctx, cleanLoaded)
	if err := p.Store.Save(p.Paths.Final, enriched); err != nil {
		return err
	}
	log.Info().Int("records", len(enriched)).Str("path", p.Paths.Final).Msg("Final snapshot saved")

	// Stage 4: export
	if p.Paths.ExportCSV != "" {
		if len(enriched) == 0 {
			log.Warn().Msg("No enriched records, skipping export")
		} else if err := p.exportCSV(enriched); err != nil {
			return err
		} else {
			log.Info().Str("path", p.Paths.ExportCSV).Msg("CSV exported")
		}
	}

	// Stage 5: publish
	p.publish(enriched)

	return nil
}

func (p *Pipeline) exportCSV(enriched []enrich.EnrichedItem) error {
	if err := os.MkdirAll(filepath.Dir(p.Paths.ExportCSV), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p.Paths.ExportCSV)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteCSV(f, enriched)
}

// publish announces each enriched record; failures are logged and
// never fail the run.
func (p *Pipeline) publish(enriched []enrich.EnrichedItem) {
	if p.Publisher == nil {
		return
	}
	log := logger.ForPublisher()

	published := 0
	for _, record := range enriched {
		data, err := json.Marshal(record)
		if err != nil {
			log.Error().Err(err).Str("url", record.SourceURL).Msg("Failed to marshal record")
			continue
		}
		if err := p.Publisher.Publish(data); err != nil {
			log.Error().Err(err).Str("url", record.SourceURL).Msg("Failed to publish record")
			continue
		}
		published++
	}

	if err := p.Publisher.TrimStream(); err != nil {
		log.Error().Err(err).Msg("Failed to trim stream")
	}

	log.Info().Int("published", published).Int("total", len(enriched)).Msg("Publishing finished")
}
