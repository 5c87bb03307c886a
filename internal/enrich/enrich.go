package enrich

import (
	"context"
	"time"

	"atlasworker/internal/normalize"
	"atlasworker/logger"
	pkgerrors "atlasworker/pkg/errors"
)

// unknownValue stands in for any absent inference input
const unknownValue = "unknown"

// Attributes is the fixed set of descriptive fields derived per item
type Attributes struct {
	EraOrTimePeriod    string  `json:"era_or_time_period"`
	EstimatedYearRange string  `json:"estimated_year_range"`
	RegionOfOrigin     string  `json:"region_of_origin"`
	FunctionalUse      string  `json:"functional_use"`
	Material           string  `json:"material"`
	Style              string  `json:"style"`
	ShortSummary       string  `json:"short_summary"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

// EnrichedItem is a clean record plus its inferred attributes
type EnrichedItem struct {
	normalize.CleanItem
	Attributes
}

// Inferencer derives descriptive attributes for one item. Implementations
// are external collaborators; a failed call only drops that item.
type Inferencer interface {
	InferAttributes(ctx context.Context, title, category, description string) (*Attributes, error)
}

// Enricher runs the inference call per clean record, skipping failures
type Enricher struct {
	Inferencer Inferencer
	Pause      time.Duration
}

// NewEnricher creates an enricher around an inferencer
func NewEnricher(inferencer Inferencer, pause time.Duration) *Enricher {
	return &Enricher{
		Inferencer: inferencer,
		Pause:      pause,
	}
}

// EnrichAll derives attributes for every clean record. A per-item
// failure is logged and that item dropped; the batch never aborts.
// Output preserves the order of surviving items.
func (e *Enricher) EnrichAll(ctx context.Context, items []normalize.CleanItem) []EnrichedItem {
	log := logger.ForEnricher()

	enriched := make([]EnrichedItem, 0, len(items))

	for idx, item := range items {
		if ctx.Err() != nil {
			log.Warn().Int("processed", idx).Msg("Enrichment cancelled")
			break
		}

		title := unknownValue
		if item.Title != nil && *item.Title != "" {
			title = *item.Title
		}

		category := item.CategoryNormalized
		if category == "" {
			category = unknownValue
		}

		description := unknownValue
		if item.DescriptionClean != nil && *item.DescriptionClean != "" {
			description = *item.DescriptionClean
		} else if item.DescriptionRaw != nil && *item.DescriptionRaw != "" {
			description = *item.DescriptionRaw
		}

		attrs, err := e.Inferencer.InferAttributes(ctx, title, category, description)
		if err != nil {
			log.Error().
				Err(err).
				Str("type", string(pkgerrors.TypeOf(err))).
				Str("url", item.SourceURL).
				Msg("Skipped item after inference failure")
			continue
		}

		enriched = append(enriched, EnrichedItem{
			CleanItem:  item,
			Attributes: *attrs,
		})

		log.Debug().
			Int("index", idx+1).
			Int("total", len(items)).
			Str("title", title).
			Msg("Enriched item")

		time.Sleep(e.Pause)
	}

	log.Info().
		Int("input", len(items)).
		Int("enriched", len(enriched)).
		Msg("Enrichment finished")

	return enriched
}
