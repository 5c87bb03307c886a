package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"atlasworker/internal/enrich"
	pkgerrors "atlasworker/pkg/errors"
)

// enrichedHeader fixes the column order of the exported table.
// Names match the snapshot field names so the export stays stable
// across stages.
var enrichedHeader = []string{
	"source_url",
	"item_title",
	"category_raw",
	"description_raw",
	"images",
	"listed_price_raw",
	"currency",
	"seller_location",
	"category_normalized",
	"description_clean",
	"price_value",
	"era_or_time_period",
	"estimated_year_range",
	"region_of_origin",
	"functional_use",
	"material",
	"style",
	"short_summary",
	"confidence_score",
}

// WriteCSV writes the enriched records as a flat table. An empty final
// dataset is an error; everything upstream should have produced at
// least a best-effort snapshot.
func WriteCSV(w io.Writer, records []enrich.EnrichedItem) error {
	if len(records) == 0 {
		return pkgerrors.NewValidation("export", "no records found in final dataset")
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(enrichedHeader); err != nil {
		return err
	}

	for _, record := range records {
		if err := cw.Write(toRow(record)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func toRow(r enrich.EnrichedItem) []string {
	price := ""
	if r.PriceValue != nil {
		price = strconv.FormatFloat(*r.PriceValue, 'f', -1, 64)
	}

	return []string{
		r.SourceURL,
		orEmpty(r.Title),
		r.CategoryRaw,
		orEmpty(r.DescriptionRaw),
		strings.Join(r.Images, " | "),
		orEmpty(r.ListedPriceRaw),
		r.Currency,
		orEmpty(r.SellerLocation),
		r.CategoryNormalized,
		orEmpty(r.DescriptionClean),
		price,
		r.EraOrTimePeriod,
		r.EstimatedYearRange,
		r.RegionOfOrigin,
		r.FunctionalUse,
		r.Material,
		r.Style,
		r.ShortSummary,
		strconv.FormatFloat(r.ConfidenceScore, 'f', -1, 64),
	}
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
