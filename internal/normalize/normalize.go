package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"atlasworker/helpers"
	"atlasworker/internal/scraper"
	"atlasworker/logger"
)

// CategoryOther is the fallback bucket for unmapped labels
const CategoryOther = "other"

// minDescriptionLength drops cleaned descriptions too short to carry
// any information.
const minDescriptionLength = 20

// dedupeTitleLength bounds the title part of the dedupe key
const dedupeTitleLength = 40

// categoryLookup maps display labels to canonical identifiers.
// Canonical identifiers map to themselves so normalization is a
// projection: re-normalizing an already-normalized value is a no-op.
var categoryLookup = map[string]string{
	"Furniture":      "furniture",
	"Ceramics":       "ceramics",
	"Decorative Art": "decorative_art",
	"Silver":         "silver",
	"Jewellery":      "jewellery",
	"Lighting":       "lighting",

	"furniture":      "furniture",
	"ceramics":       "ceramics",
	"decorative_art": "decorative_art",
	"silver":         "silver",
	"jewellery":      "jewellery",
	"lighting":       "lighting",
}

var priceRegex = regexp.MustCompile(`[\d,.]+`)

// CleanItem retains every raw field verbatim for traceability and adds
// the three derived fields.
type CleanItem struct {
	SourceURL      string   `json:"source_url"`
	Title          *string  `json:"item_title"`
	CategoryRaw    string   `json:"category_raw"`
	DescriptionRaw *string  `json:"description_raw"`
	ListedPriceRaw *string  `json:"listed_price_raw"`
	Currency       string   `json:"currency"`
	SellerLocation *string  `json:"seller_location"`
	Images         []string `json:"images"`

	CategoryNormalized string   `json:"category_normalized"`
	DescriptionClean   *string  `json:"description_clean"`
	PriceValue         *float64 `json:"price_value"`
}

// NormalizeCategory converts a free-text category label into a
// canonical lowercase identifier. Unknown or empty labels land in the
// "other" bucket; the result is never empty.
func NormalizeCategory(label string) string {
	if canonical, ok := categoryLookup[strings.TrimSpace(label)]; ok {
		return canonical
	}
	return CategoryOther
}

// CleanDescription collapses whitespace runs and discards entries too
// short to be informative.
func CleanDescription(text *string) *string {
	if text == nil {
		return nil
	}
	cleaned := helpers.CollapseWhitespace(*text)
	if utf8.RuneCountInString(cleaned) < minDescriptionLength {
		return nil
	}
	return &cleaned
}

// ParsePrice converts heterogeneous price text into a numeric value.
// "Price on application" markers and unparseable text both yield nil;
// parsing never fails to the caller.
func ParsePrice(priceText *string) *float64 {
	if priceText == nil {
		return nil
	}

	lowered := strings.ToLower(*priceText)
	if lowered == "" {
		return nil
	}

	// An explicit "no price" signal, not a parse failure
	if strings.Contains(lowered, "poa") || strings.Contains(lowered, "price on application") {
		return nil
	}

	match := priceRegex.FindString(lowered)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// DedupeKey builds a lightweight composite key identifying obvious
// duplicate listings: truncated lowercased title plus raw price text.
func DedupeKey(title, price *string) string {
	titlePart := ""
	if title != nil {
		titlePart = strings.TrimSpace(strings.ToLower(*title))
	}
	pricePart := ""
	if price != nil {
		pricePart = strings.TrimSpace(*price)
	}
	return helpers.TruncateRunes(titlePart, dedupeTitleLength) + "::" + pricePart
}

// Normalize derives a clean record per surviving raw record and returns
// the clean sequence plus the retained count. Order follows input order
// minus dropped duplicates; the dedupe check runs before any field
// construction.
func Normalize(items []scraper.RawItem) ([]CleanItem, int) {
	log := logger.ForNormalizer()

	cleaned := make([]CleanItem, 0, len(items))
	seen := make(map[string]struct{})

	for _, item := range items {
		key := DedupeKey(item.Title, item.ListedPrice)
		if _, ok := seen[key]; ok {
			log.Debug().Str("url", item.SourceURL).Msg("Dropped duplicate listing")
			continue
		}
		seen[key] = struct{}{}

		cleaned = append(cleaned, CleanItem{
			SourceURL:      item.SourceURL,
			Title:          item.Title,
			CategoryRaw:    item.Category,
			DescriptionRaw: item.DescriptionRaw,
			ListedPriceRaw: item.ListedPrice,
			Currency:       item.Currency,
			SellerLocation: item.SellerLocation,
			Images:         item.Images,

			CategoryNormalized: NormalizeCategory(item.Category),
			DescriptionClean:   CleanDescription(item.DescriptionRaw),
			PriceValue:         ParsePrice(item.ListedPrice),
		})
	}

	log.Info().
		Int("input", len(items)).
		Int("retained", len(cleaned)).
		Int("dropped", len(items)-len(cleaned)).
		Msg("Normalization finished")

	return cleaned, len(cleaned)
}
