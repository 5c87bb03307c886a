package scraper

import (
	"atlasworker/logger"
)

// Collector walks every configured category in order and concatenates
// the raw records. It owns the run-wide visited set, so an item reached
// via two categories is fetched once and tagged with the category whose
// walk discovered it first.
type Collector struct {
	Walker     *Walker
	Categories []Category
}

// Collect runs all category walks and returns the raw records in
// category order, then discovery order.
func (c *Collector) Collect() []RawItem {
	log := logger.ForCollector()

	visited := NewVisitedSet()
	var all []RawItem

	for _, category := range c.Categories {
		log.Info().Str("category", category.Name).Msg("Scraping category")

		items, stats := c.Walker.Walk(category, visited)
		all = append(all, items...)

		log.Info().
			Str("category", category.Name).
			Int("collected", stats.Collected).
			Int("pages_scanned", stats.PagesScanned).
			Int("skipped", len(stats.Skipped)).
			Msg("Category walk finished")
	}

	log.Info().
		Int("total", len(all)).
		Int("visited", visited.Len()).
		Msg("Collection run finished")

	return all
}
