package scraper

import (
	"fmt"
	"strings"
	"time"

	"atlasworker/logger"
	pkgerrors "atlasworker/pkg/errors"
	"atlasworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Walker paginates one category listing, discovering item links and
// collecting a raw record per item up to the per-category cap. The
// visited set is injected by the caller so a run-wide set can be shared
// across categories.
type Walker struct {
	BaseURL        string
	ItemLinkPrefix string
	Fetcher        Fetcher
	Extractor      *Extractor
	CacheSvc       cache.CacheService
	BlockTime      time.Duration

	MaxItems        int
	MaxPages        int
	Pause           time.Duration
	StopOnPageError bool
}

// Walk collects up to MaxItems records for the category, tagging each
// with the category display name. Zero item links on a page ends the
// walk as a normal exhaustion condition.
func (w *Walker) Walk(category Category, visited *VisitedSet) ([]RawItem, WalkStats) {
	log := logger.ForScraper(category.Name)

	var items []RawItem
	var stats WalkStats

	blockKey := "walk_blocked:" + category.Path

	page := 1
	for len(items) < w.MaxItems && page <= w.MaxPages {
		// Respect an active rate-limit block for this category
		if w.CacheSvc != nil {
			if _, err := w.CacheSvc.Get(blockKey); err == nil {
				log.Warn().Str("cache_key", blockKey).Msg("Category fetch blocked, ending walk")
				break
			}
		}

		pageURL := fmt.Sprintf("%s%s?page=%d", w.BaseURL, category.Path, page)
		doc, err := w.fetchDocument(pageURL)
		if err != nil {
			if pkgerrors.IsRateLimited(err) && w.CacheSvc != nil {
				blockSeconds := fmt.Sprintf("%d", int(w.BlockTime/time.Second))
				w.CacheSvc.Set(blockKey, []byte(blockSeconds), w.BlockTime)
			}
			log.Error().
				Err(err).
				Str("type", string(pkgerrors.TypeOf(err))).
				Str("url", pageURL).
				Msg("Failed to fetch listing page")
			if w.StopOnPageError {
				break
			}
			page++
			continue
		}
		stats.PagesScanned++

		links := doc.Find("a[href^='" + w.ItemLinkPrefix + "']")
		if links.Length() == 0 {
			log.Info().Int("page", page).Msg("No item links found, category exhausted")
			break
		}

		links.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if len(items) >= w.MaxItems {
				return false
			}

			href, exists := s.Attr("href")
			href = strings.TrimSpace(href)
			if !exists || href == "" {
				return true
			}

			itemURL := w.BaseURL + href
			if !visited.Add(itemURL) {
				return true
			}

			record, err := w.fetchItem(itemURL)
			if err != nil {
				stats.Skipped = append(stats.Skipped, SkippedItem{URL: itemURL, Err: err})
				log.Error().
					Err(err).
					Str("type", string(pkgerrors.TypeOf(err))).
					Str("url", itemURL).
					Msg("Failed to process item")
				return true
			}

			record.SourceURL = itemURL
			record.Category = category.Name
			items = append(items, *record)

			if title := record.Title; title != nil {
				log.Debug().Str("title", *title).Msg("Collected item")
			}

			time.Sleep(w.Pause)
			return true
		})

		page++
	}

	stats.Collected = len(items)
	return items, stats
}

// fetchItem fetches and extracts a single item page
func (w *Walker) fetchItem(itemURL string) (*RawItem, error) {
	doc, err := w.fetchDocument(itemURL)
	if err != nil {
		return nil, err
	}
	record := w.Extractor.Extract(doc)
	return &record, nil
}

// fetchDocument fetches a URL and parses it into a goquery document
func (w *Walker) fetchDocument(url string) (*goquery.Document, error) {
	body, err := w.Fetcher.Fetch(url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, pkgerrors.NewParsing("walk", "failed to parse HTML", err).WithURL(url)
	}
	return doc, nil
}
