package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxImages caps the image list per item
const maxImages = 5

// fieldHandler extracts a single text field from an item document.
// Handlers are tried in order; the first non-empty result wins.
type fieldHandler func(*goquery.Document) string

// Extractor pulls the raw listing fields out of a fetched item page.
// Every field defaults to nil/empty on absence; nothing here fails
// the record.
type Extractor struct {
	imageCDNHost        string
	descriptionHandlers []fieldHandler
}

// NewExtractor creates an extractor keeping only images hosted on
// cdnHost.
func NewExtractor(cdnHost string) *Extractor {
	return &Extractor{
		imageCDNHost: cdnHost,
		descriptionHandlers: []fieldHandler{
			ogDescriptionHandler,
			jsonLDDescriptionHandler,
		},
	}
}

// Extract builds a RawItem from an item document. SourceURL and
// Category are supplied by the caller.
func (e *Extractor) Extract(doc *goquery.Document) RawItem {
	return RawItem{
		Title:          e.extractTitle(doc),
		DescriptionRaw: e.extractDescription(doc),
		Images:         e.extractImages(doc),
		ListedPrice:    extractClassedSpan(doc, "span.price"),
		Currency:       Currency,
		SellerLocation: extractClassedSpan(doc, "span.dealer-location"),
	}
}

// extractTitle returns the first top-level heading's text
func (e *Extractor) extractTitle(doc *goquery.Document) *string {
	titleSel := doc.Find("h1").First()
	if titleSel.Length() == 0 {
		return nil
	}
	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return nil
	}
	return &title
}

// extractDescription applies the description handlers in order and
// returns the first non-empty result.
func (e *Extractor) extractDescription(doc *goquery.Document) *string {
	for _, handler := range e.descriptionHandlers {
		if result := handler(doc); result != "" {
			return &result
		}
	}
	return nil
}

// ogDescriptionHandler reads the open-graph description meta tag
func ogDescriptionHandler(doc *goquery.Document) string {
	content, exists := doc.Find("meta[property='og:description']").First().Attr("content")
	if !exists {
		return ""
	}
	return strings.TrimSpace(content)
}

// jsonLDDescriptionHandler reads the description field of an embedded
// JSON-LD block. Only a top-level object counts; malformed JSON is
// skipped silently.
func jsonLDDescriptionHandler(doc *goquery.Document) string {
	block := doc.Find("script[type='application/ld+json']").First()
	if block.Length() == 0 {
		return ""
	}

	var structured map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block.Text()), &structured); err != nil {
		return ""
	}

	raw, ok := structured["description"]
	if !ok {
		return ""
	}
	var description string
	if err := json.Unmarshal(raw, &description); err != nil {
		return ""
	}
	return strings.TrimSpace(description)
}

// extractClassedSpan returns the trimmed text of the first element
// matching selector, or nil when absent or empty.
func extractClassedSpan(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return nil
	}
	return &text
}

// extractImages scans all image elements, resolves lazy-load sources,
// keeps CDN-hosted URLs, dedupes preserving first-seen order and caps
// the result.
func (e *Extractor) extractImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]struct{})

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src == "" {
			return
		}

		// Protocol-relative URLs are pinned to HTTPS
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}

		if !strings.Contains(src, e.imageCDNHost) {
			return
		}

		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	})

	if len(images) > maxImages {
		images = images[:maxImages]
	}
	return images
}
