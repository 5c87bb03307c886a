package scraper

import (
	"io"
	"sync"
)

// Currency is the listing currency for this source. Every price on the
// catalogue is quoted in pounds sterling.
const Currency = "GBP"

// RawItem represents one successfully fetched item page. Optional fields
// are pointers so absent values round-trip as null in snapshots.
type RawItem struct {
	SourceURL      string   `json:"source_url"`
	Title          *string  `json:"item_title"`
	Category       string   `json:"category"`
	DescriptionRaw *string  `json:"description_raw"`
	Images         []string `json:"images"`
	ListedPrice    *string  `json:"listed_price"`
	Currency       string   `json:"currency"`
	SellerLocation *string  `json:"seller_location"`
}

// Category pairs a display name with its listing path on the source site
type Category struct {
	Name string
	Path string
}

// Fetcher retrieves a page body for a URL
type Fetcher interface {
	Fetch(url string) (io.Reader, error)
}

// VisitedSet tracks item URLs already fetched in the current run. It is
// shared across all category walks so an item reachable from two
// categories is only fetched once.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty visited set
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add marks url as visited. It returns false when the URL was already
// present, so check-and-mark is a single atomic step.
func (v *VisitedSet) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

// Contains reports whether url has been visited
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of visited URLs
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}

// SkippedItem records an item URL that was dropped during a walk,
// together with the error that caused the drop.
type SkippedItem struct {
	URL string
	Err error
}

// WalkStats summarizes a single category walk
type WalkStats struct {
	PagesScanned int
	Collected    int
	Skipped      []SkippedItem
}
