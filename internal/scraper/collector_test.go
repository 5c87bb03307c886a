package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSharedVisitedSet(t *testing.T) {
	fetcher := newMockFetcher()

	// The same item is reachable from both categories
	fetcher.pages[testBaseURL+"/antiques/silver/?page=1"] = listingPage("/antique/shared", "/antique/s1")
	fetcher.pages[testBaseURL+"/antiques/silver/?page=2"] = "<html></html>"
	fetcher.pages[testBaseURL+"/antiques/jewellery/?page=1"] = listingPage("/antique/shared", "/antique/j1")
	fetcher.pages[testBaseURL+"/antiques/jewellery/?page=2"] = "<html></html>"
	fetcher.pages[testBaseURL+"/antique/shared"] = itemPage("Shared Brooch", "£500")
	fetcher.pages[testBaseURL+"/antique/s1"] = itemPage("Silver Spoon", "£80")
	fetcher.pages[testBaseURL+"/antique/j1"] = itemPage("Gold Ring", "£900")

	collector := &Collector{
		Walker: newTestWalker(fetcher, 30, 30),
		Categories: []Category{
			{Name: "Silver", Path: "/antiques/silver/"},
			{Name: "Jewellery", Path: "/antiques/jewellery/"},
		},
	}

	items := collector.Collect()
	require.Len(t, items, 3)

	// Category order, then discovery order
	assert.Equal(t, testBaseURL+"/antique/shared", items[0].SourceURL)
	assert.Equal(t, testBaseURL+"/antique/s1", items[1].SourceURL)
	assert.Equal(t, testBaseURL+"/antique/j1", items[2].SourceURL)

	// The shared item belongs to the category whose walk found it first
	assert.Equal(t, "Silver", items[0].Category)
	assert.Equal(t, "Jewellery", items[2].Category)
}

func TestCollectorEmptyCategories(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages[testBaseURL+"/antiques/lighting/?page=1"] = "<html><body>no links</body></html>"

	collector := &Collector{
		Walker:     newTestWalker(fetcher, 30, 30),
		Categories: []Category{{Name: "Lighting", Path: "/antiques/lighting/"}},
	}

	items := collector.Collect()
	assert.Empty(t, items)
}
