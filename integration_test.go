package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"atlasworker/helpers"
	"atlasworker/internal/enrich"
	"atlasworker/internal/pipeline"
	"atlasworker/internal/scraper"
	"atlasworker/services/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingHTML renders a category listing page with one link per item id
func listingHTML(ids []string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class='results'>")
	for _, id := range ids {
		fmt.Fprintf(&b, "<a href='/antique/%s'>item %s</a>", id, id)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

// itemHTML renders an item detail page carrying every extracted field
func itemHTML(id, title, description, price, location string) string {
	return fmt.Sprintf(`<html><head>
<meta property="og:description" content="%s">
</head><body>
<h1>%s</h1>
<span class="price">%s</span>
<span class="dealer-location">%s</span>
<img src="https://images.antiquesatlas.com/%s.jpg">
<img src="https://cdn.elsewhere.example/ad.jpg">
</body></html>`, description, title, price, location, id)
}

// stubInferencer returns fixed attributes for every item
type stubInferencer struct {
	calls int
}

func (s *stubInferencer) InferAttributes(_ context.Context, _, _, _ string) (*enrich.Attributes, error) {
	s.calls++
	return &enrich.Attributes{
		EraOrTimePeriod:    "Georgian",
		EstimatedYearRange: "1780-1820",
		RegionOfOrigin:     "England",
		FunctionalUse:      "storage",
		Material:           "mahogany",
		Style:              "Georgian",
		ShortSummary:       "A Georgian piece.",
		ConfidenceScore:    0.7,
	}, nil
}

type recordingPublisher struct {
	messages [][]byte
	trimmed  bool
}

func (p *recordingPublisher) Publish(message []byte) error {
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingPublisher) TrimStream() error {
	p.trimmed = true
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// TestPipelineEndToEnd runs every stage against a stub catalogue site:
// collection over HTTP, snapshots on disk, normalization, enrichment,
// CSV export and publishing.
func TestPipelineEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/antiques/furniture/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, listingHTML([]string{"chest", "chest", "table"}))
			return
		}
		fmt.Fprint(w, listingHTML(nil))
	})
	mux.HandleFunc("/antiques/silver/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			// The chest also appears under silver; the run-wide visited
			// set keeps it a furniture item
			fmt.Fprint(w, listingHTML([]string{"chest", "teapot"}))
			return
		}
		fmt.Fprint(w, listingHTML(nil))
	})
	mux.HandleFunc("/antique/chest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemHTML("chest", "Georgian Chest", "A fine Georgian mahogany chest of drawers.", "£1,250.00", "Bath"))
	})
	mux.HandleFunc("/antique/table", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemHTML("table", "Victorian Table", "A Victorian walnut occasional table in good order.", "POA", "York"))
	})
	mux.HandleFunc("/antique/teapot", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemHTML("teapot", "Silver Teapot", "too short", "£480", "London"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	walker := &scraper.Walker{
		BaseURL:         server.URL,
		ItemLinkPrefix:  "/antique/",
		Fetcher:         helpers.NewHTTPFetcher(5*time.Second, "Mozilla/5.0 (compatible; AtlasWorkerBot/1.0)"),
		Extractor:       scraper.NewExtractor("images.antiquesatlas.com"),
		MaxItems:        30,
		MaxPages:        30,
		StopOnPageError: true,
	}
	collector := &scraper.Collector{
		Walker: walker,
		Categories: []scraper.Category{
			{Name: "Furniture", Path: "/antiques/furniture/"},
			{Name: "Silver", Path: "/antiques/silver/"},
		},
	}

	dir := t.TempDir()
	paths := pipeline.Paths{
		Raw:       filepath.Join(dir, "raw.json"),
		Clean:     filepath.Join(dir, "clean.json"),
		Final:     filepath.Join(dir, "final.json"),
		ExportCSV: filepath.Join(dir, "final.csv"),
	}

	inferencer := &stubInferencer{}
	pub := &recordingPublisher{}

	p := &pipeline.Pipeline{
		Collector: collector,
		Store:     snapshot.NewStore(),
		Enricher:  enrich.NewEnricher(inferencer, 0),
		Publisher: pub,
		Paths:     paths,
	}

	require.NoError(t, p.Run(context.Background()))

	// Three distinct items collected; the duplicate chest link is
	// fetched once and attributed to furniture
	var raw []scraper.RawItem
	require.NoError(t, snapshot.NewStore().Load(paths.Raw, &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, "Furniture", raw[0].Category)
	assert.Equal(t, server.URL+"/antique/chest", raw[0].SourceURL)
	require.NotNil(t, raw[0].Title)
	assert.Equal(t, "Georgian Chest", *raw[0].Title)
	require.NotNil(t, raw[0].ListedPrice)
	assert.Equal(t, "£1,250.00", *raw[0].ListedPrice)
	assert.Equal(t, []string{"https://images.antiquesatlas.com/chest.jpg"}, raw[0].Images)

	var final []enrich.EnrichedItem
	require.NoError(t, snapshot.NewStore().Load(paths.Final, &final))
	require.Len(t, final, 3)
	assert.Equal(t, 3, inferencer.calls)

	byURL := map[string]enrich.EnrichedItem{}
	for _, rec := range final {
		byURL[rec.SourceURL] = rec
	}

	chest := byURL[server.URL+"/antique/chest"]
	assert.Equal(t, "furniture", chest.CategoryNormalized)
	require.NotNil(t, chest.PriceValue)
	assert.Equal(t, 1250.0, *chest.PriceValue)
	assert.Equal(t, "Georgian", chest.EraOrTimePeriod)

	table := byURL[server.URL+"/antique/table"]
	assert.Nil(t, table.PriceValue, "POA listings carry no numeric price")

	teapot := byURL[server.URL+"/antique/teapot"]
	assert.Nil(t, teapot.DescriptionClean, "short descriptions are dropped")
	require.NotNil(t, teapot.DescriptionRaw)

	data, err := os.ReadFile(paths.ExportCSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Georgian Chest")
	assert.Contains(t, string(data), "Victorian Table")

	require.Len(t, pub.messages, 3)
	var published enrich.EnrichedItem
	require.NoError(t, json.Unmarshal(pub.messages[0], &published))
	assert.Equal(t, "GBP", published.Currency)
	assert.True(t, pub.trimmed)
}
