package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"atlasworker/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "raw", "snapshot.json")

	items := []scraper.RawItem{
		{
			SourceURL:      "https://a.example/antique/1",
			Title:          strPtr("Georgian Chest"),
			Category:       "Furniture",
			DescriptionRaw: strPtr("A fine Georgian chest."),
			Images:         []string{"https://images.antiquesatlas.com/1.jpg"},
			ListedPrice:    strPtr("£1,250.00"),
			Currency:       "GBP",
			SellerLocation: strPtr("Bath"),
		},
		{
			// Absent optional fields round-trip as null
			SourceURL: "https://a.example/antique/2",
			Category:  "Silver",
			Currency:  "GBP",
		},
	}

	require.NoError(t, store.Save(path, items))

	var loaded []scraper.RawItem
	require.NoError(t, store.Load(path, &loaded))
	assert.Equal(t, items, loaded)

	// Nulls are explicit in the file
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_title": null`)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore()
	var out []scraper.RawItem
	err := store.Load(filepath.Join(t.TempDir(), "missing.json"), &out)
	assert.Error(t, err)
}

func TestStoreSaveCreatesDirectories(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "data", "final", "deep", "out.json")
	require.NoError(t, store.Save(path, []string{"x"}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
