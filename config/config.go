package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Category pairs a display name with its listing path on the source site.
// Walk order follows slice order.
type Category struct {
	Name string
	Path string
}

// defaultCategories lists the catalogue sections collected per run.
// Display names feed the raw records; paths are appended to BaseSiteURL.
var defaultCategories = []Category{
	{Name: "Furniture", Path: "/antiques/furniture/"},
	{Name: "Ceramics", Path: "/antiques/ceramics/"},
	{Name: "Decorative Art", Path: "/antiques/decorative/"},
	{Name: "Silver", Path: "/antiques/silver/"},
	{Name: "Jewellery", Path: "/antiques/jewellery/"},
	{Name: "Lighting", Path: "/antiques/lighting/"},
}

// Config represents the application configuration
type Config struct {
	// Source site
	BaseSiteURL    string
	ItemLinkPrefix string
	ImageCDNHost   string
	UserAgent      string
	Categories     []Category

	// Walk limits
	MaxItemsPerCategory int
	MaxPagesToScan      int
	RequestPause        time.Duration
	RequestTimeout      time.Duration
	StopOnPageError     bool

	// Snapshot and export paths
	RawSnapshotPath   string
	CleanSnapshotPath string
	FinalSnapshotPath string
	ExportCSVPath     string

	// Enrichment
	CohereAPIKey  string
	CohereModel   string
	EnrichPause   time.Duration
	EnrichTimeout time.Duration

	// Memcache configuration (optional block cache)
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis configuration (optional record stream)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	maxItems, _ := strconv.Atoi(getEnv("MAX_ITEMS_PER_CATEGORY", "30"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES_TO_SCAN", "30"))
	requestPauseMs, _ := strconv.Atoi(getEnv("REQUEST_PAUSE_MS", "700"))
	requestTimeoutSec, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "15"))
	enrichPauseMs, _ := strconv.Atoi(getEnv("ENRICH_PAUSE_MS", "600"))
	enrichTimeoutSec, _ := strconv.Atoi(getEnv("ENRICH_TIMEOUT_SECONDS", "60"))
	blockTimeSec, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "500"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	stopOnPageError, _ := strconv.ParseBool(getEnv("STOP_ON_PAGE_ERROR", "true"))

	return Config{
		BaseSiteURL:    getEnv("BASE_SITE_URL", "https://www.antiques-atlas.com"),
		ItemLinkPrefix: getEnv("ITEM_LINK_PREFIX", "/antique/"),
		ImageCDNHost:   getEnv("IMAGE_CDN_HOST", "images.antiquesatlas.com"),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (compatible; AtlasWorkerBot/1.0)"),
		Categories:     defaultCategories,

		MaxItemsPerCategory: maxItems,
		MaxPagesToScan:      maxPages,
		RequestPause:        time.Duration(requestPauseMs) * time.Millisecond,
		RequestTimeout:      time.Duration(requestTimeoutSec) * time.Second,
		StopOnPageError:     stopOnPageError,

		RawSnapshotPath:   getEnv("RAW_SNAPSHOT_PATH", "data/raw/antiques_atlas_raw.json"),
		CleanSnapshotPath: getEnv("CLEAN_SNAPSHOT_PATH", "data/clean/antiques_atlas_clean.json"),
		FinalSnapshotPath: getEnv("FINAL_SNAPSHOT_PATH", "data/final/antiques_atlas_enriched.json"),
		ExportCSVPath:     getEnv("EXPORT_CSV_PATH", "data/final/antiques_atlas_enriched.csv"),

		CohereAPIKey:  getEnv("COHERE_API_KEY", ""),
		CohereModel:   getEnv("COHERE_MODEL", "command-r-08-2024"),
		EnrichPause:   time.Duration(enrichPauseMs) * time.Millisecond,
		EnrichTimeout: time.Duration(enrichTimeoutSec) * time.Second,

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		BlockTime:    time.Duration(blockTimeSec) * time.Second,

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "antiques"),
		RedisStreamMaxLength: redisStreamMaxLength,

		Environment: getEnv("ATLAS_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	if c.BaseSiteURL == "" {
		return fmt.Errorf("base site URL must be set")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category must be configured")
	}
	if c.MaxItemsPerCategory <= 0 {
		return fmt.Errorf("max items per category must be positive, got %d", c.MaxItemsPerCategory)
	}
	if c.MaxPagesToScan <= 0 {
		return fmt.Errorf("max pages to scan must be positive, got %d", c.MaxPagesToScan)
	}
	if c.RequestPause < 0 {
		return fmt.Errorf("request pause must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.RawSnapshotPath == "" || c.CleanSnapshotPath == "" || c.FinalSnapshotPath == "" {
		return fmt.Errorf("snapshot paths must be set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
