package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"atlasworker/config"
	"atlasworker/helpers"
	"atlasworker/internal/enrich"
	"atlasworker/internal/pipeline"
	"atlasworker/internal/scraper"
	"atlasworker/logger"
	"atlasworker/services/cache"
	"atlasworker/services/publisher"
	"atlasworker/services/snapshot"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("site", cfg.BaseSiteURL).
		Int("categories", len(cfg.Categories)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	p := buildPipeline(&cfg, services)

	// Run the pipeline in a goroutine
	runDone := make(chan error, 1)
	go func() {
		runDone <- p.Run(ctx)
	}()

	// Wait for shutdown signal or run completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-runDone
	case err := <-runDone:
		if err != nil {
			log.Error().Err(err).Msg("Pipeline run failed")
		} else {
			log.Info().Msg("Pipeline run finished")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds the optional external collaborators of a run
type Services struct {
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Inferencer enrich.Inferencer
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires the optional services. Each one is skipped
// with a warning when its configuration is absent; a run with none of
// them still produces the snapshot files.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	log := logger.Default
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
	} else {
		log.Warn().Msg("MEMCACHE_ADDR not set, running without a fetch block cache")
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		log.Info().
			Str("addr", cfg.RedisAddr).
			Int("db", cfg.RedisDB).
			Str("stream", cfg.RedisStream).
			Msg("Connected to Redis")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, running without a record stream")
	}

	if cfg.CohereAPIKey != "" {
		services.Inferencer = enrich.NewCohereInferencer(cfg.CohereAPIKey, cfg.CohereModel, cfg.EnrichTimeout)
		log.Info().Str("model", cfg.CohereModel).Msg("Cohere inferencer configured")
	} else {
		log.Warn().Msg("COHERE_API_KEY not set, enrichment will be skipped")
	}

	return services
}

// buildPipeline assembles the pipeline stages from the configuration
func buildPipeline(cfg *config.Config, services *Services) *pipeline.Pipeline {
	fetcher := helpers.NewHTTPFetcher(cfg.RequestTimeout, cfg.UserAgent)

	walker := &scraper.Walker{
		BaseURL:        cfg.BaseSiteURL,
		ItemLinkPrefix: cfg.ItemLinkPrefix,
		Fetcher:        fetcher,
		Extractor:      scraper.NewExtractor(cfg.ImageCDNHost),
		CacheSvc:       services.Cache,
		BlockTime:      cfg.BlockTime,

		MaxItems:        cfg.MaxItemsPerCategory,
		MaxPages:        cfg.MaxPagesToScan,
		Pause:           cfg.RequestPause,
		StopOnPageError: cfg.StopOnPageError,
	}

	categories := make([]scraper.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, scraper.Category{Name: c.Name, Path: c.Path})
	}

	p := &pipeline.Pipeline{
		Collector: &scraper.Collector{Walker: walker, Categories: categories},
		Store:     snapshot.NewStore(),
		Publisher: services.Publisher,
		Paths: pipeline.Paths{
			Raw:       cfg.RawSnapshotPath,
			Clean:     cfg.CleanSnapshotPath,
			Final:     cfg.FinalSnapshotPath,
			ExportCSV: cfg.ExportCSVPath,
		},
	}

	if services.Inferencer != nil {
		p.Enricher = enrich.NewEnricher(services.Inferencer, cfg.EnrichPause)
	}

	return p
}
