// cmd/worker-manager/main.go
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"deal-hunter/internal/api"
	"deal-hunter/internal/common/aws"
	"deal-hunter/internal/common/camunda"
	"deal-hunter/internal/common/config"
	"deal-hunter/internal/common/database"
	commonhttp "deal-hunter/internal/common/http"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/observability"
	"deal-hunter/internal/common/serpapi"
	"deal-hunter/internal/common/storage"
	"deal-hunter/pkg/registry"

	gpv "deal-hunter/internal/workers/ai-copy/generate-product-vibe"
	rdd "deal-hunter/internal/workers/deals/refresh-daily-deals"
	epi "deal-hunter/internal/workers/product/extract-page-image"
	sp "deal-hunter/internal/workers/product/search-product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("Starting worker manager", map[string]interface{}{"environment": cfg.App.Environment})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("observability exporter unavailable", map[string]interface{}{"error": err})
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected", nil)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "PostgreSQL connection", func() error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	log.Info("PostgreSQL connected", nil)

	// --- Redis ---
	var rdb *database.RedisClient
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "Redis connection", func() error {
		var err error
		if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return rdb.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connected", nil)

	// --- External services ---
	s3Client, err := aws.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		zapLog.Fatal("s3 client init failed", zap.Error(err))
	}
	store := storage.NewTransientStore(s3Client, cfg.Storage)

	var notifier *rdd.Notifier
	if cfg.Deals.NotifyTopicARN != "" {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Storage.Region)
		if err != nil {
			log.Warn("sns client init failed, deal notifications disabled", map[string]interface{}{"error": err})
		} else {
			notifier = rdd.NewNotifier(snsClient, cfg.Deals.NotifyTopicARN)
		}
	}

	serp, err := serpapi.NewClient(cfg.SerpAPI, cfg.Market)
	if err != nil {
		zapLog.Fatal("serpapi client init failed", zap.Error(err))
	}

	var generator gpv.Generator
	if gemini, err := gpv.NewGeminiGenerator(ctx, cfg.GenAI); err != nil {
		log.Warn("vibe generation disabled", map[string]interface{}{"error": err})
	} else {
		defer gemini.Close()
		generator = gemini
	}

	matcher := loadMatcher(cfg.Trust, log)
	log.Info("External service clients initialized", map[string]interface{}{
		"trustedKeywords": len(matcher.Keywords()),
	})

	// --- Handlers ---
	pageFetcher := commonhttp.NewClient(
		config.GetDuration(cfg.Scraper.Timeout),
		commonhttp.WithUserAgent(cfg.Scraper.UserAgent),
		commonhttp.WithMaxBodyBytes(cfg.Scraper.MaxPageBytes),
	)
	extractCfg := epi.LoadConfig(cfg)
	extractor := epi.NewExtractor(extractCfg, pageFetcher, rdb.Client, log)
	extractHandler := epi.NewHandler(extractCfg, extractor, log)

	searchCfg := sp.LoadConfig(cfg)
	searchHandler := sp.NewHandler(searchCfg, sp.NewResolver(store, searchCfg.MaxUploadBytes), serp, matcher, log)

	dealStore := rdd.NewStore(pg.DB)
	if err := dealStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("daily_deals schema setup failed", zap.Error(err))
	}
	dealsCfg := rdd.LoadConfig(cfg)
	dealsHandler := rdd.NewHandler(dealsCfg, serp, dealStore, notifier, log)

	vibeHandler := gpv.NewHandler(gpv.LoadConfig(cfg), generator, rdb.Client, log)

	// --- Workers ---
	client := zeebe.GetClient()
	jobWorkers := []worker.JobWorker{
		camunda.StartWorker(client, sp.TaskType, config.GetWorkerConfig(cfg, sp.TaskType), searchHandler, obs, log),
		camunda.StartWorker(client, epi.TaskType, config.GetWorkerConfig(cfg, epi.TaskType), extractHandler, obs, log),
		camunda.StartWorker(client, rdd.TaskType, config.GetWorkerConfig(cfg, rdd.TaskType), dealsHandler, obs, log),
		camunda.StartWorker(client, gpv.TaskType, config.GetWorkerConfig(cfg, gpv.TaskType), vibeHandler, obs, log),
	}

	var scheduler *rdd.Scheduler
	if cfg.Deals.Schedule != "" {
		scheduler, err = rdd.NewScheduler(cfg.Deals.Schedule, dealsHandler, dealsCfg.Timeout, log)
		if err != nil {
			zapLog.Fatal("deals scheduler init failed", zap.Error(err))
		}
		scheduler.Start()
		log.Info("deals scheduler started", map[string]interface{}{
			"schedule": cfg.Deals.Schedule,
			"nextRun":  scheduler.NextRun().Format(time.RFC3339),
		})
	}

	// --- HTTP API ---
	handler := api.NewHandler(api.Dependencies{
		Searcher:  searchHandler,
		Extractor: extractor,
		Deals:     dealStore,
		Vibe:      vibeHandler,
		ReadinessChecks: map[string]api.ReadinessCheck{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
			"zeebe":    zeebe.HealthCheck,
		},
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}, log)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(handler, cfg.Server, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", map[string]interface{}{"error": err})
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	for _, w := range jobWorkers {
		if w != nil {
			w.Close()
			w.AwaitClose()
		}
	}

	log.Info("Worker manager stopped gracefully", nil)
}

// loadMatcher reads the trust registry file, falling back to the built-in
// keywords, and adds any keywords set directly in config.
func loadMatcher(cfg config.TrustConfig, log logger.Logger) *registry.Matcher {
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		log.Warn("trust registry unavailable, using defaults", map[string]interface{}{
			"path":  cfg.RegistryPath,
			"error": err,
		})
		reg = registry.Default()
	} else if err := reg.Validate(); err != nil {
		log.Warn("trust registry invalid, using defaults", map[string]interface{}{
			"path":  cfg.RegistryPath,
			"error": err,
		})
		reg = registry.Default()
	}
	return registry.NewMatcher(append(reg.Keywords(), cfg.Keywords...))
}
