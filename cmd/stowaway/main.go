package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/stowaway/internal/config"
	"github.com/vbonduro/stowaway/internal/db"
	"github.com/vbonduro/stowaway/internal/logging"
	"github.com/vbonduro/stowaway/internal/photostore"
	"github.com/vbonduro/stowaway/internal/photostore/local"
	s3store "github.com/vbonduro/stowaway/internal/photostore/s3"
	"github.com/vbonduro/stowaway/internal/service"
	"github.com/vbonduro/stowaway/internal/store"
	"github.com/vbonduro/stowaway/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	source := store.NewSource(database)
	svc, err := service.NewInventoryService(service.Repositories{
		Source:     source,
		Places:     source.Places,
		Containers: source.Containers,
		Items:      source.Items,
		Groups:     source.Groups,
		Photos:     store.NewPhotoStore(database),
		Activity:   store.NewActivityStore(database),
	}, photoStg, service.Options{
		SearchCacheSize:      cfg.SearchCacheSize,
		LoaderMaxConcurrency: cfg.LoaderMaxConcurrency,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize inventory service", "error", err)
		return
	}

	server := web.NewServer(svc, logger)
	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		logger.Info("using s3 photo backend", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			PathStyle:    cfg.S3PathStyle,
			CacheControl: cfg.S3CacheControl,
		})
	default:
		logger.Info("using local photo backend", "path", cfg.PhotoPath)
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	}
}
