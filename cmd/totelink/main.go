package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/totelink/totelink/internal/blobstore"
	localblob "github.com/totelink/totelink/internal/blobstore/local"
	minioblob "github.com/totelink/totelink/internal/blobstore/minio"
	"github.com/totelink/totelink/internal/config"
	"github.com/totelink/totelink/internal/db"
	"github.com/totelink/totelink/internal/logging"
	"github.com/totelink/totelink/internal/service"
	"github.com/totelink/totelink/internal/store"
	"github.com/totelink/totelink/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

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

	blobs, err := newBlobStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}

	svc := service.NewToteService(
		store.NewToteStore(database),
		store.NewToteImageStore(database),
		store.NewItemStore(database),
		store.NewItemImageStore(database),
		blobs,
		logger,
	)
	server := web.NewServer(svc, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newBlobStore(cfg *config.Config, logger *slog.Logger) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case "minio":
		logger.Info("using minio blob backend", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		return minioblob.New(context.Background(), minioblob.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		logger.Info("using local blob backend", "path", cfg.BlobLocalPath)
		return localblob.New(cfg.BlobLocalPath)
	}
}
