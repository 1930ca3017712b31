// Command snapshot exports the courses, modules and lessons collections to
// MinIO once and exits. It takes the same collection locks as the server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/gogotex/gogotex/backend/course-service/internal/bootstrap"
	"github.com/gogotex/gogotex/backend/course-service/internal/config"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MinIO.Endpoint == "" {
		logger.Fatalf("MINIO_ENDPOINT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open record store: %v", err)
	}
	defer deps.Close(context.Background())

	exporter, err := deps.Exporter(ctx)
	if err != nil {
		logger.Fatalf("minio: %v", err)
	}
	keys, err := exporter.Export(ctx)
	if err != nil {
		logger.Fatalf("export failed: %v", err)
	}
	for _, k := range keys {
		logger.Infof("wrote %s", k)
	}
}
