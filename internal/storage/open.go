package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsync/internal/config"
)

// Open creates the Storage driver selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMinIO:
		return NewMinIO(cfg.MinIO)
	case config.DriverS3:
		return NewS3(ctx, cfg.S3)
	case config.DriverLocal:
		return NewLocal(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL, log)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
