package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/config"
)

// New builds the Uploader selected by cfg.StorageProvider. It fails when the
// provider refuses the configured credentials.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Uploader, error) {
	switch cfg.StorageProvider {
	case config.ProviderCloudinary:
		store, err := NewCloudinaryStorage(ctx, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		log.Info("storage: cloudinary ready", zap.String("cloud", cfg.CloudinaryCloudName))
		return store, nil
	case config.ProviderS3:
		store, err := NewMinioStorage(ctx, log,
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
		if err != nil {
			return nil, err
		}
		log.Info("storage: s3 ready", zap.String("endpoint", cfg.StorageEndpoint), zap.String("bucket", cfg.StorageBucket))
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage provider %q", config.ErrInvalidConfig, cfg.StorageProvider)
	}
}
