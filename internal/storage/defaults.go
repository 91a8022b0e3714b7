package storage

import (
	"context"

	"ordercheck/internal/config"
	"ordercheck/internal/port"
	"ordercheck/internal/storage/gcs"
	"ordercheck/internal/storage/local"
	"ordercheck/internal/storage/s3"
)

// NewDefaultResolver registers the local filesystem, S3 and GCS backends from cfg.
func NewDefaultResolver(cfg *config.Config) *Resolver {
	r := NewResolver()
	r.Register(SchemeLocal, func(context.Context) (port.ObjectStorage, error) {
		return local.New(), nil
	})
	r.Register(SchemeS3, func(ctx context.Context) (port.ObjectStorage, error) {
		return s3.NewS3Client(ctx, &cfg.S3)
	})
	r.Register(SchemeGCS, func(ctx context.Context) (port.ObjectStorage, error) {
		return gcs.NewGCSClient(ctx, &cfg.GCS)
	})
	return r
}
