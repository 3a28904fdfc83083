// Package storage builds a types.Backend from configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/s3fs-fuse/dirstore/internal/config"
	"github.com/s3fs-fuse/dirstore/internal/credentials"
	"github.com/s3fs-fuse/dirstore/internal/s3client"
	"github.com/s3fs-fuse/dirstore/internal/storage/local"
	"github.com/s3fs-fuse/dirstore/internal/storage/minio"
	"github.com/s3fs-fuse/dirstore/internal/storage/mongodb"
	"github.com/s3fs-fuse/dirstore/internal/storage/object"
	"github.com/s3fs-fuse/dirstore/internal/storage/postgres"
	"github.com/s3fs-fuse/dirstore/internal/storage/types"
)

// NewBackend creates the backend selected by cfg.Backend. Object-store
// backends hold a connection; callers should close the result when it
// implements io.Closer.
func NewBackend(ctx context.Context, cfg config.StorageConfig) (types.Backend, error) {
	if cfg.Backend == config.BackendLocal {
		return local.New(cfg.Local.Root)
	}

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []object.Option
	if cfg.ImpliedDirs {
		opts = append(opts, object.WithImpliedDirs())
	}
	return object.New(store, opts...), nil
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (types.ObjectStore, error) {
	switch cfg.Backend {
	case config.BackendS3:
		creds, err := credentials.Load(cfg.S3.PasswdFile, cfg.S3.Bucket)
		if err != nil {
			return nil, err
		}
		return s3client.NewClient(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint, creds)

	case config.BackendMinIO:
		creds := &credentials.Credentials{
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
		}
		if !creds.IsValid() {
			var err error
			if creds, err = credentials.Load(cfg.MinIO.PasswdFile, cfg.MinIO.Bucket); err != nil {
				return nil, err
			}
		}
		return minio.Dial(cfg.MinIO.Endpoint, cfg.MinIO.Bucket, cfg.MinIO.Region, cfg.MinIO.Secure, creds)

	case config.BackendPostgres:
		return postgres.NewStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Table, cfg.Postgres.Bucket)

	case config.BackendMongoDB:
		return mongodb.NewStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Collection, cfg.MongoDB.Bucket)

	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend)
	}
}
