package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/pdf-annotator/pkg/lifecycle"
)

// objectStore implements System against an S3-compatible bucket.
// Path downloads the object into cacheDir so that disk-bound collaborators
// (the rasterizer) can read it.
type objectStore struct {
	client   *minio.Client
	bucket   string
	region   string
	cacheDir string
	logger   *slog.Logger
}

func newObjectStore(cfg *Config, logger *slog.Logger) (*objectStore, error) {
	client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
		Region: cfg.S3.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	cacheDir, err := filepath.Abs(cfg.S3.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache_dir: %w", err)
	}

	return &objectStore{
		client:   client,
		bucket:   cfg.S3.Bucket,
		region:   cfg.S3.Region,
		cacheDir: cacheDir,
		logger:   logger.With("system", "storage", "backend", BackendS3),
	}, nil
}

func (s *objectStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system", "bucket", s.bucket, "cache_dir", s.cacheDir)

	ctx := lc.Context()
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("bucket created", "bucket", s.bucket)
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("create cache_dir: %w", err)
	}
	return nil
}

func (s *objectStore) Store(ctx context.Context, key string, data []byte) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: http.DetectContentType(data)}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	s.evict(key)
	return nil
}

func (s *objectStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err, "get object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapObjectError(err, "read object")
	}
	return data, nil
}

func (s *objectStore) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if mapped := mapObjectError(err, "remove object"); mapped != ErrNotFound {
			return mapped
		}
	}

	s.evict(key)
	return nil
}

func (s *objectStore) Validate(ctx context.Context, key string) (bool, error) {
	key, err := CleanKey(key)
	if err != nil {
		return false, err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		mapped := mapObjectError(err, "stat object")
		if mapped == ErrNotFound {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

func (s *objectStore) Path(ctx context.Context, key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	local := s.cachePath(key)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	if err := s.client.FGetObject(ctx, s.bucket, key, local, minio.GetObjectOptions{}); err != nil {
		return "", mapObjectError(err, "download object")
	}
	return local, nil
}

func (s *objectStore) cachePath(key string) string {
	return filepath.Join(s.cacheDir, filepath.FromSlash(key))
}

// evict drops the local copy so the next Path call downloads fresh bytes.
func (s *objectStore) evict(key string) {
	if err := os.Remove(s.cachePath(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("cache eviction failed", "key", key, "error", err)
	}
}

func mapObjectError(err error, op string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrNotFound
	case "AccessDenied":
		return ErrPermissionDenied
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
