// Package blob stores uploaded images in an S3-compatible bucket (MinIO).
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/api/metrics"
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the MinIO-backed blob store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which objects are served, e.g.
	// https://cdn.example.com. Defaults to the endpoint.
	PublicURL string
	Timeout   time.Duration
}

// MinioStore implements ports.BlobStore. The handle of a stored image is its
// object key.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewMinioStore connects to the endpoint and creates the bucket if needed.
func NewMinioStore(ctx context.Context, cfg Config, log zerolog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	s := &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		timeout:   timeout,
		log:       log,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("created blob bucket")
	}
	return s, nil
}

func (s *MinioStore) Upload(ctx context.Context, in ports.BlobUpload) (domain.ImageRef, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := objectKey(in.Folder, in.Filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		metrics.BlobOperationsTotal.WithLabelValues("upload", "error").Inc()
		return domain.ImageRef{}, fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.BlobOperationsTotal.WithLabelValues("upload", "ok").Inc()

	s.log.Debug().Str("key", key).Int64("size", in.Size).Msg("image uploaded")
	return domain.ImageRef{URL: s.objectURL(key), Handle: key}, nil
}

func (s *MinioStore) Delete(ctx context.Context, handle string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, handle, minio.RemoveObjectOptions{}); err != nil {
		metrics.BlobOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("remove object %s: %w", handle, err)
	}
	metrics.BlobOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Ping reports whether the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *MinioStore) objectURL(key string) string {
	return s.publicURL + "/" + s.bucket + "/" + key
}

// objectKey builds <folder>/<uuid><ext>. The client-supplied name only
// contributes its extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

func publicBase(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
