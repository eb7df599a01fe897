// Package blob looks up uploaded files in S3-compatible object storage.
// File bytes are never read; only object metadata is fetched.
package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Store fetches object metadata from a single bucket.
type Store struct {
	client  *minio.Client
	bucket  string
	timeout time.Duration
}

// New creates a Store from storage settings.
func New(cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, timeout: cfg.LookupTimeout}, nil
}

// Stat returns the metadata of ref. A missing object yields
// domain.ErrFileNotFound; any other failure, including the lookup timeout,
// yields domain.ErrStorageUnavailable.
func (s *Store) Stat(ctx context.Context, ref string) (domain.FileMeta, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	info, err := s.client.StatObject(ctx, s.bucket, ref, minio.StatObjectOptions{})
	if err != nil {
		return domain.FileMeta{}, classify(ref, err)
	}

	return domain.FileMeta{
		Ref:         ref,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func classify(ref string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.NewReviewError(domain.CodeStorageUnavailable, "lookup of %s timed out", ref), err)
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return domain.NewReviewError(domain.CodeFileNotFound, "file %s does not exist", ref)
	}
	return fmt.Errorf("%w: %v", domain.NewReviewError(domain.CodeStorageUnavailable, "lookup of %s failed", ref), err)
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", s.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
