package imageurl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
)

// s3Client defines the minimal minio.Client operations used by S3Builder.
// This interface enables testing with mock implementations.
type s3Client interface {
	PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// S3Builder returns pre-signed GET URLs for objects in an S3-compatible
// bucket. References are object keys. Transform options are not supported
// by plain object storage and are ignored.
type S3Builder struct {
	client    s3Client
	bucket    string
	urlExpiry time.Duration
}

// NewS3Builder creates a builder for the configured bucket.
func NewS3Builder(cfg config.S3Config) (*S3Builder, error) {
	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return &S3Builder{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: time.Duration(cfg.URLExpiry),
	}, nil
}

// Name returns "s3".
func (b *S3Builder) Name() string { return config.ImageProviderS3 }

// URL returns a pre-signed GET URL for the object key ref.
func (b *S3Builder) URL(ctx context.Context, ref string, _ Options) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	key := strings.TrimPrefix(ref, "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty object key", ErrInvalidRef)
	}

	presigned, err := b.client.PresignedGetObject(ctx, b.bucket, key, b.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("generate pre-signed URL: %w", err)
	}
	return presigned.String(), nil
}
