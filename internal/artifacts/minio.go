package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store holds serialized neural-model weights in object storage, keyed by
// model id. Model metadata stays in the document store; only the binary
// artifact lives here.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore creates the MinIO client and ensures the artifact bucket exists.
func NewStore(cfg *MinIOConfig) (*Store, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &Store{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Key returns the object key for a model's weight blob.
func Key(modelID string) string {
	return "models/" + modelID + "/weights.bin"
}

// Upload stores a model artifact under the model's key.
func (s *Store) Upload(ctx context.Context, modelID string, reader io.Reader, size int64, contentType string) (string, error) {
	key := Key(modelID)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Download returns a ReadCloser for a model's stored artifact.
func (s *Store) Download(ctx context.Context, modelID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, Key(modelID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// perform a stat to ensure object exists
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// PresignedURL returns a presigned GET URL for a model artifact. The object
// is stat'ed first: presigning alone would happily sign a URL for a model
// that never uploaded weights.
func (s *Store) PresignedURL(ctx context.Context, modelID string, expires time.Duration) (string, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, Key(modelID), minio.StatObjectOptions{}); err != nil {
		return "", err
	}
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, Key(modelID), expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
