package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const (
	reportPrefix = "reports/"
	lookbackDays = 7
)

// MinIOStorage stores report PDFs in object storage under date-prefixed
// keys. Expiry rides in user metadata; CleanupExpired sweeps it.
type MinIOStorage struct {
	client     *minio.Client
	presign    *minio.Client
	bucketName string
	publicURL  *url.URL
	logger     *zap.SugaredLogger
}

func NewMinIOStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, publicURL string, logger *zap.SugaredLogger) (*MinIOStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	parsedPublicURL, err := url.Parse(publicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public minio url: %w", err)
	}
	if parsedPublicURL.Scheme == "" || parsedPublicURL.Host == "" {
		return nil, fmt.Errorf("invalid public minio url: scheme and host are required")
	}

	// presigning must use the host the browser will request: the host
	// header is part of the signed request
	publicSecure := parsedPublicURL.Scheme == "https"
	presignClient, err := minio.New(parsedPublicURL.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: publicSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create presign minio client: %w", err)
	}

	storage := &MinIOStorage{
		client:     client,
		presign:    presignClient,
		bucketName: bucketName,
		publicURL:  parsedPublicURL,
		logger:     logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Infow("bucket created", "bucket", bucketName)
	}

	logger.Infow("minio storage initialized", "endpoint", endpoint, "bucket", bucketName)

	return storage, nil
}

func objectKeyFor(t time.Time, key string) string {
	return fmt.Sprintf("%s%d/%02d/%02d/%s", reportPrefix, t.Year(), t.Month(), t.Day(), key)
}

// findObjectKey resolves a bare key to its date-prefixed object key by
// checking the last lookbackDays days, newest first.
func (s *MinIOStorage) findObjectKey(ctx context.Context, key string) (string, bool) {
	now := time.Now().UTC()
	for i := 0; i < lookbackDays; i++ {
		objectKey := objectKeyFor(now.AddDate(0, 0, -i), key)
		if _, err := s.client.StatObject(ctx, s.bucketName, objectKey, minio.StatObjectOptions{}); err == nil {
			return objectKey, true
		}
	}
	return "", false
}

func (s *MinIOStorage) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	objectKey := objectKeyFor(now, key)

	expiresAt := now.Add(ttl)
	userMetadata := map[string]string{
		"expire-at": expiresAt.Format(time.RFC3339),
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/pdf",
		UserMetadata: userMetadata,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	s.logger.Debugw("report stored", "key", objectKey, "size", len(data), "expires_at", expiresAt)

	return nil
}

func (s *MinIOStorage) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey, found := s.findObjectKey(ctx, key)
	if !found {
		return nil, fmt.Errorf("report not found")
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	objInfo, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	if expireAt, ok := objInfo.UserMetadata["X-Amz-Meta-Expire-At"]; ok {
		expireTime, err := time.Parse(time.RFC3339, expireAt)
		if err == nil && time.Now().UTC().After(expireTime) {
			return nil, fmt.Errorf("report expired")
		}
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *MinIOStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	objectKey, found := s.findObjectKey(ctx, key)
	if !found {
		return "", fmt.Errorf("report not found")
	}

	// response overrides so browsers open the link as a PDF
	params := make(url.Values)
	params.Set("response-content-type", "application/pdf")
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", key))

	presigned, err := s.presign.PresignedGetObject(ctx, s.bucketName, objectKey, expires, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return presigned.String(), nil
}

func (s *MinIOStorage) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	count := 0

	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    reportPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			s.logger.Warnw("error listing object", "error", object.Err)
			continue
		}

		expireAt, ok := object.UserMetadata["expire-at"]
		if !ok {
			continue
		}
		expireTime, err := time.Parse(time.RFC3339, expireAt)
		if err != nil || !now.After(expireTime) {
			continue
		}

		if err := s.client.RemoveObject(ctx, s.bucketName, object.Key, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warnw("failed to remove expired object", "key", object.Key, "error", err)
			continue
		}
		count++
	}

	if count > 0 {
		s.logger.Infow("expired reports cleaned", "count", count)
	}

	return count, nil
}

// StartCleanupLoop sweeps expired reports in the background until ctx ends.
func (s *MinIOStorage) StartCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("storage cleanup loop stopped")
				return
			case <-ticker.C:
				if _, err := s.CleanupExpired(ctx, time.Now().UTC()); err != nil {
					s.logger.Errorw("storage cleanup failed", "error", err)
				}
			}
		}
	}()
}
