package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const metadataFile = ".metadata.json"

// LocalStorage keeps report PDFs on the local filesystem with a sidecar
// metadata file tracking expiry. Meant for development and single-node
// deployments; object storage covers the rest.
type LocalStorage struct {
	basePath string
	metadata map[string]*reportMetadata
	mu       sync.RWMutex
	logger   *zap.SugaredLogger
}

type reportMetadata struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewLocalStorage(basePath string, logger *zap.SugaredLogger) (*LocalStorage, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "merchant-risk", "reports")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		metadata: make(map[string]*reportMetadata),
		logger:   logger,
	}

	storage.loadMetadata()

	logger.Infow("local report storage initialized", "path", basePath)

	return storage, nil
}

// path maps a storage key to a file inside basePath. Keys are flattened to
// their base name so a crafted key cannot escape the directory.
func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.basePath, filepath.Base(key))
}

func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	expiresAt := time.Now().UTC().Add(ttl)
	s.metadata[key] = &reportMetadata{
		Key:       key,
		ExpiresAt: expiresAt,
	}
	s.saveMetadata()

	s.logger.Debugw("report stored", "key", key, "size", len(data), "expires_at", expiresAt)

	return nil
}

func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	meta, exists := s.metadata[key]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("report not found")
	}
	if time.Now().UTC().After(meta.ExpiresAt) {
		return nil, fmt.Errorf("report expired")
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	return data, nil
}

// PresignGet returns an empty URL: local files have no presignable form, so
// callers fall back to streaming the bytes through the API.
func (s *LocalStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "", nil
}

func (s *LocalStorage) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, meta := range s.metadata {
		if now.After(meta.ExpiresAt) {
			if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
				s.logger.Warnw("failed to remove expired report", "key", key, "error", err)
			}
			delete(s.metadata, key)
			count++
		}
	}

	if count > 0 {
		s.saveMetadata()
		s.logger.Infow("expired reports cleaned", "count", count)
	}

	return count, nil
}

// StartCleanupLoop removes expired reports in the background until ctx ends.
func (s *LocalStorage) StartCleanupLoop(ctx context.Context, interval time.Duration) {
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

func (s *LocalStorage) loadMetadata() {
	data, err := os.ReadFile(filepath.Join(s.basePath, metadataFile))
	if err != nil {
		return // nothing persisted yet
	}

	var meta map[string]*reportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		s.logger.Warnw("failed to load storage metadata", "error", err)
		return
	}

	s.metadata = meta
}

func (s *LocalStorage) saveMetadata() {
	data, err := json.Marshal(s.metadata)
	if err != nil {
		s.logger.Errorw("failed to marshal storage metadata", "error", err)
		return
	}

	if err := os.WriteFile(filepath.Join(s.basePath, metadataFile), data, 0644); err != nil {
		s.logger.Errorw("failed to write storage metadata", "error", err)
	}
}
