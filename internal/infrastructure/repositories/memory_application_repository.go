package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// MemoryApplicationRepository stores and returns clones: lifecycle writes
// happen on private copies under the manager's per-id lock, so a snapshot
// handed to a reader is never written again.
type MemoryApplicationRepository struct {
	applications map[string]*domain.Application
	mu           sync.RWMutex
	logger       *zap.SugaredLogger
}

func NewMemoryApplicationRepository(logger *zap.SugaredLogger) *MemoryApplicationRepository {
	return &MemoryApplicationRepository{
		applications: make(map[string]*domain.Application),
		logger:       logger,
	}
}

func (r *MemoryApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.applications[app.ID]; exists {
		return fmt.Errorf("application already exists")
	}

	r.applications[app.ID] = app.Clone()
	r.logger.Debugw("application created", "application_id", app.ID)

	return nil
}

func (r *MemoryApplicationRepository) Get(ctx context.Context, applicationID string) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, exists := r.applications[applicationID]
	if !exists {
		return nil, nil
	}

	return app.Clone(), nil
}

func (r *MemoryApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.applications[app.ID]; !exists {
		return fmt.Errorf("application not found")
	}

	r.applications[app.ID] = app.Clone()
	r.logger.Debugw("application updated", "application_id", app.ID, "status", app.Status)

	return nil
}
