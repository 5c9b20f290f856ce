package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// LifecycleManager owns the per-application state machine. All writes to an
// application's status go through a per-id lock, which is what guarantees at
// most one analyzing run per application id. Different applications never
// contend.
type LifecycleManager struct {
	repository domain.ApplicationRepository
	mu         sync.Mutex
	locks      map[string]*sync.Mutex
	logger     *zap.SugaredLogger
}

func NewLifecycleManager(repository domain.ApplicationRepository, logger *zap.SugaredLogger) *LifecycleManager {
	return &LifecycleManager{
		repository: repository,
		locks:      make(map[string]*sync.Mutex),
		logger:     logger,
	}
}

func (m *LifecycleManager) lock(applicationID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[applicationID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[applicationID] = l
	}
	return l
}

// StartAnalysis moves a submitted application to analyzing. Idempotent: a
// second start for an id already analyzing (or past it) is a no-op that
// reports the current status with started=false.
func (m *LifecycleManager) StartAnalysis(ctx context.Context, applicationID string) (domain.ApplicationStatus, bool, error) {
	l := m.lock(applicationID)
	l.Lock()
	defer l.Unlock()

	app, err := m.repository.Get(ctx, applicationID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return "", false, domain.ErrApplicationNotFound
	}

	if app.Status != domain.StatusSubmitted {
		m.logger.Infow("duplicate analysis start ignored", "application_id", applicationID, "status", app.Status)
		return app.Status, false, nil
	}

	if err := app.MarkAnalyzing(); err != nil {
		return app.Status, false, err
	}
	if err := m.repository.Update(ctx, app); err != nil {
		return app.Status, false, fmt.Errorf("failed to persist transition: %w", err)
	}
	return app.Status, true, nil
}

func (m *LifecycleManager) MarkScored(ctx context.Context, applicationID string) error {
	return m.mark(ctx, applicationID, func(app *domain.Application) error {
		return app.MarkScored()
	})
}

func (m *LifecycleManager) MarkReportDispatched(ctx context.Context, applicationID string) error {
	return m.mark(ctx, applicationID, func(app *domain.Application) error {
		return app.MarkReportDispatched()
	})
}

func (m *LifecycleManager) MarkFailed(ctx context.Context, applicationID, reason string) error {
	return m.mark(ctx, applicationID, func(app *domain.Application) error {
		return app.MarkFailed(reason)
	})
}

func (m *LifecycleManager) mark(ctx context.Context, applicationID string, transition func(*domain.Application) error) error {
	l := m.lock(applicationID)
	l.Lock()
	defer l.Unlock()

	app, err := m.repository.Get(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return domain.ErrApplicationNotFound
	}

	if err := transition(app); err != nil {
		return err
	}
	if err := m.repository.Update(ctx, app); err != nil {
		return fmt.Errorf("failed to persist transition: %w", err)
	}

	m.logger.Debugw("lifecycle transition", "application_id", applicationID, "status", app.Status)
	return nil
}
