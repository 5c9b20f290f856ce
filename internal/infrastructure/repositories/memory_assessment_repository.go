package repositories

import (
	"context"
	"sync"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// MemoryAssessmentRepository keys assessments by application id: an
// application has at most one current assessment, and saving again
// replaces it. Stores and returns clones so a saved assessment is never
// written through a pointer a reader holds.
type MemoryAssessmentRepository struct {
	assessments map[string]*domain.RiskAssessment
	mu          sync.RWMutex
	logger      *zap.SugaredLogger
}

func NewMemoryAssessmentRepository(logger *zap.SugaredLogger) *MemoryAssessmentRepository {
	return &MemoryAssessmentRepository{
		assessments: make(map[string]*domain.RiskAssessment),
		logger:      logger,
	}
}

func (r *MemoryAssessmentRepository) Save(ctx context.Context, assessment *domain.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assessments[assessment.ApplicationID] = assessment.Clone()
	r.logger.Debugw("assessment saved",
		"application_id", assessment.ApplicationID,
		"assessment_id", assessment.ID,
		"category", assessment.Category)

	return nil
}

func (r *MemoryAssessmentRepository) GetByApplication(ctx context.Context, applicationID string) (*domain.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assessment, exists := r.assessments[applicationID]
	if !exists {
		return nil, nil
	}

	return assessment.Clone(), nil
}
