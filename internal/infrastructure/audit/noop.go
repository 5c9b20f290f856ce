package audit

import (
	"context"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type NoopAuditHook struct {
	logger *zap.SugaredLogger
}

func NewNoopAuditHook(logger *zap.SugaredLogger) *NoopAuditHook {
	return &NoopAuditHook{
		logger: logger,
	}
}

func (h *NoopAuditHook) OnAssessmentScored(ctx context.Context, assessment *domain.RiskAssessment) error {
	h.logger.Debugw("audit hook (noop)",
		"application_id", assessment.ApplicationID,
		"composite_score", assessment.CompositeScore,
		"category", assessment.Category)
	return nil
}
