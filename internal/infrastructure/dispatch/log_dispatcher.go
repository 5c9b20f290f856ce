package dispatch

import (
	"context"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// LogDispatcher confirms delivery per recipient without contacting an
// external delivery system. Stands in for the real channel until one is
// wired up; the confirmation shape matches what callers expect from it.
type LogDispatcher struct {
	logger *zap.SugaredLogger
}

func NewLogDispatcher(logger *zap.SugaredLogger) *LogDispatcher {
	return &LogDispatcher{
		logger: logger,
	}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, assessment *domain.RiskAssessment, recipients []domain.Recipient) ([]domain.DispatchResult, error) {
	results := make([]domain.DispatchResult, 0, len(recipients))
	for _, recipient := range recipients {
		d.logger.Infow("report delivered",
			"application_id", assessment.ApplicationID,
			"assessment_id", assessment.ID,
			"department", recipient.Department,
			"email", recipient.Email,
			"category", assessment.Category)
		results = append(results, domain.DispatchResult{
			Recipient: recipient,
			Delivered: true,
		})
	}
	return results, nil
}
