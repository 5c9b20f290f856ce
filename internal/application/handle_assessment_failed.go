package application

import (
	"context"
	"errors"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type HandleAssessmentFailedUseCase struct {
	lifecycle *LifecycleManager
	logger    *zap.SugaredLogger
}

func NewHandleAssessmentFailedUseCase(lifecycle *LifecycleManager, logger *zap.SugaredLogger) *HandleAssessmentFailedUseCase {
	return &HandleAssessmentFailedUseCase{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (u *HandleAssessmentFailedUseCase) Execute(ctx context.Context, applicationID, errorMessage string) error {
	u.logger.Warnw("handling assessment failure", "application_id", applicationID, "error", errorMessage)

	err := u.lifecycle.MarkFailed(ctx, applicationID, errorMessage)
	if errors.Is(err, domain.ErrInvalidTransition) {
		// already terminal; nothing left to record
		u.logger.Infow("failure event for terminal application ignored", "application_id", applicationID)
		return nil
	}
	return err
}
