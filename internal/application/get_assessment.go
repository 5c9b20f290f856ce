package application

import (
	"context"
	"fmt"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// AssessmentView is the retrieval result: the lifecycle state always, the
// full assessment once the application has been scored.
type AssessmentView struct {
	Application *domain.Application
	Assessment  *domain.RiskAssessment
}

type GetAssessmentUseCase struct {
	applications domain.ApplicationRepository
	assessments  domain.AssessmentRepository
	logger       *zap.SugaredLogger
}

func NewGetAssessmentUseCase(
	applications domain.ApplicationRepository,
	assessments domain.AssessmentRepository,
	logger *zap.SugaredLogger,
) *GetAssessmentUseCase {
	return &GetAssessmentUseCase{
		applications: applications,
		assessments:  assessments,
		logger:       logger,
	}
}

// Execute never mutates state; completed analyses stay retrievable.
func (u *GetAssessmentUseCase) Execute(ctx context.Context, applicationID string) (*AssessmentView, error) {
	app, err := u.applications.Get(ctx, applicationID)
	if err != nil {
		u.logger.Errorw("failed to get application", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrApplicationNotFound
	}

	view := &AssessmentView{Application: app}

	if app.Status == domain.StatusScored || app.Status == domain.StatusReportDispatched {
		assessment, err := u.assessments.GetByApplication(ctx, applicationID)
		if err != nil {
			u.logger.Errorw("failed to get assessment", "application_id", applicationID, "error", err)
			return nil, fmt.Errorf("failed to get assessment: %w", err)
		}
		view.Assessment = assessment
	}

	return view, nil
}
