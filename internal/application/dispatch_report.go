package application

import (
	"context"
	"fmt"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type DispatchReportUseCase struct {
	lifecycle    *LifecycleManager
	applications domain.ApplicationRepository
	assessments  domain.AssessmentRepository
	dispatcher   domain.ReportDispatcher
	messageBus   domain.MessageBus
	logger       *zap.SugaredLogger
}

func NewDispatchReportUseCase(
	lifecycle *LifecycleManager,
	applications domain.ApplicationRepository,
	assessments domain.AssessmentRepository,
	dispatcher domain.ReportDispatcher,
	messageBus domain.MessageBus,
	logger *zap.SugaredLogger,
) *DispatchReportUseCase {
	return &DispatchReportUseCase{
		lifecycle:    lifecycle,
		applications: applications,
		assessments:  assessments,
		dispatcher:   dispatcher,
		messageBus:   messageBus,
		logger:       logger,
	}
}

// Execute delivers the assessment report to the given recipients. The
// application must already be scored; re-dispatching after the first
// delivery is allowed and leaves the status at report_dispatched.
func (u *DispatchReportUseCase) Execute(ctx context.Context, applicationID string, recipients []domain.Recipient) ([]domain.DispatchResult, error) {
	if len(recipients) == 0 {
		return nil, &domain.ValidationError{Field: "recipients", Reason: "at least one recipient is required"}
	}

	app, err := u.applications.Get(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrApplicationNotFound
	}
	if app.Status != domain.StatusScored && app.Status != domain.StatusReportDispatched {
		return nil, domain.ErrAssessmentNotReady
	}

	assessment, err := u.assessments.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if assessment == nil {
		return nil, domain.ErrAssessmentNotReady
	}

	results, err := u.dispatcher.Dispatch(ctx, assessment, recipients)
	if err != nil {
		u.logger.Errorw("report dispatch failed", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf("failed to dispatch report: %w", err)
	}

	if app.Status == domain.StatusScored {
		if err := u.lifecycle.MarkReportDispatched(ctx, applicationID); err != nil {
			return results, fmt.Errorf("failed to mark report dispatched: %w", err)
		}
	}

	event := domain.NewEvent(domain.EventReportDispatched, &domain.ReportDispatchedPayload{
		ApplicationID: applicationID,
		Results:       results,
	})
	if err := u.messageBus.Publish(ctx, domain.EventReportDispatched, event); err != nil {
		u.logger.Errorw("failed to publish report dispatched event", "application_id", applicationID, "error", err)
	}

	u.logger.Infow("report dispatched", "application_id", applicationID, "recipients", len(recipients))

	return results, nil
}
