package application

import (
	"context"
	"fmt"
	"time"

	"github.com/payrisk/merchant-risk/internal/agent"
	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type ProcessAssessmentUseCase struct {
	lifecycle    *LifecycleManager
	loop         *agent.ReasoningLoop
	sources      map[string]domain.VerificationSource
	applications domain.ApplicationRepository
	assessments  domain.AssessmentRepository
	messageBus   domain.MessageBus
	logger       *zap.SugaredLogger
}

func NewProcessAssessmentUseCase(
	lifecycle *LifecycleManager,
	loop *agent.ReasoningLoop,
	sources map[string]domain.VerificationSource,
	applications domain.ApplicationRepository,
	assessments domain.AssessmentRepository,
	messageBus domain.MessageBus,
	logger *zap.SugaredLogger,
) *ProcessAssessmentUseCase {
	return &ProcessAssessmentUseCase{
		lifecycle:    lifecycle,
		loop:         loop,
		sources:      sources,
		applications: applications,
		assessments:  assessments,
		messageBus:   messageBus,
		logger:       logger,
	}
}

// Execute runs one full analysis: evidence gathering, aggregation, and the
// scored transition. Source failures are absorbed upstream, so the only
// faults that fail the run are persistence and lifecycle violations.
func (u *ProcessAssessmentUseCase) Execute(ctx context.Context, applicationID string) error {
	status, started, err := u.lifecycle.StartAnalysis(ctx, applicationID)
	if err != nil {
		return err
	}
	if !started {
		// duplicate request: exactly one run may be in flight per id
		u.logger.Infow("analysis not started", "application_id", applicationID, "status", status)
		return nil
	}

	app, err := u.applications.Get(ctx, applicationID)
	if err != nil || app == nil {
		return u.fail(ctx, applicationID, fmt.Sprintf("failed to load application: %v", err))
	}

	u.logger.Infow("analysis started", "application_id", applicationID, "sources", len(u.sources))
	startedAt := time.Now().UTC()

	findings := u.loop.Run(ctx, app, u.sources)

	assessment := domain.NewRiskAssessment(app.ID, findings, startedAt)

	if err := u.assessments.Save(ctx, assessment); err != nil {
		return u.fail(ctx, applicationID, fmt.Sprintf("failed to persist assessment: %v", err))
	}
	if err := u.lifecycle.MarkScored(ctx, applicationID); err != nil {
		return u.fail(ctx, applicationID, fmt.Sprintf("failed to mark scored: %v", err))
	}

	u.logger.Infow("analysis scored",
		"application_id", applicationID,
		"assessment_id", assessment.ID,
		"composite_score", assessment.CompositeScore,
		"category", assessment.Category,
		"elapsed_ms", time.Since(startedAt).Milliseconds())

	event := domain.NewEvent(domain.EventAssessmentScored, &domain.AssessmentScoredPayload{
		ApplicationID:  app.ID,
		AssessmentID:   assessment.ID,
		CompositeScore: assessment.CompositeScore,
		Category:       assessment.Category,
	})
	if err := u.messageBus.Publish(ctx, domain.EventAssessmentScored, event); err != nil {
		u.logger.Errorw("failed to publish scored event", "application_id", app.ID, "error", err)
		return fmt.Errorf("failed to publish scored event: %w", err)
	}

	return nil
}

// fail records an internal fault: the application moves to failed with a
// human-readable reason and a failed event is published for operators.
func (u *ProcessAssessmentUseCase) fail(ctx context.Context, applicationID, reason string) error {
	u.logger.Errorw("analysis failed", "application_id", applicationID, "reason", reason)

	if err := u.lifecycle.MarkFailed(ctx, applicationID, reason); err != nil {
		u.logger.Errorw("failed to mark application failed", "application_id", applicationID, "error", err)
	}

	event := domain.NewEvent(domain.EventAssessmentFailed, &domain.AssessmentFailedPayload{
		ApplicationID: applicationID,
		ErrorMessage:  reason,
	})
	if err := u.messageBus.Publish(ctx, domain.EventAssessmentFailed, event); err != nil {
		u.logger.Errorw("failed to publish failed event", "application_id", applicationID, "error", err)
	}

	return fmt.Errorf("%s", reason)
}
