package application

import (
	"context"
	"fmt"
	"time"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type GenerateReportUseCase struct {
	applications  domain.ApplicationRepository
	assessments   domain.AssessmentRepository
	reportStorage domain.ReportStorage
	messageBus    domain.MessageBus
	hook          domain.AssessmentHook
	reportTTL     time.Duration
	logger        *zap.SugaredLogger
}

func NewGenerateReportUseCase(
	applications domain.ApplicationRepository,
	assessments domain.AssessmentRepository,
	reportStorage domain.ReportStorage,
	messageBus domain.MessageBus,
	hook domain.AssessmentHook,
	reportTTL time.Duration,
	logger *zap.SugaredLogger,
) *GenerateReportUseCase {
	return &GenerateReportUseCase{
		applications:  applications,
		assessments:   assessments,
		reportStorage: reportStorage,
		messageBus:    messageBus,
		hook:          hook,
		reportTTL:     reportTTL,
		logger:        logger,
	}
}

// Execute renders the PDF for a scored application and stores it under a
// key the transport layer can sign download links for.
func (u *GenerateReportUseCase) Execute(ctx context.Context, applicationID string) error {
	u.logger.Infow("generating report", "application_id", applicationID)

	app, err := u.applications.Get(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return domain.ErrApplicationNotFound
	}

	assessment, err := u.assessments.GetByApplication(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to get assessment: %w", err)
	}
	if assessment == nil {
		return domain.ErrAssessmentNotReady
	}

	pdfData, err := GeneratePDF(app, assessment)
	if err != nil {
		u.logger.Errorw("failed to generate pdf", "application_id", applicationID, "error", err)
		return fmt.Errorf("failed to generate pdf: %w", err)
	}
	if len(pdfData) < 1024 || string(pdfData[:4]) != "%PDF" {
		u.logger.Errorw("invalid pdf generated", "application_id", applicationID, "size", len(pdfData))
		return fmt.Errorf("invalid pdf generated")
	}

	reportKey := fmt.Sprintf("%s.pdf", assessment.ID)
	if err := u.reportStorage.Put(ctx, reportKey, pdfData, u.reportTTL); err != nil {
		u.logger.Errorw("failed to store report", "application_id", applicationID, "error", err)
		return fmt.Errorf("failed to store report: %w", err)
	}

	// record the report key on our snapshot and save it back; findings and
	// score are never touched after creation
	assessment.ReportKey = reportKey
	if err := u.assessments.Save(ctx, assessment); err != nil {
		return fmt.Errorf("failed to record report key: %w", err)
	}

	event := domain.NewEvent(domain.EventReportReady, &domain.ReportReadyPayload{
		ApplicationID: applicationID,
		ReportKey:     reportKey,
	})
	if err := u.messageBus.Publish(ctx, domain.EventReportReady, event); err != nil {
		u.logger.Errorw("failed to publish report ready event", "application_id", applicationID, "error", err)
	}

	// hook failures never fail the run
	if err := u.hook.OnAssessmentScored(ctx, assessment); err != nil {
		u.logger.Warnw("assessment hook failed", "application_id", applicationID, "error", err)
	}

	u.logger.Infow("report generated", "application_id", applicationID, "report_key", reportKey, "pdf_size", len(pdfData))

	return nil
}
