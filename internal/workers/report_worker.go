package workers

import (
	"context"
	"encoding/json"

	"github.com/payrisk/merchant-risk/internal/application"
	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

const QueueReportJobs = "q_report_jobs"

// ReportWorker turns scored assessments into stored PDF reports and records
// terminal failures signalled over the bus.
type ReportWorker struct {
	generateReportUseCase *application.GenerateReportUseCase
	handleFailedUseCase   *application.HandleAssessmentFailedUseCase
	messageBus            domain.MessageBus
	logger                *zap.SugaredLogger
	ctx                   context.Context
	cancel                context.CancelFunc
}

func NewReportWorker(
	generateReportUseCase *application.GenerateReportUseCase,
	handleFailedUseCase *application.HandleAssessmentFailedUseCase,
	messageBus domain.MessageBus,
	logger *zap.SugaredLogger,
) *ReportWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReportWorker{
		generateReportUseCase: generateReportUseCase,
		handleFailedUseCase:   handleFailedUseCase,
		messageBus:            messageBus,
		logger:                logger,
		ctx:                   ctx,
		cancel:                cancel,
	}
}

func (w *ReportWorker) Start() error {
	w.logger.Info("starting report worker")

	routingKeys := []string{domain.EventAssessmentScored, domain.EventAssessmentFailed}

	return w.messageBus.Subscribe(w.ctx, QueueReportJobs, routingKeys, w.handleMessage)
}

func (w *ReportWorker) Stop() {
	w.logger.Info("stopping report worker")
	w.cancel()
}

func (w *ReportWorker) handleMessage(body []byte) error {
	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		w.logger.Errorw("failed to unmarshal event", "error", err)
		return err
	}

	w.logger.Infow("processing event", "event_type", event.Type, "event_id", event.ID)

	switch event.Type {
	case domain.EventAssessmentScored:
		return w.handleAssessmentScored(&event)
	case domain.EventAssessmentFailed:
		return w.handleAssessmentFailed(&event)
	default:
		w.logger.Warnw("unknown event type", "event_type", event.Type)
		return nil
	}
}

func (w *ReportWorker) handleAssessmentScored(event *domain.Event) error {
	payload, err := domain.DecodePayload[domain.AssessmentScoredPayload](event)
	if err != nil {
		w.logger.Errorw("failed to decode payload", "error", err)
		return err
	}

	return w.generateReportUseCase.Execute(context.Background(), payload.ApplicationID)
}

func (w *ReportWorker) handleAssessmentFailed(event *domain.Event) error {
	payload, err := domain.DecodePayload[domain.AssessmentFailedPayload](event)
	if err != nil {
		w.logger.Errorw("failed to decode payload", "error", err)
		return err
	}

	return w.handleFailedUseCase.Execute(context.Background(), payload.ApplicationID, payload.ErrorMessage)
}
