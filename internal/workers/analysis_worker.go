package workers

import (
	"context"
	"encoding/json"

	"github.com/payrisk/merchant-risk/internal/application"
	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

const QueueAssessmentRequests = "q_assessment_requests"

// AnalysisWorker consumes assessment requests and drives the full scoring
// run for each one. Redelivery of the same request is harmless: starting
// analysis is idempotent per application id.
type AnalysisWorker struct {
	processUseCase *application.ProcessAssessmentUseCase
	messageBus     domain.MessageBus
	logger         *zap.SugaredLogger
	ctx            context.Context
	cancel         context.CancelFunc
}

func NewAnalysisWorker(
	processUseCase *application.ProcessAssessmentUseCase,
	messageBus domain.MessageBus,
	logger *zap.SugaredLogger,
) *AnalysisWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &AnalysisWorker{
		processUseCase: processUseCase,
		messageBus:     messageBus,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (w *AnalysisWorker) Start() error {
	w.logger.Info("starting analysis worker")

	routingKeys := []string{domain.EventAssessmentRequested}

	return w.messageBus.Subscribe(w.ctx, QueueAssessmentRequests, routingKeys, w.handleMessage)
}

func (w *AnalysisWorker) Stop() {
	w.logger.Info("stopping analysis worker")
	w.cancel()
}

func (w *AnalysisWorker) handleMessage(body []byte) error {
	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		w.logger.Errorw("failed to unmarshal event", "error", err)
		return err
	}

	w.logger.Infow("processing event", "event_type", event.Type, "event_id", event.ID)

	if event.Type != domain.EventAssessmentRequested {
		w.logger.Warnw("unknown event type", "event_type", event.Type)
		return nil
	}

	payload, err := domain.DecodePayload[domain.AssessmentRequestedPayload](&event)
	if err != nil {
		w.logger.Errorw("failed to decode payload", "error", err)
		return err
	}

	return w.processUseCase.Execute(context.Background(), payload.ApplicationID)
}
