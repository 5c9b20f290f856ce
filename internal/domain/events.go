package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// event types
const (
	EventAssessmentRequested = "risk.assessment.requested"
	EventAssessmentScored    = "risk.assessment.scored"
	EventAssessmentFailed    = "risk.assessment.failed"
	EventReportReady         = "risk.report.ready"
	EventReportDispatched    = "risk.report.dispatched"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type AssessmentRequestedPayload struct {
	ApplicationID string `json:"application_id"`
}

type AssessmentScoredPayload struct {
	ApplicationID  string       `json:"application_id"`
	AssessmentID   string       `json:"assessment_id"`
	CompositeScore float64      `json:"composite_score"`
	Category       RiskCategory `json:"category"`
}

type AssessmentFailedPayload struct {
	ApplicationID string `json:"application_id"`
	ErrorMessage  string `json:"error_message"`
}

type ReportReadyPayload struct {
	ApplicationID string `json:"application_id"`
	ReportKey     string `json:"report_key"`
}

type ReportDispatchedPayload struct {
	ApplicationID string           `json:"application_id"`
	Results       []DispatchResult `json:"results"`
}

func NewEvent(eventType string, payload any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func (e *Event) MarshalPayload() ([]byte, error) {
	return json.Marshal(e.Payload)
}

// DecodePayload re-marshals the generic payload into a typed struct.
// Needed because payloads arrive as map[string]any after transport.
func DecodePayload[T any](e *Event) (*T, error) {
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
