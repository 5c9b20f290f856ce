package domain

import (
	"context"
	"time"
)

// VerificationSource is one external verification capability. Implementations
// are stubbed or mocked data providers; the core never assumes a source is
// reachable or deterministic.
type VerificationSource interface {
	Name() string
	Weight() float64
	RequiredFields() []Field
	Check(ctx context.Context, app *Application) (*SourceFinding, error)
}

// SelectionPolicy decides which not-yet-invoked source to call next.
// Next returns the chosen source name, or ok=false to stop selecting.
// A model-backed implementation is not guaranteed to choose the same order
// twice; aggregation must therefore stay order-independent.
type SelectionPolicy interface {
	Next(ctx context.Context, app *Application, remaining []string) (name string, ok bool, err error)
}

// ApplicationRepository persists applications. Get returns a snapshot:
// implementations must never hand out a pointer a later Update writes
// through, so readers need no lock of their own.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	Get(ctx context.Context, applicationID string) (*Application, error)
	Update(ctx context.Context, app *Application) error
}

type AssessmentRepository interface {
	Save(ctx context.Context, assessment *RiskAssessment) error
	// GetByApplication returns a snapshot of the current assessment for an
	// application, or nil when none has been produced yet.
	GetByApplication(ctx context.Context, applicationID string) (*RiskAssessment, error)
}

type MessageBus interface {
	Publish(ctx context.Context, routingKey string, event *Event) error
	Subscribe(ctx context.Context, queueName string, routingKeys []string, handler func([]byte) error) error
	Close() error
}

type ReportStorage interface {
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

type Recipient struct {
	Department string `json:"department"`
	Email      string `json:"email"`
}

type DispatchResult struct {
	Recipient Recipient `json:"recipient"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
}

// ReportDispatcher hands a completed assessment off to the external report
// delivery collaborator.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, assessment *RiskAssessment, recipients []Recipient) ([]DispatchResult, error)
}

// AssessmentHook is invoked after an assessment is scored. Failures are
// logged and never fail the run.
type AssessmentHook interface {
	OnAssessmentScored(ctx context.Context, assessment *RiskAssessment) error
}
