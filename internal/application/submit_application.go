package application

import (
	"context"
	"fmt"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type SubmitApplicationUseCase struct {
	applications domain.ApplicationRepository
	messageBus   domain.MessageBus
	logger       *zap.SugaredLogger
}

func NewSubmitApplicationUseCase(
	applications domain.ApplicationRepository,
	messageBus domain.MessageBus,
	logger *zap.SugaredLogger,
) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{
		applications: applications,
		messageBus:   messageBus,
		logger:       logger,
	}
}

// Execute validates and persists a new application, then requests its
// analysis. Validation failures reject the submission before any analysis
// starts.
func (u *SubmitApplicationUseCase) Execute(ctx context.Context, company domain.CompanyInfo, person domain.AuthorizedPerson, documents []domain.Document) (*domain.Application, error) {
	if err := validateSubmission(company, person); err != nil {
		return nil, err
	}

	app := domain.NewApplication(company, person, documents)

	if err := u.applications.Create(ctx, app); err != nil {
		u.logger.Errorw("failed to create application", "application_id", app.ID, "error", err)
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	event := domain.NewEvent(domain.EventAssessmentRequested, &domain.AssessmentRequestedPayload{
		ApplicationID: app.ID,
	})
	if err := u.messageBus.Publish(ctx, domain.EventAssessmentRequested, event); err != nil {
		u.logger.Errorw("failed to publish event", "application_id", app.ID, "error", err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	u.logger.Infow("application submitted", "application_id", app.ID, "merchant", company.LegalName)

	return app, nil
}

func validateSubmission(company domain.CompanyInfo, person domain.AuthorizedPerson) error {
	required := []struct {
		field string
		value string
	}{
		{"company.legal_name", company.LegalName},
		{"company.trade_name", company.TradeName},
		{"company.company_type", company.CompanyType},
		{"company.city", company.City},
		{"company.address", company.Address},
		{"authorized_person.national_id", person.NationalID},
		{"authorized_person.first_name", person.FirstName},
		{"authorized_person.last_name", person.LastName},
		{"authorized_person.email", person.Email},
		{"authorized_person.mobile_phone", person.MobilePhone},
	}
	for _, r := range required {
		if r.value == "" {
			return &domain.ValidationError{Field: r.field, Reason: "is required"}
		}
	}
	return nil
}
