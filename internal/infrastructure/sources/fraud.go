package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// FraudCheckSource matches the company against fraud blacklists. A hit sets
// the Blacklisted flag, which forces the CRITICAL category downstream
// regardless of how the other sources score.
type FraudCheckSource struct {
	blacklist map[string]struct{}
	logger    *zap.SugaredLogger
}

func NewFraudCheckSource(blacklist []string, logger *zap.SugaredLogger) *FraudCheckSource {
	set := make(map[string]struct{}, len(blacklist))
	for _, entry := range blacklist {
		set[strings.ToLower(strings.TrimSpace(entry))] = struct{}{}
	}
	return &FraudCheckSource{blacklist: set, logger: logger}
}

func (s *FraudCheckSource) Name() string    { return domain.SourceFraudCheck }
func (s *FraudCheckSource) Weight() float64 { return domain.SourceWeights[domain.SourceFraudCheck] }

func (s *FraudCheckSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldLegalName}
}

func (s *FraudCheckSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("fraud database check", "application_id", app.ID)

	if s.hit(app.Company.LegalName) || s.hit(app.Company.TaxNumber) || s.hit(app.Person.NationalID) {
		return &domain.SourceFinding{
			Status:      domain.FindingWarning,
			DataFound:   fmt.Sprintf("Blacklist record found for %s", app.Company.LegalName),
			RiskImpact:  "NEGATIVE - disqualifying fraud signal",
			RawScore:    0,
			Blacklisted: true,
		}, nil
	}

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  fmt.Sprintf("Fraud check for %s: no records, no sanctions, clean", app.Company.LegalName),
		RiskImpact: "POSITIVE - clean record",
		RawScore:   s.Weight(),
	}, nil
}

func (s *FraudCheckSource) hit(key string) bool {
	if key == "" {
		return false
	}
	_, ok := s.blacklist[strings.ToLower(strings.TrimSpace(key))]
	return ok
}
