package sources

import (
	"context"
	"fmt"
	"regexp"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// Stubbed government-registry sources. Production integrations (MERSIS, GIB,
// TOBB) sit behind the same contract; these providers validate identifier
// shape and answer deterministically.

var (
	mersisPattern = regexp.MustCompile(`^\d{16}$`)
	vknPattern    = regexp.MustCompile(`^\d{10}$`)
)

type MersisSource struct {
	logger *zap.SugaredLogger
}

func NewMersisSource(logger *zap.SugaredLogger) *MersisSource {
	return &MersisSource{logger: logger}
}

func (s *MersisSource) Name() string    { return domain.SourceMersis }
func (s *MersisSource) Weight() float64 { return domain.SourceWeights[domain.SourceMersis] }

func (s *MersisSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldMersisNumber}
}

func (s *MersisSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("mersis lookup", "application_id", app.ID)

	// valid MERSIS numbers are 16 digits
	if !mersisPattern.MatchString(app.Company.MersisNumber) {
		return &domain.SourceFinding{
			Status:     domain.FindingWarning,
			DataFound:  "Company not found in MERSIS database",
			RiskImpact: "NEGATIVE - registration could not be confirmed",
			RawScore:   0,
		}, nil
	}

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  "Company found in MERSIS. Status: Active, Registration: Valid",
		RiskImpact: "POSITIVE - valid trade registry entry",
		RawScore:   s.Weight(),
	}, nil
}

type TaxOfficeSource struct {
	logger *zap.SugaredLogger
}

func NewTaxOfficeSource(logger *zap.SugaredLogger) *TaxOfficeSource {
	return &TaxOfficeSource{logger: logger}
}

func (s *TaxOfficeSource) Name() string    { return domain.SourceTaxOffice }
func (s *TaxOfficeSource) Weight() float64 { return domain.SourceWeights[domain.SourceTaxOffice] }

func (s *TaxOfficeSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldTaxNumber, domain.FieldLegalName}
}

func (s *TaxOfficeSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("tax office lookup", "application_id", app.ID)

	if !vknPattern.MatchString(app.Company.TaxNumber) {
		return &domain.SourceFinding{
			Status:     domain.FindingWarning,
			DataFound:  "Tax record not found",
			RiskImpact: "NEGATIVE - taxpayer status unconfirmed",
			RawScore:   0,
		}, nil
	}

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  fmt.Sprintf("Tax record found for %s. VKN: %s, Status: Active", app.Company.LegalName, app.Company.TaxNumber),
		RiskImpact: "POSITIVE - compliant taxpayer",
		RawScore:   s.Weight(),
	}, nil
}

type TradeRegistrySource struct {
	logger *zap.SugaredLogger
}

func NewTradeRegistrySource(logger *zap.SugaredLogger) *TradeRegistrySource {
	return &TradeRegistrySource{logger: logger}
}

func (s *TradeRegistrySource) Name() string    { return domain.SourceTradeRegistry }
func (s *TradeRegistrySource) Weight() float64 { return domain.SourceWeights[domain.SourceTradeRegistry] }

func (s *TradeRegistrySource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldLegalName, domain.FieldCity}
}

func (s *TradeRegistrySource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("trade registry lookup", "application_id", app.ID, "city", app.Company.City)

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  fmt.Sprintf("Trade registry record for %s in %s. Status: Found, Active", app.Company.LegalName, app.Company.City),
		RiskImpact: "POSITIVE - legitimate business",
		RawScore:   s.Weight(),
	}, nil
}

type BKMSource struct {
	logger *zap.SugaredLogger
}

func NewBKMSource(logger *zap.SugaredLogger) *BKMSource {
	return &BKMSource{logger: logger}
}

func (s *BKMSource) Name() string    { return domain.SourceBKM }
func (s *BKMSource) Weight() float64 { return domain.SourceWeights[domain.SourceBKM] }

func (s *BKMSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldBKMNumber}
}

func (s *BKMSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	s.logger.Debugw("bkm lookup", "application_id", app.ID)

	return &domain.SourceFinding{
		Status:     domain.FindingVerified,
		DataFound:  "BKM record found. Member status: Active",
		RiskImpact: "POSITIVE - established card-scheme member",
		RawScore:   s.Weight(),
	}, nil
}
