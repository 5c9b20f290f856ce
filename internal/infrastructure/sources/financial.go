package sources

import (
	"context"
	"fmt"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// revenue bands in TL/month
const (
	revenueStrong   = 100_000
	revenueGood     = 50_000
	revenueModerate = 20_000
)

type FinancialHealthSource struct {
	logger *zap.SugaredLogger
}

func NewFinancialHealthSource(logger *zap.SugaredLogger) *FinancialHealthSource {
	return &FinancialHealthSource{logger: logger}
}

func (s *FinancialHealthSource) Name() string { return domain.SourceFinancialHealth }

func (s *FinancialHealthSource) Weight() float64 {
	return domain.SourceWeights[domain.SourceFinancialHealth]
}

func (s *FinancialHealthSource) RequiredFields() []domain.Field {
	return []domain.Field{domain.FieldMonthlyRevenue}
}

func (s *FinancialHealthSource) Check(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
	revenue := app.Company.MonthlyRevenue
	s.logger.Debugw("financial health analysis", "application_id", app.ID, "monthly_revenue", revenue)

	var rating string
	var score float64
	status := domain.FindingVerified

	switch {
	case revenue > revenueStrong:
		rating, score = "STRONG", s.Weight()
	case revenue > revenueGood:
		rating, score = "GOOD", s.Weight()*4/5
	case revenue > revenueModerate:
		rating, score = "MODERATE", s.Weight()*3/5
	default:
		rating, score = "WEAK", s.Weight()*1/5
		status = domain.FindingWarning
	}

	return &domain.SourceFinding{
		Status:     status,
		DataFound:  fmt.Sprintf("Financial health: %s. Monthly revenue %.2f TL", rating, revenue),
		RiskImpact: fmt.Sprintf("%s revenue profile for %s", rating, app.Company.CompanyType),
		RawScore:   score,
	}, nil
}
