package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RiskCategory string

const (
	CategoryExcellent RiskCategory = "EXCELLENT"
	CategoryLow       RiskCategory = "LOW"
	CategoryMedium    RiskCategory = "MEDIUM"
	CategoryHigh      RiskCategory = "HIGH"
	CategoryCritical  RiskCategory = "CRITICAL"
)

// Canonical verification source names.
const (
	SourceFraudCheck      = "fraud-check"
	SourceMersis          = "mersis"
	SourceTaxOffice       = "tax-office"
	SourceWebReputation   = "web-reputation"
	SourceTradeRegistry   = "trade-registry"
	SourceBKM             = "bkm"
	SourceWebsite         = "website-verification"
	SourceFinancialHealth = "financial-health"
)

// SourceWeights is the fixed weight table. The weights must sum to exactly
// 100 so the composite score lands on a 0-100 scale.
var SourceWeights = map[string]float64{
	SourceFraudCheck:      20,
	SourceMersis:          15,
	SourceTaxOffice:       15,
	SourceWebReputation:   15,
	SourceTradeRegistry:   10,
	SourceBKM:             10,
	SourceWebsite:         10,
	SourceFinancialHealth: 5,
}

// ValidateWeights verifies the weight-table invariant at wiring time.
func ValidateWeights(weights map[string]float64) error {
	var sum float64
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("source %s has negative weight %v", name, w)
		}
		sum += w
	}
	if sum != 100 {
		return fmt.Errorf("source weights sum to %v, want 100", sum)
	}
	return nil
}

// CompositeScore sums raw scores across all findings and clips to [0, 100].
// Findings with failed or unknown status carry a zero raw score, so missing
// evidence never subtracts. Summation is order-independent.
func CompositeScore(findings []SourceFinding) float64 {
	var sum float64
	for _, f := range findings {
		sum += f.RawScore
	}
	if sum < 0 {
		return 0
	}
	if sum > 100 {
		return 100
	}
	return sum
}

// DeriveRiskCategory maps a composite score to its band.
func DeriveRiskCategory(score float64) RiskCategory {
	switch {
	case score >= 80:
		return CategoryExcellent
	case score >= 60:
		return CategoryLow
	case score >= 40:
		return CategoryMedium
	case score >= 20:
		return CategoryHigh
	default:
		return CategoryCritical
	}
}

// Categorize applies the band lookup and then the fraud stop-loss override:
// a blacklist signal from the fraud source forces CRITICAL regardless of the
// numeric score. The score itself is never adjusted, so the audit trail keeps
// the raw aggregate.
func Categorize(score float64, findings []SourceFinding) RiskCategory {
	category := DeriveRiskCategory(score)
	for _, f := range findings {
		if f.SourceName == SourceFraudCheck && f.Blacklisted {
			return CategoryCritical
		}
	}
	return category
}

// RiskAssessment is the immutable outcome of one analysis run. A re-run
// produces a new assessment rather than editing an existing one.
type RiskAssessment struct {
	ID              string          `json:"id"`
	ApplicationID   string          `json:"application_id"`
	CompositeScore  float64         `json:"composite_score"`
	Category        RiskCategory    `json:"category"`
	Findings        []SourceFinding `json:"findings"`
	Recommendations []string        `json:"recommendations"`
	Summary         string          `json:"summary"`
	ReportKey       string          `json:"report_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ProcessedAt     time.Time       `json:"processed_at"`
}

// NewRiskAssessment derives score, category, recommendations and summary
// from the full finding set. Deterministic for a given set of findings,
// whatever order they were collected in.
func NewRiskAssessment(applicationID string, findings []SourceFinding, startedAt time.Time) *RiskAssessment {
	score := CompositeScore(findings)
	category := Categorize(score, findings)

	inconclusive := 0
	for _, f := range findings {
		if f.Inconclusive() {
			inconclusive++
		}
	}

	summary := fmt.Sprintf("Composite score %.0f/100 (%s) from %d verification sources", score, category, len(findings))
	if inconclusive > 0 {
		summary += fmt.Sprintf(", %d returned no usable evidence", inconclusive)
	}

	return &RiskAssessment{
		ID:              uuid.New().String(),
		ApplicationID:   applicationID,
		CompositeScore:  score,
		Category:        category,
		Findings:        findings,
		Recommendations: Recommendations(category, findings),
		Summary:         summary,
		CreatedAt:       startedAt,
		ProcessedAt:     time.Now().UTC(),
	}
}

// Clone returns a copy safe to hand to another goroutine, mirroring
// Application.Clone.
func (a *RiskAssessment) Clone() *RiskAssessment {
	clone := *a
	if a.Findings != nil {
		clone.Findings = make([]SourceFinding, len(a.Findings))
		copy(clone.Findings, a.Findings)
	}
	if a.Recommendations != nil {
		clone.Recommendations = make([]string, len(a.Recommendations))
		copy(clone.Recommendations, a.Recommendations)
	}
	return &clone
}
