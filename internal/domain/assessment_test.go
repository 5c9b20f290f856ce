package domain

import (
	"testing"
	"time"
)

func TestValidateWeights(t *testing.T) {
	if err := ValidateWeights(SourceWeights); err != nil {
		t.Errorf("ValidateWeights(SourceWeights) error = %v", err)
	}

	bad := map[string]float64{"a": 50, "b": 49}
	if err := ValidateWeights(bad); err == nil {
		t.Error("ValidateWeights() should reject weights that do not sum to 100")
	}

	negative := map[string]float64{"a": 110, "b": -10}
	if err := ValidateWeights(negative); err == nil {
		t.Error("ValidateWeights() should reject negative weights")
	}
}

func TestDeriveRiskCategory(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  RiskCategory
	}{
		{"excellent top", 100, CategoryExcellent},
		{"excellent boundary", 80, CategoryExcellent},
		{"low upper boundary", 79, CategoryLow},
		{"low boundary", 60, CategoryLow},
		{"medium upper boundary", 59, CategoryMedium},
		{"medium boundary", 40, CategoryMedium},
		{"high upper boundary", 39, CategoryHigh},
		{"high boundary", 20, CategoryHigh},
		{"critical upper boundary", 19, CategoryCritical},
		{"critical zero", 0, CategoryCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRiskCategory(tt.score)
			if got != tt.want {
				t.Errorf("DeriveRiskCategory(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func finding(name string, raw, weight float64) SourceFinding {
	return SourceFinding{SourceName: name, Status: FindingVerified, RawScore: raw, Weight: weight}
}

func TestCompositeScore_Bounds(t *testing.T) {
	t.Run("clips above 100", func(t *testing.T) {
		findings := []SourceFinding{finding(SourceFraudCheck, 80, 20), finding(SourceMersis, 80, 15)}
		if got := CompositeScore(findings); got != 100 {
			t.Errorf("CompositeScore() = %v, want 100", got)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		findings := []SourceFinding{{SourceName: SourceMersis, RawScore: -5}}
		if got := CompositeScore(findings); got != 0 {
			t.Errorf("CompositeScore() = %v, want 0", got)
		}
	})

	t.Run("empty findings", func(t *testing.T) {
		if got := CompositeScore(nil); got != 0 {
			t.Errorf("CompositeScore(nil) = %v, want 0", got)
		}
	})
}

func TestCompositeScore_OrderIndependent(t *testing.T) {
	a := []SourceFinding{
		finding(SourceMersis, 15, 15),
		finding(SourceTaxOffice, 10, 15),
		finding(SourceBKM, 5, 10),
	}
	b := []SourceFinding{a[2], a[0], a[1]}

	if CompositeScore(a) != CompositeScore(b) {
		t.Errorf("CompositeScore() depends on finding order: %v vs %v", CompositeScore(a), CompositeScore(b))
	}
}

func allPassFindings() []SourceFinding {
	return []SourceFinding{
		finding(SourceMersis, 15, 15),
		finding(SourceTaxOffice, 15, 15),
		finding(SourceTradeRegistry, 10, 10),
		finding(SourceBKM, 10, 10),
		finding(SourceWebReputation, 15, 15),
		finding(SourceWebsite, 10, 10),
		finding(SourceFraudCheck, 20, 20),
		finding(SourceFinancialHealth, 5, 5),
	}
}

func TestCategorize_ScenarioAllPass(t *testing.T) {
	findings := allPassFindings()

	score := CompositeScore(findings)
	if score != 100 {
		t.Errorf("CompositeScore() = %v, want 100", score)
	}
	if got := Categorize(score, findings); got != CategoryExcellent {
		t.Errorf("Categorize() = %v, want %v", got, CategoryExcellent)
	}
}

func TestCategorize_ScenarioMixed(t *testing.T) {
	findings := []SourceFinding{
		finding(SourceMersis, 15, 15),
		finding(SourceTaxOffice, 15, 15),
		{SourceName: SourceBKM, Status: FindingWarning, RawScore: 0, Weight: 10},
		{SourceName: SourceWebsite, Status: FindingWarning, RawScore: 0, Weight: 10},
		{SourceName: SourceWebReputation, Status: FindingWarning, RawScore: 10, Weight: 15},
		finding(SourceTradeRegistry, 10, 10),
		finding(SourceFraudCheck, 20, 20),
		finding(SourceFinancialHealth, 5, 5),
	}

	score := CompositeScore(findings)
	if score != 55 {
		t.Errorf("CompositeScore() = %v, want 55", score)
	}
	if got := Categorize(score, findings); got != CategoryMedium {
		t.Errorf("Categorize() = %v, want %v", got, CategoryMedium)
	}
}

func TestCategorize_FraudOverride(t *testing.T) {
	t.Run("blacklist beats all-max score", func(t *testing.T) {
		findings := allPassFindings()
		for i := range findings {
			if findings[i].SourceName == SourceFraudCheck {
				findings[i].Blacklisted = true
			}
		}

		score := CompositeScore(findings)
		if got := Categorize(score, findings); got != CategoryCritical {
			t.Errorf("Categorize() = %v, want %v despite score %v", got, CategoryCritical, score)
		}
	})

	t.Run("score stays unmodified for audit", func(t *testing.T) {
		findings := []SourceFinding{
			{SourceName: SourceMersis, Status: FindingFailed, RawScore: 0, Weight: 15},
			{SourceName: SourceTaxOffice, Status: FindingWarning, RawScore: 0, Weight: 15},
			{SourceName: SourceFraudCheck, Status: FindingWarning, RawScore: 0, Weight: 20, Blacklisted: true},
			finding(SourceTradeRegistry, 10, 10),
			finding(SourceBKM, 10, 10),
			finding(SourceWebReputation, 15, 15),
			finding(SourceWebsite, 10, 10),
			finding(SourceFinancialHealth, 5, 5),
		}

		score := CompositeScore(findings)
		if score != 50 {
			t.Errorf("CompositeScore() = %v, want 50", score)
		}
		if got := Categorize(score, findings); got != CategoryCritical {
			t.Errorf("Categorize() = %v, want %v", got, CategoryCritical)
		}
	})
}

func TestNewRiskAssessment_TotalFailure(t *testing.T) {
	var findings []SourceFinding
	for name, weight := range SourceWeights {
		findings = append(findings, UnknownFinding(name, weight, "source unavailable"))
	}

	assessment := NewRiskAssessment("app-1", findings, time.Now().UTC())

	if assessment.CompositeScore != 0 {
		t.Errorf("CompositeScore = %v, want 0", assessment.CompositeScore)
	}
	if assessment.Category != CategoryCritical {
		t.Errorf("Category = %v, want %v", assessment.Category, CategoryCritical)
	}
	if assessment.ID == "" {
		t.Error("ID is empty")
	}
	if len(assessment.Recommendations) == 0 {
		t.Error("Recommendations is empty")
	}
}
