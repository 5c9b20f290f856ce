package domain

import (
	"strings"
	"testing"
)

func TestRecommendations_PerCategory(t *testing.T) {
	tests := []struct {
		category RiskCategory
		contains string
	}{
		{CategoryExcellent, "standard terms"},
		{CategoryLow, "standard monitoring"},
		{CategoryMedium, "enhanced monitoring"},
		{CategoryHigh, "manual review"},
		{CategoryCritical, "fraud investigation"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			items := Recommendations(tt.category, nil)
			if len(items) == 0 {
				t.Fatal("Recommendations() is empty")
			}
			found := false
			for _, item := range items {
				if strings.Contains(item, tt.contains) {
					found = true
				}
			}
			if !found {
				t.Errorf("Recommendations(%s) = %v, want an item containing %q", tt.category, items, tt.contains)
			}
		})
	}
}

func TestRecommendations_MissingSources(t *testing.T) {
	findings := []SourceFinding{
		{SourceName: SourceWebsite, Status: FindingUnknown},
		{SourceName: SourceBKM, Status: FindingFailed},
		{SourceName: SourceMersis, Status: FindingVerified, RawScore: 15},
	}

	items := Recommendations(CategoryMedium, findings)

	var manual []string
	for _, item := range items {
		if strings.Contains(item, "manually") {
			manual = append(manual, item)
		}
	}

	if len(manual) != 2 {
		t.Fatalf("want one manual-verification item per inconclusive source, got %v", manual)
	}
	// sorted by source name, not invocation order
	if !strings.Contains(manual[0], SourceBKM) || !strings.Contains(manual[1], SourceWebsite) {
		t.Errorf("manual items not sorted by source name: %v", manual)
	}
}

func TestRecommendations_OrderIndependent(t *testing.T) {
	a := []SourceFinding{
		{SourceName: SourceWebsite, Status: FindingUnknown},
		{SourceName: SourceBKM, Status: FindingFailed},
	}
	b := []SourceFinding{a[1], a[0]}

	itemsA := Recommendations(CategoryHigh, a)
	itemsB := Recommendations(CategoryHigh, b)

	if len(itemsA) != len(itemsB) {
		t.Fatalf("lengths differ: %d vs %d", len(itemsA), len(itemsB))
	}
	for i := range itemsA {
		if itemsA[i] != itemsB[i] {
			t.Errorf("item %d differs: %q vs %q", i, itemsA[i], itemsB[i])
		}
	}
}
