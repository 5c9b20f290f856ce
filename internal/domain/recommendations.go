package domain

import (
	"fmt"
	"sort"
)

// Recommendations maps a risk category and the finding set to an ordered
// list of action items. Pure and deterministic: the same findings produce
// the same list regardless of the order sources were invoked in.
func Recommendations(category RiskCategory, findings []SourceFinding) []string {
	var items []string

	switch category {
	case CategoryExcellent:
		items = append(items,
			"Approve with standard terms",
			"No additional verification required")
	case CategoryLow:
		items = append(items,
			"Approve with standard monitoring",
			"Schedule routine portfolio review")
	case CategoryMedium:
		items = append(items,
			"Approve with enhanced monitoring",
			"Re-evaluate risk profile after the first settlement cycle")
	case CategoryHigh:
		items = append(items,
			"Route to manual review before approval",
			"Request additional supporting documentation")
	case CategoryCritical:
		items = append(items,
			"Reject or escalate to fraud investigation",
			"Do not enable payment processing until cleared by compliance")
	}

	// one item per source that produced no usable evidence,
	// sorted by name so the list is stable
	var missing []string
	for _, f := range findings {
		if f.Inconclusive() {
			missing = append(missing, f.SourceName)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		items = append(items, fmt.Sprintf("Verify %s manually: source returned no usable data", name))
	}

	return items
}
