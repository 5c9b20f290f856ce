package agent

import (
	"context"
	"sort"

	"github.com/payrisk/merchant-risk/internal/domain"
)

// WeightDescendingPolicy selects the heaviest remaining source first, with a
// lexical tie-break. Fully deterministic; used as the default policy, the
// model fallback, and the drain order when a policy stops early.
type WeightDescendingPolicy struct{}

func NewWeightDescendingPolicy() *WeightDescendingPolicy {
	return &WeightDescendingPolicy{}
}

func (p *WeightDescendingPolicy) Next(ctx context.Context, app *domain.Application, remaining []string) (string, bool, error) {
	if len(remaining) == 0 {
		return "", false, nil
	}
	ordered := SortByWeightDesc(remaining)
	return ordered[0], true, nil
}

// SortByWeightDesc orders source names by configured weight, heaviest first,
// ties broken by name.
func SortByWeightDesc(names []string) []string {
	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.Slice(ordered, func(i, j int) bool {
		wi, wj := domain.SourceWeights[ordered[i]], domain.SourceWeights[ordered[j]]
		if wi != wj {
			return wi > wj
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}
