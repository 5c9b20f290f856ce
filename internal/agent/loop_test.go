package agent

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type stopPolicy struct{}

func (stopPolicy) Next(ctx context.Context, app *domain.Application, remaining []string) (string, bool, error) {
	return "", false, nil
}

func fastSources(names map[string]float64) map[string]domain.VerificationSource {
	sources := make(map[string]domain.VerificationSource, len(names))
	for name, weight := range names {
		name := name
		sources[name] = &fakeSource{
			name:   name,
			weight: weight,
			check: func(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
				return verifiedFinding(name, 1), nil
			},
		}
	}
	return sources
}

func newTestLoop(policy domain.SelectionPolicy, cfg LoopConfig) *ReasoningLoop {
	logger := zap.NewNop().Sugar()
	return NewReasoningLoop(NewInvoker(time.Second, logger), policy, cfg, logger)
}

func TestReasoningLoop_VisitsEveryApplicableSourceOnce(t *testing.T) {
	sources := fastSources(map[string]float64{
		domain.SourceMersis:        15,
		domain.SourceTaxOffice:     15,
		domain.SourceTradeRegistry: 10,
		domain.SourceFraudCheck:    20,
	})

	loop := newTestLoop(NewWeightDescendingPolicy(), LoopConfig{})
	findings := loop.Run(context.Background(), testApp(), sources)

	if len(findings) != len(sources) {
		t.Fatalf("got %d findings, want %d", len(findings), len(sources))
	}
	seen := make(map[string]int)
	for _, f := range findings {
		seen[f.SourceName]++
	}
	for name, src := range sources {
		if seen[name] != 1 {
			t.Errorf("source %s produced %d findings, want 1", name, seen[name])
		}
		if calls := src.(*fakeSource).calls.Load(); calls != 1 {
			t.Errorf("source %s invoked %d times, want 1", name, calls)
		}
	}
}

func TestReasoningLoop_PolicyStopStillVisitsAll(t *testing.T) {
	sources := fastSources(map[string]float64{
		domain.SourceMersis:    15,
		domain.SourceTaxOffice: 15,
		domain.SourceBKM:       10,
	})

	loop := newTestLoop(stopPolicy{}, LoopConfig{})
	findings := loop.Run(context.Background(), testApp(), sources)

	if len(findings) != 3 {
		t.Fatalf("got %d findings, want 3", len(findings))
	}
	for name, src := range sources {
		if calls := src.(*fakeSource).calls.Load(); calls != 1 {
			t.Errorf("source %s invoked %d times despite policy stop, want 1", name, calls)
		}
	}
}

func TestReasoningLoop_InapplicableSourceNeverDispatched(t *testing.T) {
	website := &fakeSource{
		name:     domain.SourceWebsite,
		weight:   10,
		required: []domain.Field{domain.FieldWebsiteURL},
		check: func(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
			return verifiedFinding(domain.SourceWebsite, 10), nil
		},
	}
	sources := fastSources(map[string]float64{domain.SourceMersis: 15})
	sources[domain.SourceWebsite] = website

	loop := newTestLoop(NewWeightDescendingPolicy(), LoopConfig{})
	findings := loop.Run(context.Background(), testApp(), sources) // app has no website URL

	if website.calls.Load() != 0 {
		t.Errorf("inapplicable source invoked %d times, want 0", website.calls.Load())
	}

	var websiteFinding *domain.SourceFinding
	for i := range findings {
		if findings[i].SourceName == domain.SourceWebsite {
			websiteFinding = &findings[i]
		}
	}
	if websiteFinding == nil {
		t.Fatal("no finding synthesized for inapplicable source")
	}
	if websiteFinding.Status != domain.FindingUnknown || websiteFinding.RawScore != 0 {
		t.Errorf("synthesized finding = %+v, want unknown with raw score 0", websiteFinding)
	}
}

func TestReasoningLoop_BudgetConvertsOutstandingToUnknown(t *testing.T) {
	slow := map[string]domain.VerificationSource{}
	for name, weight := range map[string]float64{
		domain.SourceMersis:    15,
		domain.SourceTaxOffice: 15,
	} {
		name := name
		slow[name] = &fakeSource{
			name:   name,
			weight: weight,
			check: func(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
				select {
				case <-time.After(2 * time.Second):
					return verifiedFinding(name, weight), nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		}
	}

	loop := newTestLoop(NewWeightDescendingPolicy(), LoopConfig{Budget: 50 * time.Millisecond})
	start := time.Now()
	findings := loop.Run(context.Background(), testApp(), slow)

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run() took %v, should settle near the 50ms budget", elapsed)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	for _, f := range findings {
		if f.Status != domain.FindingUnknown {
			t.Errorf("finding %s status = %v, want %v", f.SourceName, f.Status, domain.FindingUnknown)
		}
		if f.RawScore != 0 {
			t.Errorf("finding %s raw score = %v, want 0", f.SourceName, f.RawScore)
		}
	}
}

func TestReasoningLoop_BoundedFanOut(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	sources := map[string]domain.VerificationSource{}
	for _, name := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		name := name
		sources[name] = &fakeSource{
			name:   name,
			weight: 1,
			check: func(ctx context.Context, app *domain.Application) (*domain.SourceFinding, error) {
				n := inFlight.Add(1)
				mu.Lock()
				if n > peak.Load() {
					peak.Store(n)
				}
				mu.Unlock()
				time.Sleep(30 * time.Millisecond)
				inFlight.Add(-1)
				return verifiedFinding(name, 1), nil
			},
		}
	}

	loop := newTestLoop(NewWeightDescendingPolicy(), LoopConfig{MaxConcurrent: 2})
	findings := loop.Run(context.Background(), testApp(), sources)

	if len(findings) != 6 {
		t.Fatalf("got %d findings, want 6", len(findings))
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestReasoningLoop_OrderDoesNotChangeOutcome(t *testing.T) {
	weights := map[string]float64{
		domain.SourceMersis:     15,
		domain.SourceTaxOffice:  15,
		domain.SourceFraudCheck: 20,
	}

	run := func(policy domain.SelectionPolicy) float64 {
		loop := newTestLoop(policy, LoopConfig{})
		findings := loop.Run(context.Background(), testApp(), fastSources(weights))
		return domain.CompositeScore(findings)
	}

	if a, b := run(NewWeightDescendingPolicy()), run(stopPolicy{}); a != b {
		t.Errorf("composite score depends on selection order: %v vs %v", a, b)
	}
}
