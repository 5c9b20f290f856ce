package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxConcurrent = 8
	DefaultBudget        = 30 * time.Second
)

type LoopConfig struct {
	// MaxConcurrent bounds the outbound fan-out.
	MaxConcurrent int64
	// Budget is the wall-clock limit for one analysis run. Calls still
	// outstanding when it expires are cancelled and become unknown findings.
	Budget time.Duration
	// MaxIterations caps policy consultations per run.
	MaxIterations int
}

func (c LoopConfig) withDefaults(sourceCount int) LoopConfig {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 2 * sourceCount
	}
	return c
}

// ReasoningLoop drives the selection policy over the set of applicable
// sources, fans calls out through the invoker, and joins all results before
// returning. It never terminates before every applicable source has been
// visited or the budget is exhausted, so one bad signal cannot starve
// evidence collection elsewhere.
type ReasoningLoop struct {
	invoker *Invoker
	policy  domain.SelectionPolicy
	cfg     LoopConfig
	logger  *zap.SugaredLogger
}

func NewReasoningLoop(invoker *Invoker, policy domain.SelectionPolicy, cfg LoopConfig, logger *zap.SugaredLogger) *ReasoningLoop {
	return &ReasoningLoop{
		invoker: invoker,
		policy:  policy,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run collects exactly one finding per configured source: a real one for
// every source invoked in time, a synthesized unknown for everything else.
// The returned slice carries no ordering guarantee; aggregation is
// order-independent by construction.
func (l *ReasoningLoop) Run(ctx context.Context, app *domain.Application, sources map[string]domain.VerificationSource) []domain.SourceFinding {
	cfg := l.cfg.withDefaults(len(sources))

	runCtx, cancel := context.WithTimeout(ctx, cfg.Budget)
	defer cancel()

	findings := make([]domain.SourceFinding, 0, len(sources))
	unvisited := make(map[string]domain.VerificationSource, len(sources))

	// sources whose required fields are absent are never applicable;
	// they get their unknown finding up front without a collaborator call
	for name, src := range sources {
		if missing := app.MissingFields(src.RequiredFields()); len(missing) > 0 {
			findings = append(findings, domain.UnknownFinding(name, src.Weight(),
				fmt.Sprintf("not applicable: required fields %v absent", missing)))
			continue
		}
		unvisited[name] = src
	}

	results := make(chan domain.SourceFinding, len(unvisited))
	sem := semaphore.NewWeighted(cfg.MaxConcurrent)
	var wg sync.WaitGroup

	dispatch := func(src domain.VerificationSource) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(runCtx, 1); err != nil {
				results <- domain.UnknownFinding(src.Name(), src.Weight(), "cancelled: analysis budget exhausted")
				return
			}
			defer sem.Release(1)
			results <- l.invoker.Invoke(runCtx, src, app)
		}()
	}

	remaining := func() []string {
		names := make([]string, 0, len(unvisited))
		for name := range unvisited {
			names = append(names, name)
		}
		return names
	}

	for iter := 0; len(unvisited) > 0 && runCtx.Err() == nil && iter < cfg.MaxIterations; iter++ {
		name, ok, err := l.policy.Next(runCtx, app, remaining())
		if err != nil {
			l.logger.Warnw("selection policy failed, draining deterministically",
				"application_id", app.ID, "error", err)
			break
		}
		if !ok {
			break
		}
		src, pending := unvisited[name]
		if !pending {
			l.logger.Warnw("policy chose a visited or unknown source", "application_id", app.ID, "source", name)
			continue
		}
		delete(unvisited, name)
		dispatch(src)
	}

	// the policy may stop or misbehave, but the loop visits every applicable
	// source unless the budget ran out first
	if len(unvisited) > 0 && runCtx.Err() == nil {
		for _, name := range SortByWeightDesc(remaining()) {
			dispatch(unvisited[name])
			delete(unvisited, name)
		}
	}

	// anything still unvisited here means the budget expired mid-selection
	for name, src := range unvisited {
		findings = append(findings, domain.UnknownFinding(name, src.Weight(), "cancelled: analysis budget exhausted"))
	}

	// barrier join: the aggregator only ever sees the full finding set
	wg.Wait()
	close(results)
	for f := range results {
		findings = append(findings, f)
	}

	return findings
}
