package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// Invoker wraps every verification source behind one call/timeout/error
// contract. Failures are absorbed into unknown findings, never propagated,
// because partial evidence must still yield a score.
type Invoker struct {
	callTimeout time.Duration
	logger      *zap.SugaredLogger
}

func NewInvoker(callTimeout time.Duration, logger *zap.SugaredLogger) *Invoker {
	return &Invoker{
		callTimeout: callTimeout,
		logger:      logger,
	}
}

type checkResult struct {
	finding *domain.SourceFinding
	err     error
}

// Invoke calls one source for one application. The required-field precheck
// rejects the call before the collaborator is contacted; Unavailable gets a
// single retry; Timeout and InvalidInput do not.
func (i *Invoker) Invoke(ctx context.Context, source domain.VerificationSource, app *domain.Application) domain.SourceFinding {
	name := source.Name()
	weight := source.Weight()

	if missing := app.MissingFields(source.RequiredFields()); len(missing) > 0 {
		err := domain.NewToolError(name, domain.ToolErrInvalidInput, fmt.Errorf("missing fields %v", missing))
		i.logger.Warnw("source not invocable", "application_id", app.ID, "source", name, "error", err)
		return domain.UnknownFinding(name, weight, fmt.Sprintf("not invoked: required fields %v absent", missing))
	}

	finding, err := i.call(ctx, source, app)
	if err != nil && domain.ToolErrorIs(err, domain.ToolErrUnavailable) {
		i.logger.Warnw("source unavailable, retrying once", "application_id", app.ID, "source", name, "error", err)
		finding, err = i.call(ctx, source, app)
	}

	if err != nil {
		i.logger.Warnw("source failed", "application_id", app.ID, "source", name, "error", err)
		return domain.UnknownFinding(name, weight, fmt.Sprintf("source failed: %v", err))
	}

	result := *finding
	result.SourceName = name
	result.Weight = weight
	// raw scores are bounded by the source weight
	if result.RawScore < 0 {
		result.RawScore = 0
	}
	if result.RawScore > weight {
		result.RawScore = weight
	}
	return result
}

// call runs one time-bounded attempt. The source runs in its own goroutine
// so a collaborator that ignores cancellation cannot hold the barrier join
// past the deadline.
func (i *Invoker) call(ctx context.Context, source domain.VerificationSource, app *domain.Application) (*domain.SourceFinding, error) {
	cctx, cancel := context.WithTimeout(ctx, i.callTimeout)
	defer cancel()

	started := time.Now()
	ch := make(chan checkResult, 1)
	go func() {
		finding, err := source.Check(cctx, app)
		ch <- checkResult{finding: finding, err: err}
	}()

	select {
	case <-cctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// the run budget expired, not this call's own timeout
			return nil, domain.NewToolError(source.Name(), domain.ToolErrTimeout, fmt.Errorf("cancelled by run budget"))
		}
		return nil, domain.NewToolError(source.Name(), domain.ToolErrTimeout,
			fmt.Errorf("no response within %s", i.callTimeout))

	case r := <-ch:
		if r.err != nil {
			var te *domain.ToolError
			if errors.As(r.err, &te) {
				return nil, r.err
			}
			if errors.Is(r.err, context.DeadlineExceeded) {
				return nil, domain.NewToolError(source.Name(), domain.ToolErrTimeout, r.err)
			}
			return nil, domain.NewToolError(source.Name(), domain.ToolErrUnavailable, r.err)
		}
		if r.finding == nil {
			return nil, domain.NewToolError(source.Name(), domain.ToolErrUnavailable, fmt.Errorf("source returned no finding"))
		}
		i.logger.Debugw("source completed",
			"application_id", app.ID,
			"source", source.Name(),
			"latency_ms", time.Since(started).Milliseconds(),
			"status", r.finding.Status)
		return r.finding, nil
	}
}
