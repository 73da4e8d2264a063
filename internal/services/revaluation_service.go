package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"rivaluta/internal/core"
	"rivaluta/internal/log"
)

// MaxConcurrency caps parallel requests towards the revaluation service.
const MaxConcurrency = 12

// Revaluer performs one revaluation request for a period.
type Revaluer interface {
	Revalue(ctx context.Context, period core.Period, amount core.Amount) (core.Result, error)
}

// RevaluationService drives a run over a period range, one request per month.
type RevaluationService struct {
	client      Revaluer
	concurrency int
	logger      *log.Logger
	structured  *log.StructuredLogger
}

func NewRevaluationService(client Revaluer, concurrency int, logger *log.Logger) *RevaluationService {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRevaluation)
	return &RevaluationService{
		client:      client,
		concurrency: concurrency,
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
	}
}

// Run revalues amount for every period from start to end inclusive and
// returns one outcome per period in chronological order. A failing period
// becomes a Failure outcome and the run moves on.
//
// An invalid range is the only fatal error. If ctx is cancelled the run
// stops early and returns the outcomes completed so far, still in order,
// together with ctx.Err().
func (s *RevaluationService) Run(ctx context.Context, start, end core.Period, amount core.Amount) ([]core.Outcome, error) {
	periods, err := core.Enumerate(start, end)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Starting revaluation run",
		log.NewFields().WithRange(start, end, amount).WithOperation(log.OpRun).ToSlice()...)
	began := time.Now()

	var outcomes []core.Outcome
	if s.concurrency == 1 {
		outcomes = s.runSequential(ctx, periods, amount)
	} else {
		outcomes = s.runParallel(ctx, periods, amount)
	}

	s.logger.InfoContext(ctx, "Revaluation run finished",
		"periods", len(periods),
		"completed", len(outcomes),
		log.FieldDuration, time.Since(began).Milliseconds())

	if err := ctx.Err(); err != nil && len(outcomes) < len(periods) {
		return outcomes, err
	}
	return outcomes, nil
}

// Record runs the range and packs the result into a core.Run. The returned
// Run is populated even when err is a cancellation.
func (s *RevaluationService) Record(ctx context.Context, start, end, reference core.Period, amount core.Amount) (core.Run, error) {
	run := core.Run{
		Start:     start,
		End:       end,
		Amount:    amount,
		Reference: reference,
		StartedAt: time.Now().UTC(),
	}
	s.logger.DebugContext(ctx, "Revaluing to reference period", log.FieldReference, reference.String())
	outcomes, err := s.Run(ctx, start, end, amount)
	run.Outcomes = outcomes
	run.FinishedAt = time.Now().UTC()
	return run, err
}

func (s *RevaluationService) runSequential(ctx context.Context, periods []core.Period, amount core.Amount) []core.Outcome {
	outcomes := make([]core.Outcome, 0, len(periods))
	for _, p := range periods {
		if ctx.Err() != nil {
			break
		}
		o, ok := s.revalue(ctx, p, amount)
		if !ok {
			break
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// runParallel fans requests out but stores each outcome at its period's
// index, then keeps only the contiguous completed prefix.
func (s *RevaluationService) runParallel(ctx context.Context, periods []core.Period, amount core.Amount) []core.Outcome {
	slots := make([]core.Outcome, len(periods))
	done := make([]bool, len(periods))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, p := range periods {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			o, ok := s.revalue(ctx, p, amount)
			if ok {
				slots[i] = o
				done[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for n < len(done) && done[n] {
		n++
	}
	return slots[:n]
}

// revalue returns false when the request was cut short by cancellation, in
// which case no outcome is recorded for the period.
func (s *RevaluationService) revalue(ctx context.Context, p core.Period, amount core.Amount) (core.Outcome, bool) {
	result, err := s.client.Revalue(ctx, p, amount)
	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return core.Outcome{}, false
		}
		o := core.Failure(p, fmt.Errorf("revalue %s: %w", p, err))
		s.structured.LogOutcome(ctx, o)
		return o, true
	}
	o := core.Success(p, result)
	s.structured.LogOutcome(ctx, o)
	return o, true
}
