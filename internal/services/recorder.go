package services

import (
	"context"
	"fmt"

	"rivaluta/internal/core"
	"rivaluta/internal/log"
)

// OutcomeSink receives a finished run, e.g. the history archive or a queue.
type OutcomeSink interface {
	Name() string
	RecordRun(ctx context.Context, run *core.Run) error
}

// RunRecorder hands a finished run to every configured sink. A failing sink
// is logged and skipped; it never alters the outcomes already produced.
type RunRecorder struct {
	sinks      []OutcomeSink
	structured *log.StructuredLogger
	logger     *log.Logger
}

func NewRunRecorder(logger *log.Logger, sinks ...OutcomeSink) *RunRecorder {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRecorder)
	return &RunRecorder{
		sinks:      sinks,
		structured: log.NewStructuredLogger(logger),
		logger:     logger,
	}
}

// Record returns the number of sinks that accepted the run.
func (r *RunRecorder) Record(ctx context.Context, run *core.Run) int {
	accepted := 0
	for _, sink := range r.sinks {
		if err := sink.RecordRun(ctx, run); err != nil {
			r.structured.LogError(ctx, "Failed to record run",
				fmt.Errorf("%s: %w", sink.Name(), err),
				log.ComponentRecorder, log.OpRecord,
				log.NewFields().WithRange(run.Start, run.End, run.Amount))
			continue
		}
		accepted++
		r.logger.InfoContext(ctx, "Run recorded", log.FieldSink, sink.Name(), log.FieldRunID, run.ID)
	}
	return accepted
}

// Close closes every sink that holds resources.
func (r *RunRecorder) Close() error {
	var errs []error
	for _, sink := range r.sinks {
		if c, ok := sink.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close recorder: %v", errs)
	}
	return nil
}
