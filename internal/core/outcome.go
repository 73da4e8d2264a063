package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindNetwork ErrorKind = "network_error"
	KindParse   ErrorKind = "parse_error"
)

type (
	// ErrorKind tags why a single period could not be revalued.
	ErrorKind string

	// Result holds the two values returned by the revaluation service,
	// kept as the exact text the service produced.
	Result struct {
		Coefficient    string
		RevaluedAmount string
	}

	// Outcome is the per-period result of a run: either a Result or a failure.
	Outcome struct {
		Period Period
		Result Result
		Kind   ErrorKind // empty on success
		Err    error
	}

	// Run is one complete execution over a period range.
	Run struct {
		ID         int64
		Start      Period
		End        Period
		Amount     Amount
		Reference  Period
		StartedAt  time.Time
		FinishedAt time.Time
		Outcomes   []Outcome
	}

	RunStats struct {
		Total     int
		Succeeded int
		Failed    int
	}
)

var (
	ErrNetwork = errors.New("network error")
	ErrParse   = errors.New("parse error")
)

func (r Result) Validate() error {
	if strings.TrimSpace(r.Coefficient) == "" {
		return errors.New("empty coefficient")
	}
	if strings.TrimSpace(r.RevaluedAmount) == "" {
		return errors.New("empty revalued amount")
	}
	return nil
}

// Success wraps a revaluation result for p.
func Success(p Period, r Result) Outcome {
	return Outcome{Period: p, Result: r}
}

// Failure wraps the error that prevented p from being revalued.
func Failure(p Period, err error) Outcome {
	return Outcome{Period: p, Kind: KindOf(err), Err: err}
}

func (o Outcome) OK() bool { return o.Err == nil && o.Kind == "" }

// KindOf classifies err. Anything that is not a parse error counts as a
// network failure, since the service exchange is the only other source.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return KindNetwork
	}
}

func (r Run) Stats() RunStats {
	s := RunStats{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		if o.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
