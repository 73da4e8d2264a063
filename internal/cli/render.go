package cli

import (
	"bufio"
	"fmt"
	"io"

	"rivaluta/internal/core"
	"rivaluta/internal/storage"
)

// RenderOutcome formats one result line, "Gennaio 2000; 1.85; 185.00" on
// success and "Febbraio 2000; ERRORE; network_error" on failure.
func RenderOutcome(o core.Outcome) string {
	if o.OK() {
		return fmt.Sprintf("%s; %s; %s", o.Period, o.Result.Coefficient, o.Result.RevaluedAmount)
	}
	return fmt.Sprintf("%s; ERRORE; %s", o.Period, o.Kind)
}

// WriteOutcomes writes one line per outcome, in the given order.
func WriteOutcomes(w io.Writer, outcomes []core.Outcome) error {
	bw := bufio.NewWriter(w)
	for _, o := range outcomes {
		if _, err := fmt.Fprintln(bw, RenderOutcome(o)); err != nil {
			return fmt.Errorf("write outcome: %w", err)
		}
	}
	return bw.Flush()
}

// WriteRunSummaries writes the history listing, newest first as given.
func WriteRunSummaries(w io.Writer, runs []storage.RunSummary) error {
	bw := bufio.NewWriter(w)
	for _, r := range runs {
		_, err := fmt.Fprintf(bw, "%d; %s; %s - %s; %s; rif. %s; ok %d; errori %d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Start, r.End, r.Amount, r.Reference, r.Succeeded, r.Failed)
		if err != nil {
			return fmt.Errorf("write run summary: %w", err)
		}
	}
	return bw.Flush()
}
