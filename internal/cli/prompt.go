package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"rivaluta/internal/core"
)

// ErrInputClosed is returned when the input ends before a valid answer.
var ErrInputClosed = errors.New("input closed")

// Request is what the user asked for: a period range and an amount.
type Request struct {
	Start  core.Period
	End    core.Period
	Amount core.Amount
}

// Prompter asks for the start date, end date and amount, repeating each
// question until the answer is valid.
type Prompter struct {
	in    *bufio.Scanner
	out   io.Writer
	now   func() time.Time
	lines chan inputLine
	once  sync.Once
}

type inputLine struct {
	text string
	err  error
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    bufio.NewScanner(in),
		out:   out,
		now:   time.Now,
		lines: make(chan inputLine, 1),
	}
}

// Ask runs the three questions in order. It returns ctx.Err() as soon as
// ctx is cancelled, even while waiting for a line.
func (p *Prompter) Ask(ctx context.Context) (Request, error) {
	start, err := p.askPeriod(ctx, "Inserisci la data di inizio (MM.YYYY): ", nil)
	if err != nil {
		return Request{}, err
	}
	end, err := p.askPeriod(ctx, "Inserisci la data di fine (MM.YYYY): ", &start)
	if err != nil {
		return Request{}, err
	}
	amount, err := p.askAmount(ctx)
	if err != nil {
		return Request{}, err
	}
	return Request{Start: start, End: end, Amount: amount}, nil
}

func (p *Prompter) askPeriod(ctx context.Context, question string, after *core.Period) (core.Period, error) {
	for {
		fmt.Fprintln(p.out, question)
		line, err := p.readLine(ctx)
		if err != nil {
			return core.Period{}, err
		}
		period, err := ParseInputPeriod(line, p.now())
		if err != nil {
			fmt.Fprintln(p.out, periodMessage(err))
			continue
		}
		if after != nil && period.Before(*after) {
			fmt.Fprintln(p.out, "La data di fine non può precedere la data di inizio.")
			continue
		}
		return period, nil
	}
}

func (p *Prompter) askAmount(ctx context.Context) (core.Amount, error) {
	for {
		fmt.Fprintln(p.out, "Inserisci l'importo della data da attualizzare (solo numeri interi): ")
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		amount, err := core.ParseAmount(line)
		if err != nil {
			if _, convErr := strconv.ParseInt(line, 10, 64); convErr == nil {
				fmt.Fprintln(p.out, "L'importo deve essere maggiore di 0.")
			} else {
				fmt.Fprintln(p.out, "Formato non valido. Inserisci un numero intero.")
			}
			continue
		}
		return amount, nil
	}
}

// readLine waits for the next input line or for ctx to end. The scanner runs
// in its own goroutine since a terminal read cannot be interrupted.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() { go p.scan() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line.text, line.err
	}
}

func (p *Prompter) scan() {
	defer close(p.lines)
	for p.in.Scan() {
		p.lines <- inputLine{text: strings.TrimSpace(p.in.Text())}
	}
	if err := p.in.Err(); err != nil {
		p.lines <- inputLine{err: fmt.Errorf("read input: %w", err)}
	}
}

// ParseInputPeriod parses MM.YYYY and rejects years after the one in now.
func ParseInputPeriod(s string, now time.Time) (core.Period, error) {
	period, err := core.ParsePeriod(strings.TrimSpace(s))
	if err != nil {
		return core.Period{}, err
	}
	if period.Year() > now.Year() {
		return core.Period{}, fmt.Errorf("%w: %d is after %d", core.ErrInvalidYear, period.Year(), now.Year())
	}
	return period, nil
}

func periodMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return "Il mese deve essere compreso tra 01 e 12."
	case errors.Is(err, core.ErrInvalidYear):
		return fmt.Sprintf("L'anno deve essere compreso tra %d e l'anno corrente.", core.MinYear)
	default:
		return "Formato data non valido. Usa il formato MM.YYYY."
	}
}
