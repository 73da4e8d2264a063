package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"rivaluta/internal/config"
	"rivaluta/internal/core"
	"rivaluta/internal/log"
)

func setRunFlags(t *testing.T, from, to, amount string) {
	t.Helper()
	prevFrom, prevTo, prevAmount := fromFlag, toFlag, amountFlag
	fromFlag, toFlag, amountFlag = from, to, amount
	t.Cleanup(func() {
		fromFlag, toFlag, amountFlag = prevFrom, prevTo, prevAmount
	})
}

func TestReadRequest_Flags(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		to         string
		amount     string
		wantErr    error
		wantMonths int
	}{
		{name: "valid range", from: "01.2000", to: "03.2000", amount: "100", wantMonths: 3},
		{name: "single month", from: "07.1990", to: "07.1990", amount: "1", wantMonths: 1},
		{name: "end before start", from: "05.2000", to: "04.2000", amount: "100", wantErr: core.ErrInvalidRange},
		{name: "bad month", from: "13.2000", to: "12.2000", amount: "100", wantErr: core.ErrInvalidMonth},
		{name: "year before series", from: "01.1900", to: "12.2000", amount: "100", wantErr: core.ErrInvalidYear},
		{name: "decimal amount", from: "01.2000", to: "03.2000", amount: "10.5", wantErr: core.ErrInvalidAmount},
		{name: "zero amount", from: "01.2000", to: "03.2000", amount: "0", wantErr: core.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRunFlags(t, tt.from, tt.to, tt.amount)

			req, err := readRequest(context.Background(), &cobra.Command{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("readRequest() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readRequest() error = %v", err)
			}
			if got := core.MonthsBetween(req.Start, req.End); got != tt.wantMonths {
				t.Errorf("readRequest() spans %d months, want %d", got, tt.wantMonths)
			}
		})
	}
}

func TestReadRequest_FallsBackToPrompt(t *testing.T) {
	setRunFlags(t, "01.2000", "", "")

	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("02.2001\n04.2001\n250\n"))
	var prompts bytes.Buffer
	cmd.SetErr(&prompts)

	req, err := readRequest(context.Background(), cmd)
	if err != nil {
		t.Fatalf("readRequest() error = %v", err)
	}
	if req.Start.String() != "Febbraio 2001" || req.End.String() != "Aprile 2001" || req.Amount != 250 {
		t.Errorf("readRequest() = %+v, want Febbraio 2001..Aprile 2001 / 250", req)
	}
	if !strings.Contains(prompts.String(), "Inserisci la data di inizio") {
		t.Errorf("prompt not written to stderr: %q", prompts.String())
	}
}

func TestReadRequest_PromptCancelled(t *testing.T) {
	setRunFlags(t, "", "", "")

	in, w := io.Pipe()
	t.Cleanup(func() { w.Close() })
	cmd := &cobra.Command{}
	cmd.SetIn(in)
	cmd.SetErr(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := readRequest(ctx, cmd)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("readRequest() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("readRequest() kept waiting for input after cancellation")
	}
}

// withCommandState installs the package configuration and logger a command
// run relies on.
func withCommandState(t *testing.T, c *config.Config) {
	t.Helper()
	prevCfg, prevLogger := cfg, logger
	cfg, logger = c, log.Discard()
	t.Cleanup(func() {
		cfg, logger = prevCfg, prevLogger
	})
}

func TestRunRevaluation_OneLinePerPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.PostForm.Get("meseDa") == "Febbraio" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<input type="text" readonly value="1.85"><input type="text" readonly value="185.00">`)
	}))
	defer srv.Close()

	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency_%d", concurrency), func(t *testing.T) {
			withCommandState(t, &config.Config{
				ISTATEndpoint:  srv.URL,
				ReferenceMonth: 12,
				ReferenceYear:  2024,
				Concurrency:    concurrency,
			})
			setRunFlags(t, "01.2000", "03.2000", "100")

			cmd := &cobra.Command{}
			cmd.SetContext(context.Background())
			var stdout bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(io.Discard)

			if err := runRevaluation(cmd, nil); err != nil {
				t.Fatalf("runRevaluation() error = %v", err)
			}

			want := "Gennaio 2000; 1.85; 185.00\n" +
				"Febbraio 2000; ERRORE; network_error\n" +
				"Marzo 2000; 1.85; 185.00\n"
			if stdout.String() != want {
				t.Errorf("stdout =\n%s\nwant\n%s", stdout.String(), want)
			}
		})
	}
}

func TestRunRevaluation_InvalidRangePrintsNothing(t *testing.T) {
	withCommandState(t, &config.Config{
		ISTATEndpoint:  "http://127.0.0.1:1",
		ReferenceMonth: 12,
		ReferenceYear:  2024,
		Concurrency:    1,
	})
	setRunFlags(t, "03.2000", "01.2000", "100")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)

	if err := runRevaluation(cmd, nil); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("runRevaluation() error = %v, want %v", err, core.ErrInvalidRange)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want no output", stdout.String())
	}
}
