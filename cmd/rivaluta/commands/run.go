package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"rivaluta/internal/cli"
	"rivaluta/internal/core"
	"rivaluta/internal/istat"
	"rivaluta/internal/log"
	"rivaluta/internal/services"
)

var (
	fromFlag   string
	toFlag     string
	amountFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Revalue an amount over a month range",
	Long: `Revalue an amount for every month from --from to --to (both MM.YYYY).
When any of --from, --to or --amount is missing the values are asked on the terminal.`,
	Example: `  rivaluta run --from 01.2000 --to 12.2000 --amount 100`,
	Args:    cobra.NoArgs,
	RunE:    runRevaluation,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromFlag, "from", "", "First month, MM.YYYY")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last month, MM.YYYY")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "Amount to revalue, positive integer")
}

func init() {
	addRunFlags(runCmd)
}

func runRevaluation(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context(), logger)
	defer stop()

	req, err := readRequest(ctx, cmd)
	if err != nil {
		return err
	}

	reference, err := cfg.Reference()
	if err != nil {
		return fmt.Errorf("reference period: %w", err)
	}

	client := istat.NewClient(istat.Config{
		Endpoint:   cfg.ISTATEndpoint,
		Reference:  reference,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	})
	svc := services.NewRevaluationService(client, cfg.Concurrency, logger)

	run, runErr := svc.Record(ctx, req.Start, req.End, reference, req.Amount)
	if errors.Is(runErr, core.ErrInvalidRange) {
		return runErr
	}

	if err := cli.WriteOutcomes(cmd.OutOrStdout(), run.Outcomes); err != nil {
		return err
	}

	if runErr != nil {
		logger.Warn("Run interrupted, results are partial and not recorded",
			"completed", len(run.Outcomes), log.FieldError, runErr)
		return runErr
	}

	recordRun(&run)
	return nil
}

// readRequest takes the range from flags when all three are set and from the
// interactive prompt otherwise.
func readRequest(ctx context.Context, cmd *cobra.Command) (cli.Request, error) {
	if fromFlag == "" || toFlag == "" || amountFlag == "" {
		return cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).Ask(ctx)
	}

	now := time.Now()
	start, err := cli.ParseInputPeriod(fromFlag, now)
	if err != nil {
		return cli.Request{}, fmt.Errorf("--from: %w", err)
	}
	end, err := cli.ParseInputPeriod(toFlag, now)
	if err != nil {
		return cli.Request{}, fmt.Errorf("--to: %w", err)
	}
	if end.Before(start) {
		return cli.Request{}, fmt.Errorf("%w: --to %s is before --from %s", core.ErrInvalidRange, end, start)
	}
	amount, err := core.ParseAmount(amountFlag)
	if err != nil {
		return cli.Request{}, fmt.Errorf("--amount: %w", err)
	}
	return cli.Request{Start: start, End: end, Amount: amount}, nil
}

// recordRun hands a completed run to every configured sink. Sink setup or
// delivery failures are logged and never fail the command.
func recordRun(run *core.Run) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sinks := openSinks(ctx)
	if len(sinks) == 0 {
		return
	}
	recorder := services.NewRunRecorder(logger, sinks...)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warn("Failed to close sinks", log.FieldError, err)
		}
	}()
	recorder.Record(ctx, run)
}
