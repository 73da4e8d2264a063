package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rivaluta/internal/cli"
	"rivaluta/internal/log"
	"rivaluta/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived runs",
	Long:  `List the runs stored in the history database (HISTORY_DB_PATH), newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openHistory()
		if err != nil {
			return err
		}
		defer repo.Close()

		runs, err := repo.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		logger.WithComponent(log.ComponentStorage).Debug("History listed",
			log.FieldOperation, log.OpList, "runs", len(runs))
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Nessuna esecuzione archiviata.")
			return nil
		}
		return cli.WriteRunSummaries(cmd.OutOrStdout(), runs)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the results of one archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		repo, err := openHistory()
		if err != nil {
			return err
		}
		defer repo.Close()

		run, err := repo.GetRun(cmd.Context(), id)
		if errors.Is(err, storage.ErrRunNotFound) {
			return fmt.Errorf("run %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		return cli.WriteOutcomes(cmd.OutOrStdout(), run.Outcomes)
	},
}

func openHistory() (*storage.SQLiteRepository, error) {
	if cfg.HistoryDBPath == "" {
		return nil, errors.New("history archive disabled: set HISTORY_DB_PATH")
	}
	return cli.InitHistory(logger, cfg.HistoryDBPath)
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
}
