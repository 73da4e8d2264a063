package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rivaluta/internal/cli"
	"rivaluta/internal/config"
	"rivaluta/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rivaluta",
	Short: "Revalue an amount month by month with the ISTAT coefficients",
	Long: `rivaluta asks the ISTAT "Rivaluta" calculator for the coefficient of every
month in a range and prints one line per month:

    <Mese> <anno>; <coefficiente>; <importo rivalutato>

Without flags the range and the amount are asked interactively.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		}
		logger = cli.SetupLogger(level)

		loaded, err := cli.LoadAndValidateConfig(logger)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debug("Configuration loaded", log.FieldOperation, log.OpStartup,
			"concurrency", cfg.Concurrency, "history", cfg.HistoryDBPath != "")
		return nil
	},
	RunE: runRevaluation,
}

var verbose bool

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every request at debug level")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}
