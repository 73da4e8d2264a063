package commands

import (
	"context"

	"rivaluta/internal/amqp"
	"rivaluta/internal/cli"
	"rivaluta/internal/log"
	"rivaluta/internal/services"
	gsheet "rivaluta/internal/sheets/google"
)

// openSinks builds the outcome sinks enabled in the configuration.
func openSinks(ctx context.Context) []services.OutcomeSink {
	var sinks []services.OutcomeSink

	if cfg.HistoryDBPath != "" {
		repo, err := cli.InitHistory(logger, cfg.HistoryDBPath)
		if err == nil {
			sinks = append(sinks, repo)
		}
	} else {
		logger.Debug("History archive disabled - no HISTORY_DB_PATH provided")
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldComponent, log.ComponentAMQP, log.FieldError, err)
		} else {
			sinks = append(sinks, client)
		}
	} else {
		logger.Debug("AMQP publishing disabled - no AMQP_URL provided")
	}

	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldComponent, log.ComponentSheets, log.FieldError, err)
		} else {
			sinks = append(sinks, client)
		}
	} else {
		logger.Debug("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	return sinks
}
