package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rivaluta/internal/core"
	"rivaluta/internal/istat"
)

type Config struct {
	// ISTAT calculator
	ISTATEndpoint  string
	ReferenceMonth int // 1..12
	ReferenceYear  int
	HTTPTimeout    time.Duration
	Concurrency    int

	// Logging
	LogLevel string

	// History archive (disabled when empty)
	HistoryDBPath string

	// AMQP (disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (disabled when spreadsheet ID is empty)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func Load() *Config {
	return &Config{
		ISTATEndpoint:  getEnv("ISTAT_ENDPOINT", istat.DefaultEndpoint),
		ReferenceMonth: getEnvInt("ISTAT_REFERENCE_MONTH", 12),
		ReferenceYear:  getEnvInt("ISTAT_REFERENCE_YEAR", 2024),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 0),
		Concurrency:    getEnvInt("CONCURRENCY", 1),

		LogLevel: getEnv("LOG_LEVEL", "warn"),

		HistoryDBPath: getEnv("HISTORY_DB_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rivaluta"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "revaluation_outcomes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Rivalutazioni"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
	}
}

// Reference returns the configured reference period. Call Validate first.
func (c *Config) Reference() (core.Period, error) {
	return core.NewPeriod(c.ReferenceMonth-1, c.ReferenceYear)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// ISTAT endpoint
	if parsedURL, err := url.Parse(c.ISTATEndpoint); err != nil || c.ISTATEndpoint == "" {
		errors = append(errors, fmt.Sprintf("invalid ISTAT endpoint '%s'", c.ISTATEndpoint))
	} else if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		errors = append(errors, fmt.Sprintf("invalid ISTAT endpoint scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// Reference period
	if c.ReferenceMonth < 1 || c.ReferenceMonth > 12 {
		errors = append(errors, fmt.Sprintf("invalid reference month %d: must be between 1 and 12", c.ReferenceMonth))
	}
	if c.ReferenceYear < core.MinYear {
		errors = append(errors, fmt.Sprintf("invalid reference year %d: must be at least %d", c.ReferenceYear, core.MinYear))
	}

	if c.HTTPTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must not be negative", c.HTTPTimeout))
	}

	if c.Concurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid concurrency %d: must be at least 1", c.Concurrency))
	} else if c.Concurrency > 12 {
		errors = append(errors, fmt.Sprintf("invalid concurrency %d: must be at most 12", c.Concurrency))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.EqualFold(c.LogLevel, level) {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	// History directory must exist or be creatable
	if c.HistoryDBPath != "" {
		dir := filepath.Dir(c.HistoryDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create history database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
