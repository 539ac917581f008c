// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateMode checks the normalization mode.
func ValidateMode(mode string) error {
	if mode != constants.ModeLenient && mode != constants.ModeStrict {
		return fmt.Errorf("expected data mode of %s or %s, got %s",
			constants.ModeLenient, constants.ModeStrict, mode)
	}
	return nil
}

// ValidateInvalidation checks the cache invalidation strategy.
func ValidateInvalidation(strategy string) error {
	if strategy != constants.InvalidationModTime && strategy != constants.InvalidationHash {
		return fmt.Errorf("expected invalidation of %s or %s, got %s",
			constants.InvalidationModTime, constants.InvalidationHash, strategy)
	}
	return nil
}

// ValidateLogLevel checks a zap log level name.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// ValidateLogFormat checks the log encoder name.
func ValidateLogFormat(format string) error {
	if format != constants.LogFormatJSON && format != constants.LogFormatConsole {
		return fmt.Errorf("invalid log format: %s", format)
	}
	return nil
}
