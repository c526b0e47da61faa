package commands

import (
	"fmt"
	"os"
	"strings"

	"arenad/internal/errors"
	"arenad/internal/logger"
)

// Exit codes by error class
const (
	exitGeneral    = 1
	exitUsage      = 2
	exitNotFound   = 3
	exitConflict   = 4
	exitDatabase   = 5
	exitConfigFile = 78
)

// HandleError processes errors and provides user-friendly output
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	if ae, ok := errors.As(err); ok {
		logger.WithError(err).Debug("Command failed")

		switch ae.Code {
		case errors.ErrDatabaseConnection, errors.ErrDatabaseMigration:
			return fmt.Errorf("%v\n\nTip: Check [database] in your config ('arena config show') and run 'arena migrate up'.", err)
		case errors.ErrConflict:
			return fmt.Errorf("%v\n\nTip: A row with the same key already exists.", err)
		case errors.ErrTransactionFailed:
			return fmt.Errorf("%v\n\nNothing was stored.", err)
		default:
			return err
		}
	}

	// Check for common error patterns and provide helpful messages
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "permission denied"):
		return fmt.Errorf("%v\n\nTip: Check the permissions of the database and config paths.", err)

	case strings.Contains(errStr, "no such table"):
		return fmt.Errorf("%v\n\nTip: The schema is missing. Run 'arena migrate up'.", err)

	case strings.Contains(errStr, "unknown command"), strings.Contains(errStr, "unknown flag"):
		return fmt.Errorf("%v\n\nTip: Run 'arena --help' for usage.", err)

	default:
		return err
	}
}

// ExitCode maps err to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.GetCode(err) {
	case errors.ErrValidationFailed, errors.ErrInvalidInput, errors.ErrInvalidPort:
		return exitUsage
	case errors.ErrNotFound:
		return exitNotFound
	case errors.ErrConflict, errors.ErrCreationFailed:
		return exitConflict
	case errors.ErrDatabaseConnection, errors.ErrDatabaseQuery, errors.ErrDatabaseMigration, errors.ErrTransactionFailed:
		return exitDatabase
	case errors.ErrConfigNotFound, errors.ErrConfigInvalid, errors.ErrConfigParse, errors.ErrConfigValidation:
		return exitConfigFile
	}
	return exitGeneral
}

// ExitOnError handles errors consistently across CLI commands
func ExitOnError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", HandleError(err))
	os.Exit(ExitCode(err))
}
