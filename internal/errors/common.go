package errors

import "fmt"

// Configuration Errors
func ConfigNotFound(path string) *ArenaError {
	return NewWithDetails(ErrConfigNotFound, "Configuration file not found", fmt.Sprintf("Path: %s", path))
}

func ConfigInvalid(reason string) *ArenaError {
	return NewWithDetails(ErrConfigInvalid, "Invalid configuration", reason)
}

func ConfigParseError(cause error) *ArenaError {
	return Wrap(ErrConfigParse, "Failed to parse configuration", cause)
}

func ConfigValidationError(field, reason string) *ArenaError {
	return NewWithDetails(ErrConfigValidation, "Configuration validation failed",
		fmt.Sprintf("Field: %s, Reason: %s", field, reason))
}

// Resource Errors

// NotFound is what a caller raises when a read, update or delete matched no row
func NotFound(resource string, key interface{}) *ArenaError {
	return NewWithDetails(ErrNotFound, "Resource not found",
		fmt.Sprintf("%s with ID '%v' not found", resource, key)).
		WithContext("resource", resource)
}

// CreationFailed is what a caller raises when a create returned no row
func CreationFailed(resource string) *ArenaError {
	return NewWithDetails(ErrCreationFailed, "Resource could not be created",
		fmt.Sprintf("the store declined to create the %s", resource)).
		WithContext("resource", resource)
}

func Conflict(resource, reason string) *ArenaError {
	return NewWithDetails(ErrConflict, "Resource conflict",
		fmt.Sprintf("Resource: %s, Reason: %s", resource, reason))
}

// TransactionFailed marks a failed unit of work. The cause stays reachable
// through errors.Is and errors.As.
func TransactionFailed(operation string, cause error) *ArenaError {
	return WrapWithDetails(ErrTransactionFailed, "Transaction failed",
		fmt.Sprintf("Operation: %s", operation), cause)
}

// Database Errors
func DatabaseConnectionError(cause error) *ArenaError {
	return Wrap(ErrDatabaseConnection, "Database connection failed", cause)
}

func DatabaseQueryError(resource string, cause error) *ArenaError {
	return WrapWithDetails(ErrDatabaseQuery, "Database query failed",
		fmt.Sprintf("Resource: %s", resource), cause)
}

func DatabaseMigrationError(version string, cause error) *ArenaError {
	return WrapWithDetails(ErrDatabaseMigration, "Database migration failed",
		fmt.Sprintf("Version: %s", version), cause)
}

// Validation Errors
func ValidationFailed(field, value, reason string) *ArenaError {
	return NewWithDetails(ErrValidationFailed, "Validation failed",
		fmt.Sprintf("Field: %s, Value: %s, Reason: %s", field, value, reason))
}

func InvalidInput(reason string) *ArenaError {
	return NewWithDetails(ErrInvalidInput, "Invalid input", reason)
}

func FileReadError(path string, cause error) *ArenaError {
	return WrapWithDetails(ErrFileRead, "Failed to read file", fmt.Sprintf("Path: %s", path), cause)
}
