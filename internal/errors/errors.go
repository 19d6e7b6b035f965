package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess          = 0   // Indicates successful execution.
	ExitErrorGeneric     = 1   // Indicates a generic error.
	ExitErrorTimeout     = 2   // Indicates the operation timed out.
	ExitErrorUnavailable = 3   // Indicates the remote service could not be reached or refused the call.
	ExitErrorConfig      = 4   // Indicates a configuration error.
	ExitErrorCanceled    = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

var (
	// ErrBusy is returned when an asynchronous flow operation is requested
	// while another one is still in flight.
	ErrBusy = errors.New("another meal operation is already in progress")

	// ErrSuperseded is returned by an asynchronous flow operation whose result
	// was discarded because the flow was reset while the call was in flight.
	ErrSuperseded = errors.New("meal operation superseded by a reset")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ParseFailure reports that the remote parser could not turn a meal
// description into food items, either because the call failed or because the
// service answered with a non-success response.
type ParseFailure struct {
	// Cause is the underlying error returned by the service client.
	Cause error
}

// Error returns a user-facing message followed by the cause.
func (e ParseFailure) Error() string {
	if e.Cause == nil {
		return "failed to parse meal"
	}
	return "failed to parse meal: " + e.Cause.Error()
}

// Unwrap returns the original wrapped error.
func (e ParseFailure) Unwrap() error { return e.Cause }

// CalculationFailure reports that the remote glycemic-load calculation failed.
type CalculationFailure struct {
	// Cause is the underlying error returned by the service client.
	Cause error
}

// Error returns a user-facing message followed by the cause.
func (e CalculationFailure) Error() string {
	if e.Cause == nil {
		return "failed to calculate glycemic load"
	}
	return "failed to calculate glycemic load: " + e.Cause.Error()
}

// Unwrap returns the original wrapped error.
func (e CalculationFailure) Unwrap() error { return e.Cause }

// RemoteError is a non-success HTTP answer from the meal-analysis service.
type RemoteError struct {
	// Operation is the client operation that issued the request.
	Operation string
	// StatusCode is the HTTP status returned by the service.
	StatusCode int
	// Message is the service's explanation, when it sent one.
	Message string
}

// Error returns a formatted message describing the remote failure.
func (e RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: service returned %d %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: service returned %d: %s", e.Operation, e.StatusCode, e.Message)
}

// QuotaExceeded reports whether the service rejected the call because the
// daily meal limit was reached.
func (e RemoteError) QuotaExceeded() bool { return e.StatusCode == http.StatusTooManyRequests }

// Unauthorized reports whether the service rejected the bearer token.
func (e RemoteError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error returned by the application to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var configErr ConfigError
	var remoteErr RemoteError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &remoteErr):
		return ExitErrorUnavailable
	}
	return ExitErrorGeneric
}

// HandleError writes a one-line description of err to out and returns the
// matching exit code. A nil error writes nothing.
func HandleError(err error, out io.Writer) int {
	if err == nil {
		return ExitSuccess
	}
	var remoteErr RemoteError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "Error: the meal service did not answer in time (%v)\n", err)
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "Canceled.\n")
	case errors.As(err, &remoteErr) && remoteErr.QuotaExceeded():
		fmt.Fprintf(out, "Error: daily meal limit reached. %s\n", remoteErr.Message)
	case errors.As(err, &remoteErr) && remoteErr.Unauthorized():
		fmt.Fprintf(out, "Error: the meal service rejected the token; set GLMEAL_TOKEN or -token.\n")
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return ExitCodeFor(err)
}
