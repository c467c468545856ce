package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/logger"
)

// NoResponseMessage is shown when a request went out but nothing came back.
const NoResponseMessage = "No response from server. Please check if backend is running."

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid returns a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Message converts err into one short line fit for a toast. It never
// includes stack or transport detail beyond what the user can act on.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return vErr.Error()
	}

	switch api.Classify(err) {
	case api.CategoryHTTP:
		var httpErr *api.HTTPError
		stderrors.As(err, &httpErr)
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return fmt.Sprintf("Server error: %d", httpErr.StatusCode)
	case api.CategoryConnectivity:
		return NoResponseMessage
	case api.CategoryRequest:
		var reqErr *api.RequestError
		stderrors.As(err, &reqErr)
		return reqErr.Err.Error()
	default:
		return err.Error()
	}
}

// UserMessage logs the raw error and returns the user-facing line for a
// failed action, e.g. UserMessage("save habit", err).
func UserMessage(action string, err error) string {
	if err == nil {
		return ""
	}
	logger.Error("action failed", "action", action, "error", err)
	msg := Message(err)
	if action == "" {
		return msg
	}
	return fmt.Sprintf("Failed to %s: %s", action, msg)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
