package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates API rate limit exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Tool bridge errors

var (
	// ErrNotStarted indicates the tool bridge has not completed discovery
	ErrNotStarted = errors.New("tool bridge not started")

	// ErrAlreadyStarted indicates Start was called twice
	ErrAlreadyStarted = errors.New("tool bridge already started")

	// ErrUnknownTool indicates a call named a tool missing from the catalog
	ErrUnknownTool = errors.New("unknown tool")

	// ErrModelUnavailable indicates no language model credentials are configured
	ErrModelUnavailable = errors.New("language model unavailable")
)

// StartupError is returned when the tool server cannot be launched or the
// discovery handshake fails.
type StartupError struct {
	Command string
	Err     error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("tool server %q failed to start: %v", e.Command, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// NotStartedError is returned for calls issued before discovery completed
// or after the bridge was closed.
type NotStartedError struct {
	Tool string
}

func (e *NotStartedError) Error() string {
	return fmt.Sprintf("cannot call %s: %v", e.Tool, ErrNotStarted)
}

func (e *NotStartedError) Unwrap() error { return ErrNotStarted }

// ToolInvocationError carries the message of a remote tool failure.
type ToolInvocationError struct {
	Tool    string
	Message string
	Err     error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Tool, e.Message)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// AgentRunError is returned when the agent runtime fails to produce a response,
// including failures while constructing the agent.
type AgentRunError struct {
	Agent string
	Err   error
}

func (e *AgentRunError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *AgentRunError) Unwrap() error { return e.Err }

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets validation failures match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines multiple errors into one
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
