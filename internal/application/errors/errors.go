// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// DefinitionError indicates a check or condition was declared in a way
// that violates a construction-time invariant (empty description,
// duplicate ID, invalid severity, condition registered on a non-registry).
type DefinitionError struct {
	Subject string // What was being defined (check id, function name)
	Message string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid definition %s: %s", e.Subject, e.Message)
}

// NewDefinitionError creates a new definition error.
func NewDefinitionError(subject, message string) *DefinitionError {
	return &DefinitionError{
		Subject: subject,
		Message: message,
	}
}

// IntrospectionError indicates a function could not be inspected into an
// argument contract (wrong shape, unsupported parameter or return types).
type IntrospectionError struct {
	Cause    error
	Function string
	Message  string
}

func (e *IntrospectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot introspect %s: %s: %v", e.Function, e.Message, e.Cause)
	}
	return fmt.Sprintf("cannot introspect %s: %s", e.Function, e.Message)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Cause
}

// NewIntrospectionError creates a new introspection error.
func NewIntrospectionError(function, message string, cause error) *IntrospectionError {
	return &IntrospectionError{
		Function: function,
		Message:  message,
		Cause:    cause,
	}
}

// ArgumentError indicates argument values could not be bound onto a
// callable at invocation time.
type ArgumentError struct {
	Cause    error
	Callable string // Callable that rejected the arguments
	Argument string // Offending argument name, empty when not attributable
	Message  string
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("bad arguments for %s", e.Callable)
	if e.Argument != "" {
		msg += fmt.Sprintf(": argument %q", e.Argument)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ArgumentError) Unwrap() error {
	return e.Cause
}

// NewArgumentError creates a new argument error.
func NewArgumentError(callable, argument, message string, cause error) *ArgumentError {
	return &ArgumentError{
		Callable: callable,
		Argument: argument,
		Message:  message,
		Cause:    cause,
	}
}

// ValidationError indicates a config document failed validation.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ExecutionError indicates a check invocation failed (not validation).
type ExecutionError struct {
	Cause   error
	CheckID string
	Message string
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution failed for check %s: %s: %v", e.CheckID, e.Message, e.Cause)
	}
	return fmt.Sprintf("execution failed for check %s: %s", e.CheckID, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates a new execution error.
func NewExecutionError(checkID, message string, cause error) *ExecutionError {
	return &ExecutionError{
		CheckID: checkID,
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
