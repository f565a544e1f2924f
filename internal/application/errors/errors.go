// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// ValidationError reports a request or profile file the planner cannot accept.
// Field names the part of the input at fault ("request", "profiles",
// "sweep.generator", ...). Details holds one entry per violation.
type ValidationError struct {
	Field   string
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	switch len(e.Details) {
	case 0:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	case 1:
		return fmt.Sprintf("invalid %s: %s: %s", e.Field, e.Message, e.Details[0])
	default:
		return fmt.Sprintf("invalid %s: %s (%d issues: %s)", e.Field, e.Message, len(e.Details), strings.Join(e.Details, "; "))
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Details: details}
}

// AssemblyError reports a failure after the request was accepted and its
// points assembled, such as a stage graph that cannot be ordered.
type AssemblyError struct {
	Cause   error
	Point   string
	Message string
}

func (e *AssemblyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("point %s: %s: %v", e.Point, e.Message, e.Cause)
	}
	return fmt.Sprintf("point %s: %s", e.Point, e.Message)
}

func (e *AssemblyError) Unwrap() error { return e.Cause }

// NewAssemblyError creates a new assembly error for the named sweep point.
func NewAssemblyError(point, message string, cause error) *AssemblyError {
	return &AssemblyError{Point: point, Message: message, Cause: cause}
}

// ConfigurationError reports a broken planner setup rather than a bad request:
// an unavailable schema, missing profile source and the like.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s misconfigured: %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s misconfigured: %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{Aspect: aspect, Message: message, Cause: cause}
}

// IsUserError reports whether err is caused by the input rather than the
// setup. Domain resolution errors count as input errors.
func IsUserError(err error) bool {
	var validation *ValidationError
	var assembly *AssemblyError
	return errors.As(err, &validation) || errors.As(err, &assembly) || entities.IsResolutionError(err)
}
