// Package errors defines the structured error type the mapper reports:
// an error code, the affected schedule or network entity, a severity,
// and an optional underlying cause. Per-route failures carry enough
// context to land in the mapping report; batch-fatal failures carry
// the entity reference the operator needs to fix the input.
package errors

import (
	"fmt"
	"strings"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// MappingError represents a mapping failure with context.
type MappingError struct {
	// Code is the error code (e.g., "CONFIG_001")
	Code string
	// Message is the primary error message
	Message string
	// Details provides additional context about the error
	Details string
	// Entity is the schedule or network entity the error concerns
	Entity types.EntityRef
	// Line and Route identify the transit route for per-route failures
	Line  string
	Route string
	// Severity indicates the severity level of the error
	Severity types.Severity
	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Line != "" || e.Route != "" {
		parts = append(parts, fmt.Sprintf("line %s route %s", e.Line, e.Route))
	}
	if e.Entity.ID != "" {
		parts = append(parts, e.Entity.String())
	}

	parts = append(parts, e.Message)

	if e.Details != "" {
		parts = append(parts, fmt.Sprintf("details: %s", e.Details))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %s", e.Cause.Error()))
	}

	return strings.Join(parts, " - ")
}

// Unwrap returns the underlying cause.
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// NewMappingError creates a new MappingError with the provided parameters.
func NewMappingError(code, message string) *MappingError {
	return &MappingError{
		Code:     code,
		Message:  message,
		Severity: types.ERROR,
	}
}

// WithEntity adds the affected entity to the error.
func (e *MappingError) WithEntity(kind, id string) *MappingError {
	e.Entity = types.EntityRef{Kind: kind, ID: id}
	return e
}

// WithRoute adds the transit line and route context to the error.
func (e *MappingError) WithRoute(line, route string) *MappingError {
	e.Line = line
	e.Route = route
	return e
}

// WithSeverity sets the severity level of the error.
func (e *MappingError) WithSeverity(severity types.Severity) *MappingError {
	e.Severity = severity
	return e
}

// WithDetails adds detailed error information.
func (e *MappingError) WithDetails(details string) *MappingError {
	e.Details = details
	return e
}

// WithCause sets the underlying error.
func (e *MappingError) WithCause(cause error) *MappingError {
	e.Cause = cause
	return e
}

// Common error creators

// NewConfigError creates a fatal configuration error. Configuration
// errors abort the batch before any work begins.
func NewConfigError(message string) *MappingError {
	return NewMappingError("CONFIG_001", message).
		WithSeverity(types.CRITICAL)
}

// NewMissingInputError creates a fatal missing-input error naming the
// offending entity.
func NewMissingInputError(kind, id, message string) *MappingError {
	return NewMappingError("INPUT_001", message).
		WithEntity(kind, id).
		WithSeverity(types.CRITICAL)
}

// NewUnmappableRouteError creates a recoverable per-route error. The
// route is excluded from the output schedule; the batch continues.
func NewUnmappableRouteError(line, route, reason string) *MappingError {
	return NewMappingError("ROUTE_001", "route cannot be mapped").
		WithRoute(line, route).
		WithDetails(reason).
		WithSeverity(types.WARNING)
}
