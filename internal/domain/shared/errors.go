package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// parent is the broader kind this error specialises, e.g. ALREADY_FINALIZED is an INVALID_TRANSITION
	parent *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, or the code of one of
// the kinds this error specialises. Messages are not compared.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	for cur := e; cur != nil; cur = cur.parent {
		if cur.Code == t.Code {
			return true
		}
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Kind codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeAlreadyFinalized    = "ALREADY_FINALIZED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrDuplicateIdentifier = NewDomainError(CodeDuplicateIdentifier, "Identifier already exists")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Operation not allowed in current state")
	ErrAlreadyFinalized    = &DomainError{Code: CodeAlreadyFinalized, Message: "Already finalized", parent: ErrInvalidTransition}
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NewValidationError creates a VALIDATION_ERROR with a specific message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewDuplicateIdentifierError creates a DUPLICATE_IDENTIFIER error naming the conflicting value
func NewDuplicateIdentifierError(format string, args ...any) *DomainError {
	return NewDomainError(CodeDuplicateIdentifier, fmt.Sprintf(format, args...))
}

// NewInvalidTransitionError creates an INVALID_TRANSITION error for a lifecycle action
func NewInvalidTransitionError(from, action string) *DomainError {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("Cannot %s from status %s", action, from))
}

// NewAlreadyFinalizedError creates an ALREADY_FINALIZED error. It also matches ErrInvalidTransition.
func NewAlreadyFinalizedError(what string) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyFinalized,
		Message: fmt.Sprintf("%s is already finalized", what),
		parent:  ErrInvalidTransition,
	}
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// CodeOf returns the domain error code carried by err, or "" when err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
