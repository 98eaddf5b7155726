// Package errors provides error handling for ISL tooling.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadDomain(path); err != nil {
//	    return errors.Wrap(err, "failed to load domain")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run the ISL compiler to produce a domain JSON first")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll

	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across the ISL toolchain.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidDomain indicates a domain declaration that failed validation
	ErrInvalidDomain = New("invalid domain declaration")

	// ErrTraceCorrupt indicates a trace document that could not be decoded
	ErrTraceCorrupt = New("corrupt trace")

	// ErrNoCallEvent indicates a trace slice with no handler_call event,
	// so no evaluation context can be built from it
	ErrNoCallEvent = New("trace slice has no call event")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidDomainError checks if an error is or wraps ErrInvalidDomain
func IsInvalidDomainError(err error) bool {
	return err != nil && Is(err, ErrInvalidDomain)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidDomainError creates an invalid-domain error with a formatted message
func NewInvalidDomainError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidDomain, Newf(format, args...).Error())
}
