// Package errors provides error handling for ipcforge.
//
// This package re-exports github.com/cockroachdb/errors, providing stack
// traces, error wrapping, and user-facing hints, plus the sentinel errors
// the transform pipeline reports.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.Is(err, errors.ErrParse) {
//	    // the file could not be parsed; the build must fail
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
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for the transform pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrParse indicates the source text could not be parsed into a valid
	// syntax tree. Parse failures are fatal to the file's transform: no
	// partial output is ever produced.
	ErrParse = New("parse error")

	// ErrNoRole indicates the file name carries neither the main nor the
	// renderer role suffix. Such files are outside the engine's scope.
	ErrNoRole = New("no ipc role in file name")

	// ErrChannelCollision indicates two exports in one file derived the
	// same channel string (same name segment and byte-identical body).
	ErrChannelCollision = New("channel collision")

	// ErrUnsupportedSyntax indicates an exported declaration the extractor
	// recognized as function-like but cannot safely rewrite.
	ErrUnsupportedSyntax = New("unsupported syntax")
)

// IsParseError checks if an error is or wraps ErrParse.
func IsParseError(err error) bool {
	return err != nil && Is(err, ErrParse)
}

// IsChannelCollision checks if an error is or wraps ErrChannelCollision.
func IsChannelCollision(err error) bool {
	return err != nil && Is(err, ErrChannelCollision)
}

// NewParseError creates a parse error with a formatted message.
func NewParseError(format string, args ...interface{}) error {
	return Wrap(ErrParse, Newf(format, args...).Error())
}
