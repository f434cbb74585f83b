// Package errors provides error handling for ontomap.
//
// It re-exports github.com/cockroachdb/errors so that every package wraps,
// annotates and inspects errors the same way:
//
//	if err := codec.Decode(r); err != nil {
//	    return errors.Wrap(err, "load subjects")
//	}
//
//	return errors.WithHint(err, "declare the prefix with WithNamespace")
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
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Sentinel errors shared across packages. Wrap them to add context while
// keeping errors.Is working.
var (
	// ErrNotFound indicates a class, prefix or subject does not exist.
	ErrNotFound = New("not found")

	// ErrInvalidArgument indicates a malformed argument.
	ErrInvalidArgument = New("invalid argument")

	// ErrFrozen indicates an attempt to modify a registered class.
	ErrFrozen = New("class is frozen")
)
