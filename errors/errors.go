// Package errors provides error handling for forcegraph.
//
// It re-exports github.com/cockroachdb/errors so every package wraps and
// inspects errors the same way, and defines the sentinels the engine reports.
//
//	if err := cfg.Validate(); err != nil {
//	    return errors.Wrap(err, "physics")
//	}
//	if errors.Is(err, errors.ErrInvalidConfig) { ... }
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
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	GetAllHints     = crdb.GetAllHints
	FlattenHints    = crdb.FlattenHints
	FlattenDetails  = crdb.FlattenDetails
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap these to add context while keeping errors.Is working.
var (
	// ErrInvalidConfig indicates a configuration value the engine refuses to start with
	ErrInvalidConfig = New("invalid configuration")

	// ErrGraphData indicates a node or edge record that had to be excluded or normalised
	ErrGraphData = New("graph data error")

	// ErrUnknownNode indicates a node id that is not part of the loaded graph
	ErrUnknownNode = New("unknown node")

	// ErrDisposed indicates use of a view or adapter after it was torn down
	ErrDisposed = New("disposed")

	// ErrUnsupportedFormat indicates an input or output format with no handler
	ErrUnsupportedFormat = New("unsupported format")
)

// NewInvalidConfigError creates an ErrInvalidConfig error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}

// IsInvalidConfigError checks if an error is or wraps ErrInvalidConfig
func IsInvalidConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}
