// Package validation provides common validation utilities for configuration
// parameters across the stepflow library.
//
// The helpers return *errors.ValidationError values so constructors and the
// config loader report problems with the same message shape.
package validation
