// Package simerr defines the four error kinds the engine raises, per the
// error-handling design: ConfigurationError and InvariantViolation abort a
// run; NumericalWarning and BoundaryViolation are recorded and logged, never
// returned as fatal errors.
package simerr

import "fmt"

// ConfigurationError reports an invalid parameter or boundary setup,
// detected at build time or at first initialization step. Fatal.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// InvariantViolation reports a broken structural invariant: id != index,
// search-array size below the real count, a tree built against a stale
// array, an uninitialized smoothing length. Fatal in debug builds.
type InvariantViolation struct {
	Invariant string
	Message   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation (%s): %s", e.Invariant, e.Message)
}

func NewInvariantViolation(invariant, message string) *InvariantViolation {
	return &InvariantViolation{Invariant: invariant, Message: message}
}

// NumericalWarning reports a recoverable numerical condition: Newton-Raphson
// non-convergence, neighbor-buffer overflow, a non-positive Riemann input
// state. Never fatal; the caller substitutes a documented fallback and
// continues.
type NumericalWarning struct {
	Kind    string
	Message string
}

func (e *NumericalWarning) Error() string {
	return fmt.Sprintf("numerical warning (%s): %s", e.Kind, e.Message)
}

func NewNumericalWarning(kind, message string) *NumericalWarning {
	return &NumericalWarning{Kind: kind, Message: message}
}

// BoundaryViolation reports a particle that escaped a MIRROR domain by more
// than one wall-spacing. Never fatal; the particle is re-wrapped or clipped.
type BoundaryViolation struct {
	ParticleID int
	Dim        int
	Message    string
}

func (e *BoundaryViolation) Error() string {
	return fmt.Sprintf("boundary violation: particle %d dim %d: %s", e.ParticleID, e.Dim, e.Message)
}

func NewBoundaryViolation(particleID, dim int, message string) *BoundaryViolation {
	return &BoundaryViolation{ParticleID: particleID, Dim: dim, Message: message}
}
