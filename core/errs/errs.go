// Package errs defines the error taxonomy shared by the catalog, the vendor
// adapters, and the client façade.
//
// The lower layers raise the narrow sentinel errors; the client façade wraps
// everything that escapes it into a [ClientError], so CLI and GUI callers only
// need one top-level errors.As check.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is raised locally, before any network attempt, for
	// malformed requests or inference configurations.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is raised by the catalog for unknown canonical names or
	// unknown (name, vendor) combinations.
	ErrNotFound = errors.New("not found")

	// ErrNotSupported is raised by the catalog and the adapter factory when a
	// vendor has no entry or no implementation.
	ErrNotSupported = errors.New("not supported")

	// ErrNotImplemented is raised for per-vendor capability gaps (for example
	// asynchronous calls on the managed-gateway path). Capability gaps are
	// explicit; they are never simulated or silently degraded.
	ErrNotImplemented = errors.New("not implemented")
)

// Validationf builds an ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// NotSupportedf builds an ErrNotSupported with a formatted message.
func NotSupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotSupported, fmt.Sprintf(format, args...))
}

// ClientError is the single wrapped error kind the client façade raises.
// It preserves the original failure as its cause so callers can still reach
// the underlying sentinel via errors.Is.
type ClientError struct {
	Vendor string // vendor tag of the client that failed
	Op     string // operation that failed: "converse", "converse_stream", ...
	Err    error  // original failure from validation, adaptation, or transport
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Vendor, e.Op, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Client wraps err into a ClientError. A nil err returns nil so call sites can
// wrap unconditionally. An err that is already a ClientError is returned as-is
// to avoid double wrapping at nested façade boundaries.
func Client(vendor, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	return &ClientError{Vendor: vendor, Op: op, Err: err}
}
