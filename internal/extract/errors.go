package extract

import (
	"errors"
	"fmt"
	"time"

	"fieldlens/internal/domain"
)

// AdapterUnavailableError indicates an extraction layer's backing service
// could not be reached.
type AdapterUnavailableError struct {
	Layer domain.LayerID
	Err   error
}

func (e *AdapterUnavailableError) Error() string {
	return fmt.Sprintf("%s adapter unavailable: %v", e.Layer, e.Err)
}

func (e *AdapterUnavailableError) Unwrap() error {
	return e.Err
}

// NewAdapterUnavailable creates an AdapterUnavailableError.
func NewAdapterUnavailable(layer domain.LayerID, err error) *AdapterUnavailableError {
	return &AdapterUnavailableError{Layer: layer, Err: err}
}

// AdapterTimeoutError indicates an extraction layer exceeded its bounded wait.
// Treated identically to AdapterUnavailableError for orchestration.
type AdapterTimeoutError struct {
	Layer   domain.LayerID
	Timeout time.Duration
	Err     error
}

func (e *AdapterTimeoutError) Error() string {
	return fmt.Sprintf("%s adapter timed out after %s: %v", e.Layer, e.Timeout, e.Err)
}

func (e *AdapterTimeoutError) Unwrap() error {
	return e.Err
}

// NewAdapterTimeout creates an AdapterTimeoutError.
func NewAdapterTimeout(layer domain.LayerID, timeout time.Duration, err error) *AdapterTimeoutError {
	return &AdapterTimeoutError{Layer: layer, Timeout: timeout, Err: err}
}

// IsAdapterFailure reports whether err is an adapter unavailability or
// timeout, the two recoverable layer failure modes.
func IsAdapterFailure(err error) bool {
	var unavailable *AdapterUnavailableError
	var timeout *AdapterTimeoutError
	return errors.As(err, &unavailable) || errors.As(err, &timeout)
}
