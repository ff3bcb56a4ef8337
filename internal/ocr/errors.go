package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineFailed is returned when the recognition engine invocation
	// fails. The failure is unrecoverable for the request; nothing retries it.
	ErrEngineFailed = errors.New("recognition engine invocation failed")

	// ErrUnknownEngine is returned when an unrecognized engine name is
	// configured.
	ErrUnknownEngine = errors.New("unknown recognition engine")

	// ErrEngineUnavailable is returned by Ping when the engine cannot be
	// reached or exercised.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")
)

// EngineError wraps a recognition failure with the operation that produced it.
type EngineError struct {
	// Op is the operation that failed (e.g. "ExtractText").
	Op string

	// Err is the underlying error.
	Err error

	// Details carries additional context from the engine.
	Details string
}

func (e *EngineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return errors.Is(e.Err, target) }

// NewEngineError creates an EngineError for the given operation.
func NewEngineError(op string, err error, details string) *EngineError {
	return &EngineError{Op: op, Err: err, Details: details}
}

// WrapEngineError wraps err as an EngineError unless it already is one.
func WrapEngineError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return err
	}
	return NewEngineError(op, err, details)
}
