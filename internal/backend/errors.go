package backend

import "github.com/pkg/errors"

// BackendError wraps a failure from the backing runtime (the container
// engine, in the default driver) with the operation that triggered it,
// preserving the underlying chain via github.com/pkg/errors so callers can
// still errors.Unwrap (or errors.Is/As) down to the SDK error.
type BackendError struct {
	Op  string
	err error
}

func (e *BackendError) Error() string {
	return "backend: " + e.Op + ": " + e.err.Error()
}

func (e *BackendError) Unwrap() error { return e.err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, err: errors.Wrap(err, op)}
}
