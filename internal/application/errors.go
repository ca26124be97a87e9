package application

import (
	"errors"

	"github.com/bnema/farmhand/internal/domain"
)

var (
	ErrFatal                = errors.New("fatal")
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
	ErrNoEndpoints          = errors.New("no endpoints available")
	ErrWorkerPanic          = errors.New("worker panicked")
)

// FatalError marks an error that stops a worker for good.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return ErrFatal.Error()
	}
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() []error {
	return []error{ErrFatal, e.Err}
}

func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err ends a worker. Login payload and login
// rejection failures count as fatal even when the adapter did not wrap them.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal) ||
		errors.Is(err, domain.ErrLoginPayloadUnavailable) ||
		errors.Is(err, domain.ErrLoginRejected)
}

// causeChain flattens the wrapped messages of err, outermost first.
func causeChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		switch wrapped := err.(type) {
		case interface{ Unwrap() error }:
			err = wrapped.Unwrap()
		case interface{ Unwrap() []error }:
			errs := wrapped.Unwrap()
			err = nil
			for i := len(errs) - 1; i >= 0; i-- {
				if errs[i] != nil && errs[i] != ErrFatal {
					err = errs[i]
					break
				}
			}
		default:
			err = nil
		}
	}
	return chain
}
