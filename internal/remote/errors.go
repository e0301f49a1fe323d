package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrProductUnavailable = errors.New("product unavailable")
)

// StoreError carries the remote-supplied message verbatim so callers can
// surface it without re-interpreting. Unwrap exposes the taxonomy sentinel
// when the remote status maps onto one; everything else is transient.
type StoreError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote store error (status %d)", e.Status)
}

func (e *StoreError) Unwrap() error {
	return e.kind
}

func newStoreError(status int, code, message string) *StoreError {
	err := &StoreError{Status: status, Code: code, Message: message}
	switch status {
	case 401, 403:
		err.kind = ErrUnauthorized
	case 404:
		err.kind = ErrNotFound
	case 409:
		err.kind = ErrProductUnavailable
	}
	return err
}
