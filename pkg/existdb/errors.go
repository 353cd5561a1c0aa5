package existdb

import (
	"errors"
	"fmt"
)

// Fault kinds returned by the Service. These are the only error categories
// that cross the service boundary; transport detail (status codes, parse
// errors) never does. The presentation layer maps each kind to an HTTP
// status and needs nothing else.
var (
	// ErrValidation indicates the caller supplied missing or empty input.
	// Raised before any network call is made.
	ErrValidation = errors.New("required input is missing or empty")

	// ErrAlreadyExists indicates a create was attempted against a document
	// that already exists.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrNotFound indicates the document does not exist for a read, update
	// or delete.
	ErrNotFound = errors.New("document not found")

	// ErrInfrastructure covers every other failure: transport errors,
	// unexpected statuses from the store, and response-parse failures.
	ErrInfrastructure = errors.New("document store error")
)

// ErrCollectionNotFound specializes ErrNotFound for listing a collection
// that does not exist. errors.Is(err, ErrNotFound) also matches it, so
// callers may handle it generically or specifically.
var ErrCollectionNotFound = fmt.Errorf("collection not found: %w", ErrNotFound)

// Error is the fault returned by Service operations. Op names the service
// operation that failed, Err is one of the sentinel fault kinds above, and
// Msg optionally carries human-readable context.
type Error struct {
	Op  string
	Err error
	Msg string
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying fault kind for errors.Is checks.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is the repository-level carrier for a non-2xx response from
// the store. It holds the raw status code uninterpreted; translating it
// into a business fault is the Service's job. It never escapes the service
// boundary.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error returns the string representation of the error.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("store returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("store returned status %d", e.StatusCode)
}

// IsStatus reports whether err wraps a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
