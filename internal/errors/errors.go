// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrCustomerNotFound is returned by every store when no record matches the id.
type ErrCustomerNotFound struct {
	CustomerID string
}

func (e *ErrCustomerNotFound) Error() string {
	return fmt.Sprintf("customer with ID %q not found", e.CustomerID)
}

// Helper constructor
func NewCustomerNotFound(id string) error {
	return &ErrCustomerNotFound{CustomerID: id}
}

func IsNotFound(err error) bool {
	var nf *ErrCustomerNotFound
	return errors.As(err, &nf)
}

// ValidationError collects every problem found in a request body so the
// client can fix them in one round trip.
type ValidationError struct {
	Errs *multierror.Error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details(), "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Errs.ErrorOrNil()
}

// Details returns one message per problem.
func (e *ValidationError) Details() []string {
	if e.Errs == nil {
		return nil
	}
	out := make([]string, 0, len(e.Errs.Errors))
	for _, err := range e.Errs.Errors {
		out = append(out, err.Error())
	}
	return out
}

// NewValidationError returns nil when errs holds no errors.
func NewValidationError(errs *multierror.Error) error {
	if errs.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{Errs: errs}
}

// Invalid builds a single-problem ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Errs: multierror.Append(nil, fmt.Errorf(format, args...))}
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
