package onboarding

import (
	"errors"
	"fmt"
)

// ErrMissingRegistration signals that the resource selection step was reached
// without a pending registration. The flow must abort back to the credential
// step.
var ErrMissingRegistration = errors.New("missing registration data")

// FieldErrors maps form fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when form input is invalid. No network call has
// been made when it is returned.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// DuplicateAccountError is returned when the advisory pre-check finds an
// account already using the email. The flow should offer sign-in with the
// email prefilled instead of provisioning.
type DuplicateAccountError struct {
	Email string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("an account already exists for %s", e.Email)
}

// IdentityCreationError wraps a provider failure while creating the identity.
type IdentityCreationError struct {
	Err error
}

func (e *IdentityCreationError) Error() string {
	return fmt.Sprintf("identity creation failed: %v", e.Err)
}

func (e *IdentityCreationError) Unwrap() error { return e.Err }

// InvalidCredentialsError is the single user-facing sign-in failure. Provider
// detail is not decomposed further.
type InvalidCredentialsError struct {
	Err error
}

func (e *InvalidCredentialsError) Error() string {
	return "invalid login credentials"
}

func (e *InvalidCredentialsError) Unwrap() error { return e.Err }

// AssignmentPersistenceError wraps a failure inserting the account row or the
// resource assignments after the identity was already created. The identity is
// not rolled back.
type AssignmentPersistenceError struct {
	Step string
	Err  error
}

func (e *AssignmentPersistenceError) Error() string {
	return fmt.Sprintf("registration failed at %s: %v", e.Step, e.Err)
}

func (e *AssignmentPersistenceError) Unwrap() error { return e.Err }

// CatalogFetchError wraps a failure reading the location or tank catalogs. It
// is scoped to one section and does not block unrelated sections.
type CatalogFetchError struct {
	Section string
	Err     error
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("fetching %s failed: %v", e.Section, e.Err)
}

func (e *CatalogFetchError) Unwrap() error { return e.Err }

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
