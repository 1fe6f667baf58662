package services

import "errors"

var (
	// ErrBadCreds is returned for any login failure; it never says which part
	// of the credential pair was wrong.
	ErrBadCreds = errors.New("invalid email or password")

	// ErrEmailTaken rejects registration with an address already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnauthenticated means no owner identity could be resolved for an
	// operation that requires one.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrEmptyCart rejects checkout with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotOwner rejects catalog writes against a product owned by someone else.
	ErrNotOwner = errors.New("not the product owner")

	// ErrNotFound covers lookups of ids that no longer exist.
	ErrNotFound = errors.New("not found")
)

// PersistenceError wraps a store/network failure, passing the underlying
// message through to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
