// Package apperr defines the error kinds shared across the tracker's
// components. Callers classify failures with errors.Is; anything that does
// not match a sentinel here is a storage failure and propagates as-is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced defect, project or user id does not
	// resolve. The API layer surfaces it as a generic 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the principal lacks the role, ownership or grant an
	// operation requires. Deliberately mapped to the same 404 as ErrNotFound
	// so unauthorized callers cannot probe for resource existence.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition means a requested status change does not match an
	// allowed workflow edge or the actor does not satisfy the edge's
	// constraint. Always wrapped with a human-readable reason.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidInput means a request value failed validation (such as a
	// malformed due date). Always wrapped with a human-readable reason; the
	// API layer surfaces it as a 400, never a storage failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSeedDataMissing means a required lookup row (such as the "New"
	// status) is absent. Fatal: the deployment is misconfigured.
	ErrSeedDataMissing = errors.New("seed data missing")

	// ErrConflict means a concurrent update changed the resource between
	// read and write. The whole operation may be retried.
	ErrConflict = errors.New("concurrent modification")
)

// InvalidTransition builds an ErrInvalidTransition carrying a reason meant
// to be shown verbatim to the acting user.
func InvalidTransition(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, reason)
}

// InvalidInput builds an ErrInvalidInput carrying a reason meant to be
// shown verbatim to the acting user.
func InvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// Reason strips the sentinel prefix from a reason-carrying error, returning
// the human-readable part. For other errors it returns the full message.
func Reason(err error) string {
	for _, sentinel := range []error{ErrInvalidTransition, ErrInvalidInput} {
		if !errors.Is(err, sentinel) {
			continue
		}
		msg := err.Error()
		prefix := sentinel.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
