package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound is returned when a task id does not resolve.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotWeekly is returned when a weekly-only operation is requested on
	// a task that is not configured as weekly.
	ErrNotWeekly = errors.New("task is not a weekly task")

	// ErrInvalidArgument is returned for malformed or missing input,
	// detected before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmailTaken is returned when signing up with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials is returned for a failed login. It deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// wrapInvalid tags a validation message with ErrInvalidArgument.
func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// taskErr maps storage-level not-found onto the service error taxonomy.
func taskErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	return err
}
