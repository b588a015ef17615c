package domain

import "errors"

var (
	// ErrNotFound covers both "no such record" and "record belongs to another session".
	ErrNotFound = errors.New("not found")
	// ErrUnknownUser is returned when a task names a user that does not exist.
	ErrUnknownUser = errors.New("referenced user does not exist")
	// ErrEmailTaken is returned when a user email collides with an existing one.
	ErrEmailTaken = errors.New("email already in use")
)

// NotFoundError names the missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
}

func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
