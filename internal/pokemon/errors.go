package pokemon

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any lookup of a creature id missing from a box.
	ErrNotFound = errors.New("pokemon not found")
	// ErrFormat is returned for text that is not a list of `key: value` pairs.
	ErrFormat = errors.New("invalid formatting")
)

// NotFoundError names the box and id that failed to resolve.
type NotFoundError struct {
	Owner Owner
	ID    int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%d is not a valid ID!", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidStatError reports a stat key outside the recognised set.
type InvalidStatError struct {
	Key string
}

func (e *InvalidStatError) Error() string {
	return fmt.Sprintf("%s is not a valid stat", e.Key)
}
