package engine

import (
	"errors"
	"fmt"
)

// ErrLoad matches every LoadError via errors.Is.
var ErrLoad = errors.New("dataset load failed")

// LoadError reports a dataset that is missing, unreadable or malformed.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func loadErr(path, reason string, err error) error {
	return &LoadError{Path: path, Reason: reason, Err: err}
}
