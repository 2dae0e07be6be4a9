package explorer

import "fmt"

// StorageError indicates the storage gateway rejected a step of an operation.
// Compensated reports whether the already completed data-file step was
// undone; in-memory state is unchanged either way.
type StorageError struct {
	Op          string
	Path        string
	Err         error
	Compensated bool
}

func (e StorageError) Error() string {
	msg := fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Path, e.Err)
	if e.Compensated {
		msg += " (data file restored)"
	}
	return msg
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a path does not resolve in the tree or session
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// InvariantViolationError indicates a request would break the tree's
// structure, such as renaming onto an existing path.
type InvariantViolationError struct {
	Path   string
	Reason string
}

func (e InvariantViolationError) Error() string {
	return fmt.Sprintf("invalid operation on %s: %s", e.Path, e.Reason)
}
