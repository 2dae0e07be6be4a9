package schemafield

import "fmt"

// InvariantViolationError indicates a field tree breaks a structural rule,
// such as a colSpan outside [1,12] or duplicate child ids.
type InvariantViolationError struct {
	Field  string
	Reason string
}

func (e InvariantViolationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema invariant violated: %s", e.Reason)
	}
	return fmt.Sprintf("schema invariant violated at %s: %s", e.Field, e.Reason)
}

// NotObjectError indicates an object-only operation was called on another kind
type NotObjectError struct {
	Kind Kind
}

func (e NotObjectError) Error() string {
	return fmt.Sprintf("operation requires an object field, got %s", e.Kind)
}

// DuplicateFieldError indicates a child id is already used by a sibling
type DuplicateFieldError struct {
	ID string
}

func (e DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field id: %s", e.ID)
}

// UnknownKindError indicates a serialized field carries an unrecognized type tag
type UnknownKindError struct {
	Kind string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("unknown field type: %q", e.Kind)
}

// ValidationError indicates a data document does not match its schema
type ValidationError struct {
	Err error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("document validation failed: %v", e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// MalformedSchemaError indicates a config file is not a readable field tree
type MalformedSchemaError struct {
	Err error
}

func (e MalformedSchemaError) Error() string {
	return fmt.Sprintf("malformed schema: %v", e.Err)
}

func (e MalformedSchemaError) Unwrap() error {
	return e.Err
}
