package state

import "fmt"

// KeyNotFoundError indicates a key has never been set or was deleted
type KeyNotFoundError struct {
	Key string
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("state key not found: %s", e.Key)
}

// InvalidKeyError indicates an unusable key
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid state key %q: %s", e.Key, e.Reason)
}

// NotReadyError indicates the store was used before Start or after Stop
type NotReadyError struct{}

func (e NotReadyError) Error() string {
	return "state store is not started"
}
