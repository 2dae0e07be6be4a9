package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the server
const (
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidSchema   = "INVALID_SCHEMA"
	CodeStorage         = "STORAGE_ERROR"
	CodeInvalidBody     = "INVALID_BODY"
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnknownResponse = "UNKNOWN"
)

// Error represents an SDK error
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) code() string {
	if e.Code == "" {
		return CodeUnknownResponse
	}
	return e.Code
}

// IsNotFound returns true if the file or folder does not exist
func (e *Error) IsNotFound() bool {
	return e.Code == CodeNotFound
}

// IsConflict returns true if the operation clashes with the project state,
// such as renaming onto an existing file
func (e *Error) IsConflict() bool {
	return e.Code == CodeConflict
}

// IsValidation returns true if a request or document was rejected
func (e *Error) IsValidation() bool {
	return e.Code == CodeValidation || e.Code == CodeInvalidBody || e.Code == CodeInvalidSchema
}

// errorBody mirrors the server's error response
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decodeError converts a failed response into an SDK Error
func decodeError(status int, data []byte, operation string) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return &Error{
			Status:  status,
			Message: fmt.Sprintf("%s failed: %s", operation, http.StatusText(status)),
		}
	}
	return &Error{
		Status:  status,
		Code:    body.Code,
		Message: fmt.Sprintf("%s failed: %s", operation, body.Error),
	}
}
