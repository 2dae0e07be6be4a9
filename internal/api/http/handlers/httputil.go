package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/schemadesk/engine/internal/api/validation"
	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/schemafield"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON marshals v as JSON and writes it with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// StatusFor maps an engine or validation error to an HTTP status and code
func StatusFor(err error) (int, string) {
	var (
		notFound   explorer.NotFoundError
		invariant  explorer.InvariantViolationError
		storage    explorer.StorageError
		reqInvalid validation.ValidationError
		docInvalid schemafield.ValidationError
		unknown    schemafield.UnknownKindError
		schemaBad  schemafield.InvariantViolationError
		malformed  schemafield.MalformedSchemaError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &invariant):
		return http.StatusConflict, "CONFLICT"
	case errors.As(err, &reqInvalid):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &docInvalid), errors.As(err, &unknown), errors.As(err, &schemaBad), errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, "INVALID_SCHEMA"
	case errors.As(err, &storage):
		return http.StatusInternalServerError, "STORAGE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeEngineError maps err onto a response. Server-side failures are logged.
func writeEngineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Msg("Request failed")
	}
	writeError(w, status, code, err.Error())
}
