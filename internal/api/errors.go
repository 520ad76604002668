package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"prio/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
	}

	var engErr *errors.EngineError
	if stderrors.As(err, &engErr) {
		resp.Code = string(engErr.Code)
		resp.Field = engErr.Field
	} else {
		resp.Code = string(errors.InternalError)
	}

	json.NewEncoder(w).Encode(resp)
}

// WriteEngineError writes an error with automatic status code mapping
func WriteEngineError(w http.ResponseWriter, err error) {
	WriteError(w, err, MapErrorToStatus(errors.CodeOf(err)))
}

// MapErrorToStatus maps engine error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ValidationFailed:
		return http.StatusBadRequest // 400
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	case errors.PolicyNotFound:
		return http.StatusNotFound // 404
	case errors.RunNotFound:
		return http.StatusNotFound // 404
	case errors.StoreUnavailable:
		return http.StatusServiceUnavailable // 503
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.ValidationFailed, message, nil), http.StatusBadRequest)
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.RunNotFound, message, nil), http.StatusNotFound)
}

// MethodNotAllowed writes a 405 Method Not Allowed error
func MethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, errors.New(errors.ValidationFailed, "method not allowed", nil), http.StatusMethodNotAllowed)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.InternalError, message, nil), http.StatusInternalServerError)
}
