package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// errorResponse is the JSON error body returned by every failing endpoint.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// notFound writes a 404 body. The caller supplies the message (e.g.
// "event not found") because the handler is the layer that knows what was
// being looked up.
func notFound(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{Code: "not_found", Message: message}})
}

// validationFailed writes a 422 body with the message extracted from the
// wrapped domain.ErrValidation error.
func validationFailed(w http.ResponseWriter, err error) {
	badRequest(w, unwrapMessage(err, "validation error: "))
}

// badRequest writes a 422 body for input rejected before reaching the
// service layer (e.g. missing or malformed request body).
func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorDetail{Code: "validation_error", Message: message}})
}

// storageConflict writes a 409 body for a constraint violation.
func storageConflict(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusConflict, errorResponse{Error: errorDetail{Code: "storage_error", Message: unwrapMessage(err, "storage error: ")}})
}

// internalError logs the cause and writes a generic 500 body.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{Code: "internal_error", Message: "internal server error"}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.EventService.Create: validation error: title is
// required" → "title is required". Falls back to the sentinel text when
// nothing follows the marker.
func unwrapMessage(err error, marker string) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, marker); i >= 0 {
		if rest := msg[i+len(marker):]; rest != "" {
			return rest
		}
	}
	return strings.TrimSuffix(marker, ": ")
}
