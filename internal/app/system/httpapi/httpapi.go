// internal/app/system/httpapi/httpapi.go

// Package httpapi holds the JSON request/response conventions shared by all
// feature handlers. Every error leaving the service goes through WriteError
// so the status mapping and body shape stay uniform.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to an HTTP status via its apperr kind and writes the
// JSON error body. Internal errors are logged with their cause but leave the
// service with a generic message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(err)
	msg := apperr.MessageOf(err)

	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		msg = "internal error"
	}

	WriteJSON(w, status, errorBody{Error: string(kind), Message: msg})
}

// DecodeJSON decodes the request body into dst, capped at MaxJSONBodySize.
// Unknown fields are rejected so client typos surface instead of silently
// dropping.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.FailedPrecondition, "invalid request body")
	}
	return nil
}
