// Package respond writes JSON bodies and maps service errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

const maxBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Fail writes an error body of the given kind.
func Fail(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, errorBody{Error: kind, Message: message})
}

// Error writes err with the status of its kind. Unexpected errors are logged
// and their text is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	JSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var verr *apperr.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation", Message: verr.Reason, Field: verr.Field}
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation", Message: err.Error()}
	case errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusConflict, errorBody{Error: "invalid_transition", Message: err.Error()}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, errorBody{Error: "conflict", Message: err.Error()}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not_found", Message: "not found"}
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "forbidden", Message: "not allowed"}
	case errors.Is(err, apperr.ErrReauthRequired):
		return http.StatusUnauthorized, errorBody{Error: "reauth_required", Message: "sign in again to continue"}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "unauthenticated", Message: err.Error()}
	case errors.Is(err, apperr.ErrPersistence):
		return http.StatusServiceUnavailable, errorBody{Error: "unavailable", Message: "storage unavailable, try again"}
	case errors.Is(err, apperr.ErrMalformedDocument):
		return http.StatusInternalServerError, errorBody{Error: "malformed_document", Message: "stored data is invalid"}
	}

	return http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"}
}

// Decode reads a JSON body into dst, rejecting unknown fields, and runs its
// validate tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("body", fmt.Sprintf("invalid JSON: %v", err))
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.Invalid(jsonPath(fe.Namespace()), "failed "+fe.Tag())
		}

		return apperr.Invalid("body", err.Error())
	}

	return nil
}

// jsonPath drops the root struct name from a validator namespace.
func jsonPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return strings.ToLower(rest)
	}

	return strings.ToLower(ns)
}

// ID parses the named URL parameter as a uuid.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a uuid")
	}

	return id, nil
}
