package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/listing"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError converts service errors to HTTP status codes.
func handleDomainError(w http.ResponseWriter, err error) {
	var verr *listing.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Fields))
		for f, msg := range verr.Fields {
			fields[string(f)] = msg
		}
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "listing is incomplete",
			Code:   "validation_failed",
			Fields: fields,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, listing.ErrDraftPublished):
		httpStatus = http.StatusConflict
		code = "draft_published"
	case errors.Is(err, domain.ErrValidationFailed):
		httpStatus = http.StatusBadRequest
		code = "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, domain.ErrAlreadyInCart):
		httpStatus = http.StatusConflict
		code = "already_in_cart"
	case errors.Is(err, domain.ErrEmailTaken):
		httpStatus = http.StatusConflict
		code = "email_taken"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus = http.StatusConflict
		code = "empty_cart"
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpStatus = http.StatusUnauthorized
		code = "invalid_credentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	case errors.Is(err, domain.ErrOperationFailed):
		httpStatus = http.StatusServiceUnavailable
		code = "operation_failed"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	if httpStatus >= http.StatusInternalServerError {
		slog.Error("request failed", "code", code, "error", err)
		respondError(w, httpStatus, code, http.StatusText(httpStatus))
		return
	}
	respondError(w, httpStatus, code, err.Error())
}

// decodeRequest reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return false
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request",
			Code:    "invalid_request",
			Details: describe(verrs),
		})
		return false
	}
	return true
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// decimalParam parses an optional decimal query parameter.
func decimalParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &d, nil
}
