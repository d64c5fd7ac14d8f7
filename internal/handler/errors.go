package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agenthub/internal/apperrors"
	"agenthub/internal/middleware"
	"agenthub/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeSuccess(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to its status. Storage faults are logged and never leak their cause.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
	}

	code, msg := apperrors.Public(err)
	writeSuccess(w, ErrorResponse{Error: msg, Code: code}, status)
}

// decode reads a JSON body into req and runs struct validation on it.
func (h *Handlers) decode(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperrors.InvalidInput("Invalid request body", err)
	}
	if err := h.Validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperrors.InvalidInput(fieldMessage(fieldErrs[0]), err)
		}
		return apperrors.InvalidInput("Invalid request", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "url":
		return fe.Field() + " must be a valid URL"
	}
	return "Invalid value for " + fe.Field()
}

// caller returns the principal stored by the auth middleware.
func (h *Handlers) caller(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := models.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.ErrMissingToken)
	}
	return p, ok
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("Invalid "+name, err)
	}
	return id, nil
}

// queryInt returns 0 for an absent parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("Invalid "+key, err)
	}
	return v, nil
}

func pagination(r *http.Request) (skip, limit int, err error) {
	if skip, err = queryInt(r, "skip"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"name": appName, "version": appVersion}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.HealthCheck(r.Context()); err != nil {
			h.Log.Warn("health check failed", zap.Error(err))
			writeSuccess(w, map[string]string{"status": "unhealthy", "database": "unreachable"}, http.StatusServiceUnavailable)
			return
		}
	}
	writeSuccess(w, map[string]string{"status": "healthy", "database": "connected"}, http.StatusOK)
}
