package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// base carries the response helpers shared by all handlers.
type base struct {
	logger *logger.Logger
}

func (b *base) startRequest(r *http.Request) *logger.RequestContext {
	reqCtx := &logger.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		StartTime:  time.Now(),
	}
	b.logger.LogRequest(reqCtx)
	return reqCtx
}

func (b *base) finishRequest(reqCtx *logger.RequestContext, statusCode int) {
	reqCtx.StatusCode = statusCode
	b.logger.LogResponse(reqCtx)
}

func (b *base) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			b.logger.Error("Failed to encode JSON response", "error", err)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

func (b *base) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode error response", "error", err)
	}
}

// writeError maps a service error to an HTTP status via its type and
// writes the JSON error body. It returns the status for request
// logging.
func (b *base) writeError(w http.ResponseWriter, err error) int {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		b.writeErrorResponse(w, status, "internal server error")
	} else {
		b.writeErrorResponse(w, status, err.Error())
	}
	return status
}

func (b *base) parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// statusForError maps business errors to HTTP statuses by type so the
// mapping survives message rewording.
func statusForError(err error) int {
	var (
		validationErr  *models.ValidationError
		stockErr       *models.InsufficientStockError
		unavailableErr *models.ProductUnavailableError
		transitionErr  *models.IllegalTransitionError
		conflictErr    *models.ConflictError
	)

	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.As(err, &unavailableErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transitionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// callerFromRequest reads the identity headers set by the auth
// gateway. Authentication itself happens upstream; these headers are
// trusted as-is.
func callerFromRequest(r *http.Request) models.Caller {
	return models.Caller{
		UserID:    r.Header.Get("X-User-ID"),
		Role:      models.Role(r.Header.Get("X-User-Role")),
		CompanyID: r.Header.Get("X-Company-ID"),
	}
}

func requireUser(w http.ResponseWriter, r *http.Request, b *base) (models.Caller, bool) {
	caller := callerFromRequest(r)
	if caller.UserID == "" {
		b.writeErrorResponse(w, http.StatusUnauthorized, "missing user identity")
		return caller, false
	}
	return caller, true
}
