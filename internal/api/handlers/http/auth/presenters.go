package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"exquisitos/pkg/e"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	l.Error("handler error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	switch {
	case errors.Is(err, e.ErrEmailTaken):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
	case errors.Is(err, e.ErrGoogleOnlyAccount):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "this account uses google sign-in"})
	case errors.Is(err, e.ErrInvalidCredentials):
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case errors.Is(err, e.ErrTokenInvalid):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid or expired token"})
	case errors.Is(err, e.ErrMailDeliveryFailed):
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not send email"})
	case errors.Is(err, e.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, e.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}
