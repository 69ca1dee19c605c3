package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"exquisitos/internal/domain"
	"exquisitos/internal/middleware"
	"exquisitos/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (domain.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	SubmitPasswordReset(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (domain.AuthUser, error)
}

type Handler struct {
	logger *slog.Logger
	Auth   AuthService
}

func NewHandler(logger *slog.Logger, auth AuthService) *Handler {
	return &Handler{
		logger: logger,
		Auth:   auth,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}

	resp, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.log(r).Info("user registered", slog.Int64("user_id", resp.User.ID))
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	resp, err := h.Auth.GoogleLogin(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// resetRequestedBody is returned for every well-formed forgot-password call,
// whether or not the account exists: the two cases must stay observably
// identical.
var resetRequestedBody = map[string]string{
	"message": "If the email exists, a reset link has been sent.",
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resetRequestedBody)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.Auth.SubmitPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully."})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.UpdateProfileRequest
	if !h.bind(w, r, &req) {
		return
	}

	updated, err := h.Auth.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.log(r).Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := validator.ValidateStruct(target); err != nil {
		h.log(r).Warn("validation failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
		return false
	}
	return true
}
