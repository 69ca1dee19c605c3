package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"context"
	"log/slog"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/pkg/e"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 32 // hex-encoded to 64 characters

type authService struct {
	users  UserStore
	mail   MailQueue
	google IDTokenVerifier
	logger *slog.Logger
	cfg    config.AuthConfig
	now    func() time.Time
}

func NewAuthService(
	users UserStore,
	mail MailQueue,
	google IDTokenVerifier,
	logger *slog.Logger,
	cfg config.AuthConfig,
) AuthService {
	if cfg.BcryptCost < bcrypt.MinCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		mail:   mail,
		google: google,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return domain.AuthResponse{}, e.ErrEmailTaken
	}
	if !errors.Is(err, e.ErrNotFound) {
		return domain.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return domain.AuthResponse{}, e.Wrap("service.Auth.Register.hash", err)
	}

	u := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, e.ErrUniqueViolation) {
			return domain.AuthResponse{}, e.ErrEmailTaken
		}
		return domain.AuthResponse{}, err
	}

	s.logger.Info("user registered", slog.Int64("user_id", u.ID))
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return domain.AuthResponse{}, e.ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}

	// Google-only accounts have no local credential.
	if u.PasswordHash == "" {
		return domain.AuthResponse{}, e.ErrGoogleOnlyAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, e.ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *authService) GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (domain.AuthResponse, error) {
	ident, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		s.logger.Warn("google id token rejected", slog.Any("error", err))
		return domain.AuthResponse{}, e.ErrInvalidCredentials
	}
	if ident.Email == "" {
		return domain.AuthResponse{}, fmt.Errorf("service.Auth.GoogleLogin: %w", e.ErrInvalidInput)
	}

	u, err := s.users.FindByEmail(ctx, ident.Email)
	switch {
	case errors.Is(err, e.ErrNotFound):
		u = &domain.User{
			Email:     ident.Email,
			Name:      ident.Name,
			GoogleID:  ident.Subject,
			CreatedAt: s.now().UTC(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return domain.AuthResponse{}, err
		}
		s.logger.Info("google user created", slog.Int64("user_id", u.ID))
	case err != nil:
		return domain.AuthResponse{}, err
	case u.GoogleID == "":
		if err := s.users.LinkGoogleID(ctx, u.ID, ident.Subject); err != nil {
			return domain.AuthResponse{}, err
		}
	}

	return s.session(u)
}

// RequestPasswordReset issues a fresh single-use token for the account behind
// email and queues the notification. An unknown email is a silent no-op: the
// caller-visible outcome must be identical to the success case so the
// endpoint cannot be used to enumerate accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			s.logger.Debug("reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return e.Wrap("service.Auth.RequestPasswordReset.token", err)
	}
	expiry := s.now().UTC().Add(s.cfg.ResetTokenTTL)

	// Overwrites any previous token: at most one valid token per user.
	if err := s.users.SetResetToken(ctx, u.ID, token, expiry); err != nil {
		return err
	}

	mail := domain.ResetMail{
		ID:       uuid.New(),
		Email:    u.Email,
		Token:    token,
		QueuedAt: s.now().UTC(),
	}
	if err := s.mail.Enqueue(ctx, mail); err != nil {
		s.logger.Error("reset mail enqueue failed", slog.Any("error", err))
		return fmt.Errorf("service.Auth.RequestPasswordReset: %w", e.ErrMailDeliveryFailed)
	}

	s.logger.Info("reset token issued", slog.Int64("user_id", u.ID), slog.Time("expiry", expiry))
	return nil
}

// SubmitPasswordReset consumes a token exactly once. Wrong, expired and
// already-used tokens all fail with e.ErrTokenInvalid; the causes are
// deliberately indistinguishable.
func (s *authService) SubmitPasswordReset(ctx context.Context, token, newPassword string) error {
	now := s.now().UTC()

	u, err := s.users.FindByValidResetToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.ErrTokenInvalid
		}
		return err
	}

	// Validity is strictly future-only: a token expiring exactly now is dead.
	if u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
		return e.ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return e.Wrap("service.Auth.SubmitPasswordReset.hash", err)
	}

	// CAS on the stored token: if a newer request superseded this token
	// between lookup and update, zero rows match and the reset is rejected
	// instead of applying a password under the wrong token.
	if err := s.users.ClearResetTokenAndSetPassword(ctx, u.ID, token, string(hash)); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.ErrTokenInvalid
		}
		return err
	}

	s.logger.Info("password reset completed", slog.Int64("user_id", u.ID))
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (domain.AuthUser, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.AuthUser{}, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.City != "" {
		u.City = req.City
	}
	if req.Country != "" {
		u.Country = req.Country
	}
	if req.FoodInterests != "" {
		u.FoodInterests = req.FoodInterests
	}
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return domain.AuthUser{}, fmt.Errorf("service.Auth.UpdateProfile: %w", e.ErrInvalidInput)
		}
		u.BirthDate = &bd
	}

	// The store only replaces password_hash when one is sent; an empty hash
	// keeps the current credential.
	u.PasswordHash = ""
	if req.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
		if err != nil {
			return domain.AuthUser{}, e.Wrap("service.Auth.UpdateProfile.hash", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return domain.AuthUser{}, err
	}

	s.logger.Info("profile updated", slog.Int64("user_id", userID))
	return domain.AuthUser{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

func (s *authService) session(u *domain.User) (domain.AuthResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.SessionTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return domain.AuthResponse{}, e.Wrap("service.Auth.session", err)
	}

	return domain.AuthResponse{
		Token: signed,
		User:  domain.AuthUser{ID: u.ID, Email: u.Email, Name: u.Name},
	}, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
