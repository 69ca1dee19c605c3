package service_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/internal/service"
	mock_service "exquisitos/internal/service/mocks"
	"exquisitos/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func authTestConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
		ResetTokenTTL: time.Hour,
	}
}

func newAuthService(t *testing.T, ctrl *gomock.Controller) (service.AuthService, *mock_service.MockUserStore, *mock_service.MockMailQueue, *mock_service.MockIDTokenVerifier) {
	t.Helper()

	users := mock_service.NewMockUserStore(ctrl)
	mail := mock_service.NewMockMailQueue(ctrl)
	google := mock_service.NewMockIDTokenVerifier(ctrl)

	svc := service.NewAuthService(users, mail, google, newTestLogger(), authTestConfig())
	return svc, users, mail, google
}

// --- Register / Login ---

func TestRegister_EmailTaken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "taken@mail.com").
		Return(&domain.User{ID: 1, Email: "taken@mail.com"}, nil)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "taken@mail.com",
		Name:     "Ana",
		Password: "secret123",
	})
	if !errors.Is(err, e.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken got %v", err)
	}
}

func TestRegister_OK_HashesPasswordAndIssuesToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(nil, e.ErrNotFound)

	var storedHash string
	users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			u.ID = 7
			storedHash = u.PasswordHash
			return nil
		})

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "ana@mail.com",
		Name:     "Ana",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if storedHash == "" || storedHash == "secret123" {
		t.Fatalf("expected bcrypt hash stored, got %q", storedHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if resp.User.ID != 7 || resp.User.Email != "ana@mail.com" {
		t.Fatalf("unexpected auth user %+v", resp.User)
	}

	tok, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("expected valid session token, err=%v", err)
	}
}

func TestRegister_UniqueViolationMapsToEmailTaken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().FindByEmail(gomock.Any(), "race@mail.com").Return(nil, e.ErrNotFound)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(e.ErrUniqueViolation)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "race@mail.com",
		Name:     "Ana",
		Password: "secret123",
	})
	if !errors.Is(err, e.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().FindByEmail(gomock.Any(), "nobody@mail.com").Return(nil, e.ErrNotFound)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@mail.com", Password: "x"})
	if !errors.Is(err, e.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
}

func TestLogin_GoogleOnlyAccount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "g@mail.com").
		Return(&domain.User{ID: 1, Email: "g@mail.com", GoogleID: "sub-1"}, nil)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "g@mail.com", Password: "x"})
	if !errors.Is(err, e.ErrGoogleOnlyAccount) {
		t.Fatalf("expected ErrGoogleOnlyAccount got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(&domain.User{ID: 1, Email: "ana@mail.com", PasswordHash: string(hash)}, nil)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ana@mail.com", Password: "wrong"})
	if !errors.Is(err, e.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
}

// --- Google sign-in ---

func TestGoogleLogin_RejectedToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, google := newAuthService(t, ctrl)

	google.EXPECT().Verify(gomock.Any(), "bad-token").Return(nil, errors.New("invalid signature"))

	_, err := svc.GoogleLogin(context.Background(), domain.GoogleLoginRequest{IDToken: "bad-token"})
	if !errors.Is(err, e.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
}

func TestGoogleLogin_CreatesNewUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, google := newAuthService(t, ctrl)

	google.EXPECT().
		Verify(gomock.Any(), "tok").
		Return(&domain.GoogleIdentity{Subject: "sub-9", Email: "new@mail.com", Name: "Nuevo"}, nil)
	users.EXPECT().FindByEmail(gomock.Any(), "new@mail.com").Return(nil, e.ErrNotFound)
	users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			if u.GoogleID != "sub-9" || u.PasswordHash != "" {
				t.Fatalf("expected google-only user, got %+v", u)
			}
			u.ID = 9
			return nil
		})

	resp, err := svc.GoogleLogin(context.Background(), domain.GoogleLoginRequest{IDToken: "tok"})
	if err != nil {
		t.Fatalf("GoogleLogin: %v", err)
	}
	if resp.User.ID != 9 {
		t.Fatalf("expected user 9 got %+v", resp.User)
	}
}

func TestGoogleLogin_LinksExistingAccount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, google := newAuthService(t, ctrl)

	google.EXPECT().
		Verify(gomock.Any(), "tok").
		Return(&domain.GoogleIdentity{Subject: "sub-3", Email: "ana@mail.com", Name: "Ana"}, nil)
	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(&domain.User{ID: 3, Email: "ana@mail.com", PasswordHash: "hash"}, nil)
	users.EXPECT().LinkGoogleID(gomock.Any(), int64(3), "sub-3").Return(nil)

	if _, err := svc.GoogleLogin(context.Background(), domain.GoogleLoginRequest{IDToken: "tok"}); err != nil {
		t.Fatalf("GoogleLogin: %v", err)
	}
}

// --- Profile update ---

func TestUpdateProfile_HashesNewPassword(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByID(gomock.Any(), int64(4)).
		Return(&domain.User{ID: 4, Email: "ana@mail.com", Name: "Ana", PasswordHash: "old-hash"}, nil)
	users.EXPECT().
		UpdateProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			if u.Name != "Ana Sofía" {
				t.Fatalf("expected name updated, got %q", u.Name)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("fresh-secret")); err != nil {
				t.Fatalf("expected new password hashed: %v", err)
			}
			return nil
		})

	got, err := svc.UpdateProfile(context.Background(), 4, domain.UpdateProfileRequest{
		Name:        "Ana Sofía",
		NewPassword: "fresh-secret",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Ana Sofía" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestUpdateProfile_NoPasswordKeepsCredential(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByID(gomock.Any(), int64(4)).
		Return(&domain.User{ID: 4, Email: "ana@mail.com", PasswordHash: "old-hash"}, nil)
	users.EXPECT().
		UpdateProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			// Empty hash tells the store to leave password_hash alone.
			if u.PasswordHash != "" {
				t.Fatalf("expected empty hash, got %q", u.PasswordHash)
			}
			return nil
		})

	if _, err := svc.UpdateProfile(context.Background(), 4, domain.UpdateProfileRequest{City: "CDMX"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
}

func TestUpdateProfile_BadBirthDate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByID(gomock.Any(), int64(4)).
		Return(&domain.User{ID: 4, Email: "ana@mail.com"}, nil)

	_, err := svc.UpdateProfile(context.Background(), 4, domain.UpdateProfileRequest{BirthDate: "31/12/1990"})
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

// --- Password reset request ---

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	// No SetResetToken, no Enqueue: the unknown-email path must not touch
	// anything observable.
	users.EXPECT().FindByEmail(gomock.Any(), "ghost@mail.com").Return(nil, e.ErrNotFound)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@mail.com"); err != nil {
		t.Fatalf("expected silent success got %v", err)
	}
}

func TestRequestPasswordReset_IssuesHexTokenWithTTL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, mail, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(&domain.User{ID: 4, Email: "ana@mail.com"}, nil)

	var issued string
	var expiry time.Time
	before := time.Now().UTC()

	users.EXPECT().
		SetResetToken(gomock.Any(), int64(4), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, token string, exp time.Time) error {
			issued = token
			expiry = exp
			return nil
		})
	mail.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m domain.ResetMail) error {
			if m.Email != "ana@mail.com" || m.Token != issued {
				t.Fatalf("mail does not carry the issued token: %+v", m)
			}
			return nil
		})

	if err := svc.RequestPasswordReset(context.Background(), "ana@mail.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	if len(issued) != 64 {
		t.Fatalf("expected 64 hex chars got %d", len(issued))
	}
	if _, err := hex.DecodeString(issued); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}

	after := time.Now().UTC()
	if expiry.Before(before.Add(time.Hour)) || expiry.After(after.Add(time.Hour)) {
		t.Fatalf("expiry not one hour out: %v", expiry)
	}
}

func TestRequestPasswordReset_FreshTokenEachRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, mail, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(&domain.User{ID: 4, Email: "ana@mail.com"}, nil).
		Times(2)

	var tokens []string
	users.EXPECT().
		SetResetToken(gomock.Any(), int64(4), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, token string, _ time.Time) error {
			tokens = append(tokens, token)
			return nil
		}).
		Times(2)
	mail.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	for i := 0; i < 2; i++ {
		if err := svc.RequestPasswordReset(context.Background(), "ana@mail.com"); err != nil {
			t.Fatalf("RequestPasswordReset #%d: %v", i, err)
		}
	}

	if tokens[0] == tokens[1] {
		t.Fatalf("expected a fresh token per request")
	}
}

func TestRequestPasswordReset_EnqueueFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, mail, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByEmail(gomock.Any(), "ana@mail.com").
		Return(&domain.User{ID: 4, Email: "ana@mail.com"}, nil)
	users.EXPECT().SetResetToken(gomock.Any(), int64(4), gomock.Any(), gomock.Any()).Return(nil)
	mail.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	err := svc.RequestPasswordReset(context.Background(), "ana@mail.com")
	if !errors.Is(err, e.ErrMailDeliveryFailed) {
		t.Fatalf("expected ErrMailDeliveryFailed got %v", err)
	}
}

// --- Password reset submission ---

func TestSubmitPasswordReset_UnknownToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	users.EXPECT().
		FindByValidResetToken(gomock.Any(), "deadbeef", gomock.Any()).
		Return(nil, e.ErrNotFound)

	err := svc.SubmitPasswordReset(context.Background(), "deadbeef", "newpass123")
	if !errors.Is(err, e.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestSubmitPasswordReset_ExpiryExactlyNowIsDead(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	// The store hands back a user whose expiry is already behind the
	// service's clock by the time it rechecks.
	users.EXPECT().
		FindByValidResetToken(gomock.Any(), "tok", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, now time.Time) (*domain.User, error) {
			exp := now
			return &domain.User{ID: 4, ResetToken: "tok", ResetTokenExpiry: &exp}, nil
		})

	err := svc.SubmitPasswordReset(context.Background(), "tok", "newpass123")
	if !errors.Is(err, e.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid at the exact boundary got %v", err)
	}
}

func TestSubmitPasswordReset_SupersededTokenRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	exp := time.Now().UTC().Add(time.Hour)
	users.EXPECT().
		FindByValidResetToken(gomock.Any(), "old-token", gomock.Any()).
		Return(&domain.User{ID: 4, ResetToken: "old-token", ResetTokenExpiry: &exp}, nil)
	// The compare-and-swap misses because a newer request replaced the token.
	users.EXPECT().
		ClearResetTokenAndSetPassword(gomock.Any(), int64(4), "old-token", gomock.Any()).
		Return(e.ErrNotFound)

	err := svc.SubmitPasswordReset(context.Background(), "old-token", "newpass123")
	if !errors.Is(err, e.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestSubmitPasswordReset_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _, _ := newAuthService(t, ctrl)

	exp := time.Now().UTC().Add(time.Hour)
	users.EXPECT().
		FindByValidResetToken(gomock.Any(), "tok", gomock.Any()).
		Return(&domain.User{ID: 4, ResetToken: "tok", ResetTokenExpiry: &exp}, nil)
	users.EXPECT().
		ClearResetTokenAndSetPassword(gomock.Any(), int64(4), "tok", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ string, hash string) error {
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass123")); err != nil {
				t.Fatalf("stored hash does not match new password: %v", err)
			}
			return nil
		})

	if err := svc.SubmitPasswordReset(context.Background(), "tok", "newpass123"); err != nil {
		t.Fatalf("SubmitPasswordReset: %v", err)
	}
}
