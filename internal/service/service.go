package service

import (
	"context"
	"time"

	"exquisitos/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (domain.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	SubmitPasswordReset(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (domain.AuthUser, error)
}

type PlaceService interface {
	Create(ctx context.Context, userID int64, req domain.CreatePlaceRequest) (int64, error)
	List(ctx context.Context, req domain.ListPlacesRequest) (domain.ListPlacesResponse, error)
	Get(ctx context.Context, id int64) (*domain.RankedPlace, error)
	RegisterVisit(ctx context.Context, userID, placeID int64) (domain.RegisterVisitResponse, error)
}

type ReviewService interface {
	Create(ctx context.Context, userID int64, req domain.CreateReviewRequest) (int64, error)
	ToggleLike(ctx context.Context, userID, reviewID int64) (domain.ToggleLikeResponse, error)
}

// UserStore is the external user-record collaborator. Token validation and
// clearing must be serialized per user record by the store itself; see
// ClearResetTokenAndSetPassword.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LinkGoogleID(ctx context.Context, id int64, googleID string) error
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	// FindByValidResetToken matches only tokens whose expiry is strictly in
	// the future relative to now.
	FindByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	// ClearResetTokenAndSetPassword applies the password update and the token
	// clear as one compare-and-swap on the stored token: it returns
	// e.ErrNotFound when the token is no longer the current one.
	ClearResetTokenAndSetPassword(ctx context.Context, id int64, token, passwordHash string) error
	UpdateProfile(ctx context.Context, u *domain.User) error
}

type PlaceStore interface {
	Create(ctx context.Context, p *domain.Place) error
	ListAll(ctx context.Context) ([]domain.Place, error)
	Get(ctx context.Context, id int64) (*domain.Place, error)
	// RegisterVisit records a check-in and bumps the place counter in one
	// transaction; a second check-in inside window fails with e.ErrConflict.
	RegisterVisit(ctx context.Context, userID, placeID int64, window time.Duration) (int64, error)
}

type ReviewStore interface {
	Create(ctx context.Context, r *domain.Review, singlePerPlace bool) error
	ToggleLike(ctx context.Context, userID, reviewID int64) (liked bool, count int, err error)
}

type PlaceCache interface {
	Get(ctx context.Context) ([]domain.Place, error)
	Set(ctx context.Context, places []domain.Place, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type MailQueue interface {
	Enqueue(ctx context.Context, mail domain.ResetMail) error
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.GoogleIdentity, error)
}

type Service struct {
	AuthService   AuthService
	PlaceService  PlaceService
	ReviewService ReviewService
}

func NewService(
	authService AuthService,
	placeService PlaceService,
	reviewService ReviewService,
) *Service {
	return &Service{
		AuthService:   authService,
		PlaceService:  placeService,
		ReviewService: reviewService,
	}
}
