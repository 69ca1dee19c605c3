package postgres

import (
	"context"
	"time"

	"exquisitos/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LinkGoogleID(ctx context.Context, id int64, googleID string) error
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	FindByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	ClearResetTokenAndSetPassword(ctx context.Context, id int64, token, passwordHash string) error
	UpdateProfile(ctx context.Context, u *domain.User) error
}

type PlaceRepository interface {
	Create(ctx context.Context, p *domain.Place) error
	ListAll(ctx context.Context) ([]domain.Place, error)
	Get(ctx context.Context, id int64) (*domain.Place, error)
	RegisterVisit(ctx context.Context, userID, placeID int64, window time.Duration) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review, singlePerPlace bool) error
	ToggleLike(ctx context.Context, userID, reviewID int64) (bool, int, error)
}

func (p *Postgres) Users() UserRepository     { return p.UserRepo }
func (p *Postgres) Places() PlaceRepository   { return p.PlaceRepo }
func (p *Postgres) Reviews() ReviewRepository { return p.ReviewRepo }
