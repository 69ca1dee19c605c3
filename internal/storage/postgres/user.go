package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"exquisitos/internal/domain"
	"exquisitos/pkg/e"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepo(pool *pgxpool.Pool, logger *slog.Logger) *UserRepo {
	return &UserRepo{pool: pool, logger: logger}
}

const userColumns = `
	id, email, COALESCE(name, ''), COALESCE(password_hash, ''), COALESCE(google_id, ''),
	COALESCE(profile_image, ''), COALESCE(phone, ''), COALESCE(city, ''), COALESCE(country, ''),
	birth_date, COALESCE(food_interests, ''), COALESCE(reset_token, ''), reset_token_expiry, created_at
`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.GoogleID,
		&u.ProfileImage,
		&u.Phone,
		&u.City,
		&u.Country,
		&u.BirthDate,
		&u.FoodInterests,
		&u.ResetToken,
		&u.ResetTokenExpiry,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.User.Create"

	if u == nil || u.Email == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		INSERT INTO users (email, name, password_hash, google_id, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING id
	`

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	err := p.pool.QueryRow(ctx, query,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.GoogleID,
		u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.User.FindByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(p.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return u, nil
}

func (p *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgres.User.FindByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}

	return u, nil
}

func (p *UserRepo) LinkGoogleID(ctx context.Context, id int64, googleID string) error {
	const op = "postgres.User.LinkGoogleID"

	const query = `UPDATE users SET google_id = $2 WHERE id = $1`

	cmd, err := p.pool.Exec(ctx, query, id, googleID)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

// SetResetToken overwrites whatever token the user had: at most one valid
// reset token per user at any time.
func (p *UserRepo) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const op = "postgres.User.SetResetToken"

	if token == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		UPDATE users
		SET reset_token = $2, reset_token_expiry = $3
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query, id, token, expiry)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

// FindByValidResetToken matches only a strictly-in-the-future expiry; a token
// expiring exactly at now is already dead.
func (p *UserRepo) FindByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	const op = "postgres.User.FindByValidResetToken"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1 AND reset_token_expiry > $2`

	u, err := scanUser(p.pool.QueryRow(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return u, nil
}

// ClearResetTokenAndSetPassword replaces the credential and consumes the
// token in one UPDATE guarded by the token value itself. A concurrent
// overwrite or an earlier consumption leaves zero rows matching, which
// surfaces as ErrNotFound instead of silently resetting under a stale token.
func (p *UserRepo) ClearResetTokenAndSetPassword(ctx context.Context, id int64, token, passwordHash string) error {
	const op = "postgres.User.ClearResetTokenAndSetPassword"

	if token == "" || passwordHash == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		UPDATE users
		SET password_hash = $3, reset_token = NULL, reset_token_expiry = NULL
		WHERE id = $1 AND reset_token = $2
	`

	cmd, err := p.pool.Exec(ctx, query, id, token, passwordHash)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (p *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	const op = "postgres.User.UpdateProfile"

	if u == nil || u.ID == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		UPDATE users
		SET name = NULLIF($2, ''),
			phone = NULLIF($3, ''),
			city = NULLIF($4, ''),
			country = NULLIF($5, ''),
			birth_date = $6,
			food_interests = NULLIF($7, ''),
			profile_image = NULLIF($8, ''),
			password_hash = COALESCE(NULLIF($9, ''), password_hash)
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Phone,
		u.City,
		u.Country,
		u.BirthDate,
		u.FoodInterests,
		u.ProfileImage,
		u.PasswordHash,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", u.ID))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}
