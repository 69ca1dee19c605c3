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

type ReviewRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReviewRepo(pool *pgxpool.Pool, logger *slog.Logger) *ReviewRepo {
	return &ReviewRepo{pool: pool, logger: logger}
}

func (p *ReviewRepo) Create(ctx context.Context, r *domain.Review, singlePerPlace bool) error {
	const op = "postgres.Review.Create"

	if r == nil || r.PlaceID == 0 || r.UserID == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if !singlePerPlace {
		const query = `
			INSERT INTO reviews (place_id, user_id, rating_service, rating_time, rating_taste, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
			RETURNING id
		`
		err := p.pool.QueryRow(ctx, query,
			r.PlaceID, r.UserID, r.RatingService, r.RatingTime, r.RatingTaste, r.Comment, r.CreatedAt,
		).Scan(&r.ID)
		if err != nil {
			p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
			return e.WrapError(ctx, op, err)
		}
		return nil
	}

	// One review per (user, place): conditional insert, zero rows means the
	// user already reviewed this place.
	const guarded = `
		INSERT INTO reviews (place_id, user_id, rating_service, rating_time, rating_taste, comment, created_at)
		SELECT $1, $2, $3, $4, $5, NULLIF($6, ''), $7
		WHERE NOT EXISTS (
			SELECT 1 FROM reviews WHERE place_id = $1 AND user_id = $2
		)
		RETURNING id
	`
	err := p.pool.QueryRow(ctx, guarded,
		r.PlaceID, r.UserID, r.RatingService, r.RatingTime, r.RatingTaste, r.Comment, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, e.ErrConflict)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// ToggleLike flips a user's like on a review inside one transaction and
// returns the resulting state with the fresh like count.
func (p *ReviewRepo) ToggleLike(ctx context.Context, userID, reviewID int64) (bool, int, error) {
	const op = "postgres.Review.ToggleLike"

	if userID == 0 || reviewID == 0 {
		return false, 0, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Error("tx begin failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	var reviewExists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`, reviewID,
	).Scan(&reviewExists); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}
	if !reviewExists {
		return false, 0, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	cmd, err := tx.Exec(ctx,
		`DELETE FROM review_likes WHERE user_id = $1 AND review_id = $2`,
		userID, reviewID,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}

	liked := cmd.RowsAffected() == 0
	if liked {
		_, err = tx.Exec(ctx,
			`INSERT INTO review_likes (user_id, review_id, created_at) VALUES ($1, $2, $3)`,
			userID, reviewID, time.Now().UTC(),
		)
		if err != nil {
			p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
			return false, 0, e.WrapError(ctx, op, err)
		}
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = $1`, reviewID,
	).Scan(&count); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("tx commit failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}

	return liked, count, nil
}
