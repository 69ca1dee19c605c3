package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"exquisitos/internal/domain"
	"exquisitos/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlaceRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPlaceRepo(pool *pgxpool.Pool, logger *slog.Logger) *PlaceRepo {
	return &PlaceRepo{pool: pool, logger: logger}
}

const placeColumns = `
	id, name, category, address, latitude, longitude,
	COALESCE(cost_range, ''), COALESCE(phone, ''), COALESCE(menu, ''),
	COALESCE(opening_hours, ''), has_delivery, COALESCE(delivery_apps, ''),
	COALESCE(cover_image, ''), verified, visit_count, user_id, created_at
`

func scanPlace(row pgx.Row) (*domain.Place, error) {
	var p domain.Place
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Address,
		&p.Latitude,
		&p.Longitude,
		&p.CostRange,
		&p.Phone,
		&p.Menu,
		&p.OpeningHours,
		&p.HasDelivery,
		&p.DeliveryApps,
		&p.CoverImage,
		&p.Verified,
		&p.VisitCount,
		&p.UserID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *PlaceRepo) Create(ctx context.Context, place *domain.Place) error {
	const op = "postgres.Place.Create"

	if place == nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if place.Latitude < -90 || place.Latitude > 90 || place.Longitude < -180 || place.Longitude > 180 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	const query = `
		INSERT INTO places (
			name, category, address, latitude, longitude,
			cost_range, phone, menu, opening_hours,
			has_delivery, delivery_apps, cover_image, user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
				NULLIF($9, ''), $10, NULLIF($11, ''), NULLIF($12, ''), $13, $14)
		RETURNING id
	`

	if place.CreatedAt.IsZero() {
		place.CreatedAt = time.Now().UTC()
	}

	err := p.pool.QueryRow(ctx, query,
		place.Name,
		place.Category,
		place.Address,
		place.Latitude,
		place.Longitude,
		place.CostRange,
		place.Phone,
		place.Menu,
		place.OpeningHours,
		place.HasDelivery,
		place.DeliveryApps,
		place.CoverImage,
		place.UserID,
		place.CreatedAt,
	).Scan(&place.ID)
	if err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// ListAll returns every place, most recent first, with reviews and their like
// counts attached.
func (p *PlaceRepo) ListAll(ctx context.Context) ([]domain.Place, error) {
	const op = "postgres.Place.ListAll"

	query := `SELECT ` + placeColumns + ` FROM places ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0, 32)
	index := make(map[int64]int)
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		index[place.ID] = len(places)
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	if len(places) == 0 {
		return places, nil
	}

	reviews, err := p.listReviews(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		if i, ok := index[r.PlaceID]; ok {
			places[i].Reviews = append(places[i].Reviews, r)
		}
	}

	return places, nil
}

func (p *PlaceRepo) Get(ctx context.Context, id int64) (*domain.Place, error) {
	const op = "postgres.Place.Get"

	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}

	reviews, err := p.listReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	place.Reviews = reviews

	return place, nil
}

// listReviews loads reviews with like counts, for one place or for every
// place when placeID is 0.
func (p *PlaceRepo) listReviews(ctx context.Context, placeID int64) ([]domain.Review, error) {
	const op = "postgres.Place.listReviews"

	const query = `
		SELECT r.id, r.place_id, r.user_id,
			   r.rating_service, r.rating_time, r.rating_taste,
			   COALESCE(r.comment, ''),
			   (SELECT COUNT(*) FROM review_likes l WHERE l.review_id = r.id),
			   r.created_at
		FROM reviews r
		WHERE ($1 = 0 OR r.place_id = $1)
		ORDER BY r.created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, placeID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(
			&r.ID,
			&r.PlaceID,
			&r.UserID,
			&r.RatingService,
			&r.RatingTime,
			&r.RatingTaste,
			&r.Comment,
			&r.Likes,
			&r.CreatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return reviews, nil
}

// RegisterVisit inserts a check-in and bumps the place counter in one
// transaction. A prior check-in by the same user for the same place inside
// window fails with ErrConflict; the transaction never half-applies.
func (p *PlaceRepo) RegisterVisit(ctx context.Context, userID, placeID int64, window time.Duration) (int64, error) {
	const op = "postgres.Place.RegisterVisit"

	if userID == 0 || placeID == 0 {
		return 0, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Error("tx begin failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM visits
			WHERE user_id = $1 AND place_id = $2 AND created_at >= $3
		)
	`, userID, placeID, time.Now().UTC().Add(-window)).Scan(&exists)
	if err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	if exists {
		return 0, fmt.Errorf("%s: %w", op, e.ErrConflict)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO visits (id, user_id, place_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), userID, placeID, time.Now().UTC())
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}

	var newCount int64
	err = tx.QueryRow(ctx, `
		UPDATE places SET visit_count = visit_count + 1
		WHERE id = $1
		RETURNING visit_count
	`, placeID).Scan(&newCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("tx commit failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}

	return newCount, nil
}
