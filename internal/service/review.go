package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/pkg/e"
)

type reviewService struct {
	reviews ReviewStore
	cache   PlaceCache
	logger  *slog.Logger
	cfg     config.ReviewsConfig
}

func NewReviewService(reviews ReviewStore, cache PlaceCache, logger *slog.Logger, cfg config.ReviewsConfig) ReviewService {
	return &reviewService{
		reviews: reviews,
		cache:   cache,
		logger:  logger,
		cfg:     cfg,
	}
}

func (s *reviewService) Create(ctx context.Context, userID int64, req domain.CreateReviewRequest) (int64, error) {
	for _, rating := range []int{req.RatingService, req.RatingTime, req.RatingTaste} {
		if rating < 1 || rating > 5 {
			return 0, fmt.Errorf("service.Review.Create: %w", e.ErrInvalidRating)
		}
	}

	r := &domain.Review{
		PlaceID:       req.PlaceID,
		UserID:        userID,
		RatingService: req.RatingService,
		RatingTime:    req.RatingTime,
		RatingTaste:   req.RatingTaste,
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, r, s.cfg.SinglePerPlace); err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("place cache invalidate failed", slog.Any("error", err))
	}

	s.logger.Info("review created",
		slog.Int64("id", r.ID),
		slog.Int64("place_id", r.PlaceID),
		slog.Int64("user_id", userID),
	)
	return r.ID, nil
}

func (s *reviewService) ToggleLike(ctx context.Context, userID, reviewID int64) (domain.ToggleLikeResponse, error) {
	liked, count, err := s.reviews.ToggleLike(ctx, userID, reviewID)
	if err != nil {
		return domain.ToggleLikeResponse{}, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("place cache invalidate failed", slog.Any("error", err))
	}

	return domain.ToggleLikeResponse{Liked: liked, Count: count}, nil
}
