package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/internal/service"
	mock_service "exquisitos/internal/service/mocks"
	"exquisitos/pkg/e"
)

func newReviewService(t *testing.T, ctrl *gomock.Controller, cfg config.ReviewsConfig) (service.ReviewService, *mock_service.MockReviewStore, *mock_service.MockPlaceCache) {
	t.Helper()

	store := mock_service.NewMockReviewStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	return service.NewReviewService(store, cache, newTestLogger(), cfg), store, cache
}

func TestReviewCreate_RejectsOutOfRangeRatings(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newReviewService(t, ctrl, config.ReviewsConfig{})

	for _, req := range []domain.CreateReviewRequest{
		{PlaceID: 1, RatingService: 0, RatingTime: 3, RatingTaste: 3},
		{PlaceID: 1, RatingService: 3, RatingTime: 6, RatingTaste: 3},
		{PlaceID: 1, RatingService: 3, RatingTime: 3, RatingTaste: -1},
	} {
		if _, err := svc.Create(context.Background(), 7, req); !errors.Is(err, e.ErrInvalidRating) {
			t.Fatalf("expected ErrInvalidRating for %+v got %v", req, err)
		}
	}
}

func TestReviewCreate_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, store, cache := newReviewService(t, ctrl, config.ReviewsConfig{})

	store.EXPECT().
		Create(gomock.Any(), gomock.Any(), false).
		DoAndReturn(func(_ context.Context, r *domain.Review, _ bool) error {
			if r.PlaceID != 3 || r.UserID != 7 {
				t.Fatalf("unexpected review %+v", r)
			}
			r.ID = 21
			return nil
		})
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	id, err := svc.Create(context.Background(), 7, domain.CreateReviewRequest{
		PlaceID:       3,
		RatingService: 5,
		RatingTime:    4,
		RatingTaste:   5,
		Comment:       "Muy rico",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 21 {
		t.Fatalf("expected id 21 got %d", id)
	}
}

func TestReviewCreate_SinglePerPlaceFlagReachesStore(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, store, cache := newReviewService(t, ctrl, config.ReviewsConfig{SinglePerPlace: true})

	store.EXPECT().Create(gomock.Any(), gomock.Any(), true).Return(e.ErrConflict)
	_ = cache

	_, err := svc.Create(context.Background(), 7, domain.CreateReviewRequest{
		PlaceID: 3, RatingService: 5, RatingTime: 5, RatingTaste: 5,
	})
	if !errors.Is(err, e.ErrConflict) {
		t.Fatalf("expected ErrConflict got %v", err)
	}
}

func TestToggleLike_ReturnsStoreResult(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, store, cache := newReviewService(t, ctrl, config.ReviewsConfig{})

	store.EXPECT().ToggleLike(gomock.Any(), int64(7), int64(9)).Return(true, 4, nil)
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	resp, err := svc.ToggleLike(context.Background(), 7, 9)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !resp.Liked || resp.Count != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestToggleLike_UnknownReview(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, store, _ := newReviewService(t, ctrl, config.ReviewsConfig{})

	store.EXPECT().ToggleLike(gomock.Any(), int64(7), int64(404)).Return(false, 0, e.ErrNotFound)

	_, err := svc.ToggleLike(context.Background(), 7, 404)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
