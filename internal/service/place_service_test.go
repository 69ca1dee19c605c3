package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/internal/service"
	mock_service "exquisitos/internal/service/mocks"
	"exquisitos/pkg/e"
)

func placesTestConfig() config.PlacesConfig {
	return config.PlacesConfig{CacheTTL: 30 * time.Second, VisitWindow: 24 * time.Hour}
}

func TestPlaceList_CacheMissLoadsStoreAndFillsSummaries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	stored := []domain.Place{
		{
			ID: 1, Name: "Tacos El Güero", Category: "tacos", CostRange: domain.CostLow,
			Reviews: []domain.Review{
				{RatingService: 5, RatingTime: 5, RatingTaste: 5},
			},
		},
		{ID: 2, Name: "La Docena", Category: "mariscos", CostRange: domain.CostHigh},
	}

	cache.EXPECT().Get(gomock.Any()).Return(nil, nil)
	store.EXPECT().ListAll(gomock.Any()).Return(stored, nil)
	cache.EXPECT().Set(gomock.Any(), stored, 30*time.Second).Return(nil)

	resp, err := svc.List(context.Background(), domain.ListPlacesRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if resp.Total != 2 || len(resp.Places) != 2 {
		t.Fatalf("expected 2 places got %+v", resp)
	}
	if resp.Places[0].Summary.Count != 1 || resp.Places[0].Summary.Overall != 5 {
		t.Fatalf("expected summary filled, got %+v", resp.Places[0].Summary)
	}
	if resp.Places[1].Summary.Count != 0 || resp.Places[1].Summary.Overall != 0 {
		t.Fatalf("expected all-zero summary for review-less place, got %+v", resp.Places[1].Summary)
	}
}

func TestPlaceList_CacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	cached := []domain.Place{{ID: 5, Name: "Cached", Category: "cafe"}}
	cache.EXPECT().Get(gomock.Any()).Return(cached, nil)

	resp, err := svc.List(context.Background(), domain.ListPlacesRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 1 || resp.Places[0].ID != 5 {
		t.Fatalf("expected cached place, got %+v", resp)
	}
}

func TestPlaceList_CacheErrorFallsThroughToStore(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	cache.EXPECT().Get(gomock.Any()).Return(nil, errors.New("redis down"))
	store.EXPECT().ListAll(gomock.Any()).Return([]domain.Place{{ID: 1}}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	resp, err := svc.List(context.Background(), domain.ListPlacesRequest{})
	if err != nil {
		t.Fatalf("expected cache failure to be non-fatal, got %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected 1 place got %+v", resp)
	}
}

func TestPlaceCreate_InvalidatesCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Place) error {
			if p.UserID != 7 || p.Name != "Tacos El Güero" {
				t.Fatalf("unexpected place %+v", p)
			}
			p.ID = 11
			return nil
		})
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	id, err := svc.Create(context.Background(), 7, domain.CreatePlaceRequest{
		Name:      "Tacos El Güero",
		Category:  "tacos",
		Address:   "Calle 1",
		Latitude:  19.43,
		Longitude: -99.13,
		CostRange: domain.CostLow,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected id 11 got %d", id)
	}
}

func TestRegisterVisit_ConflictWithinWindow(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	store.EXPECT().
		RegisterVisit(gomock.Any(), int64(7), int64(3), 24*time.Hour).
		Return(int64(0), e.ErrConflict)

	_, err := svc.RegisterVisit(context.Background(), 7, 3)
	if !errors.Is(err, e.ErrVisitAlreadyToday) {
		t.Fatalf("expected ErrVisitAlreadyToday got %v", err)
	}
}

func TestRegisterVisit_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_service.NewMockPlaceStore(ctrl)
	cache := mock_service.NewMockPlaceCache(ctrl)
	svc := service.NewPlaceService(store, cache, newTestLogger(), placesTestConfig())

	store.EXPECT().
		RegisterVisit(gomock.Any(), int64(7), int64(3), 24*time.Hour).
		Return(int64(42), nil)
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	resp, err := svc.RegisterVisit(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("RegisterVisit: %v", err)
	}
	if resp.PlaceID != 3 || resp.NewCount != 42 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
