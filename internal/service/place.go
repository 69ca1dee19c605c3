package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/pkg/e"
)

type placeService struct {
	places PlaceStore
	cache  PlaceCache
	logger *slog.Logger
	cfg    config.PlacesConfig
}

func NewPlaceService(places PlaceStore, cache PlaceCache, logger *slog.Logger, cfg config.PlacesConfig) PlaceService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.VisitWindow <= 0 {
		cfg.VisitWindow = 24 * time.Hour
	}
	return &placeService{
		places: places,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

func (s *placeService) Create(ctx context.Context, userID int64, req domain.CreatePlaceRequest) (int64, error) {
	p := &domain.Place{
		Name:         req.Name,
		Category:     req.Category,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CostRange:    req.CostRange,
		Phone:        req.Phone,
		Menu:         req.Menu,
		OpeningHours: req.OpeningHours,
		HasDelivery:  req.HasDelivery,
		DeliveryApps: req.DeliveryApps,
		CoverImage:   req.CoverImage,
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.places.Create(ctx, p); err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("place cache invalidate failed", slog.Any("error", err))
	}

	s.logger.Info("place created", slog.Int64("id", p.ID), slog.String("category", p.Category))
	return p.ID, nil
}

// List loads the full most-recent-first place list (cache-aside over Redis)
// and hands it to the ranking pipeline together with the viewer location and
// the filters, then attaches per-place review summaries.
func (s *placeService) List(ctx context.Context, req domain.ListPlacesRequest) (domain.ListPlacesResponse, error) {
	places, err := s.loadPlaces(ctx)
	if err != nil {
		return domain.ListPlacesResponse{}, err
	}

	ranked := RankPlaces(places, req.Viewer, req.Filter)
	for i := range ranked {
		ranked[i].Summary = SummarizeReviews(ranked[i].Reviews)
	}

	s.logger.Debug("places listed",
		slog.Int("total", len(places)),
		slog.Int("matched", len(ranked)),
		slog.Bool("with_viewer", req.Viewer != nil),
	)

	return domain.ListPlacesResponse{Places: ranked, Total: len(ranked)}, nil
}

func (s *placeService) Get(ctx context.Context, id int64) (*domain.RankedPlace, error) {
	p, err := s.places.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rp := &domain.RankedPlace{Place: *p}
	rp.Summary = SummarizeReviews(p.Reviews)
	return rp, nil
}

func (s *placeService) RegisterVisit(ctx context.Context, userID, placeID int64) (domain.RegisterVisitResponse, error) {
	newCount, err := s.places.RegisterVisit(ctx, userID, placeID, s.cfg.VisitWindow)
	if err != nil {
		if errors.Is(err, e.ErrConflict) {
			return domain.RegisterVisitResponse{}, e.ErrVisitAlreadyToday
		}
		return domain.RegisterVisitResponse{}, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("place cache invalidate failed", slog.Any("error", err))
	}

	s.logger.Info("visit recorded",
		slog.Int64("user_id", userID),
		slog.Int64("place_id", placeID),
		slog.Int64("visit_count", newCount),
	)
	return domain.RegisterVisitResponse{PlaceID: placeID, NewCount: newCount}, nil
}

func (s *placeService) loadPlaces(ctx context.Context) ([]domain.Place, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("place cache read failed", slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	places, err := s.places.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, places, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("place cache write failed", slog.Any("error", err))
	}
	return places, nil
}
