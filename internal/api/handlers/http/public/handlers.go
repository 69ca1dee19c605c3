package public

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"exquisitos/internal/domain"
	"exquisitos/internal/middleware"
	"exquisitos/pkg/validator"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
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

type Handler struct {
	logger  *slog.Logger
	Places  PlaceService
	Reviews ReviewService
}

func NewHandler(logger *slog.Logger, places PlaceService, reviews ReviewService) *Handler {
	return &Handler{
		logger:  logger,
		Places:  places,
		Reviews: reviews,
	}
}

// PlaceList serves the dashboard list. Viewer location and filters arrive as
// query params: lat, lng, max_distance_km, search, categories (comma
// separated), cost. A request without lat/lng is the no-viewer mode: no
// distance annotation, no distance cut, input order preserved.
func (h *Handler) PlaceList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	q := r.URL.Query()

	req := domain.ListPlacesRequest{
		Filter: domain.PlaceFilter{
			SearchText:    q.Get("search"),
			CostRange:     q.Get("cost"),
			MaxDistanceKm: parseFloat(q.Get("max_distance_km"), 0),
		},
	}
	if cats := q.Get("categories"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				req.Filter.Categories = append(req.Filter.Categories, c)
			}
		}
	}

	if q.Has("lat") && q.Has("lng") {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			l.Warn("invalid viewer location", slog.String("lat", q.Get("lat")), slog.String("lng", q.Get("lng")))
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
			return
		}
		req.Viewer = &domain.Coordinates{Lat: lat, Lng: lng}
	}

	resp, err := h.Places.List(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Debug("places listed", slog.Int("count", resp.Total))
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) PlaceCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.CreatePlaceRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, err := h.Places.Create(r.Context(), user.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.log(r).Info("place created", slog.Int64("id", id), slog.Int64("user_id", user.ID))
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) PlaceGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r, "id")
	if !ok {
		return
	}

	place, err := h.Places.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, place)
}

func (h *Handler) VisitRegister(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	placeID, ok := h.urlID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.Places.RegisterVisit(r.Context(), user.ID, placeID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ReviewCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.CreateReviewRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, err := h.Reviews.Create(r.Context(), user.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.log(r).Info("review created", slog.Int64("id", id), slog.Int64("place_id", req.PlaceID))
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) ReviewLike(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	reviewID, ok := h.urlID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.Reviews.ToggleLike(r.Context(), user.ID, reviewID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.log(r).Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := validator.ValidateStruct(target); err != nil {
		h.log(r).Warn("validation failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
		return false
	}
	return true
}

func (h *Handler) urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.log(r).Warn("invalid id", slog.String("id", raw))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
