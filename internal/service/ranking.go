package service

import (
	"math"
	"sort"
	"strings"

	"exquisitos/internal/domain"
)

// ComputeDistanceKm returns the great-circle distance between two coordinate
// pairs via the haversine formula, mean Earth radius 6371 km.
func ComputeDistanceKm(a, b domain.Coordinates) float64 {
	const earthRadiusKm = 6371.0

	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RankPlaces produces the filtered, distance-annotated, sorted place list for
// display. The pipeline, in order: distance annotation (viewer present),
// search text filter, category filter, cost filter, max-distance cut (viewer
// present, inclusive bound), ascending distance sort (viewer present, stable).
//
// With no viewer the distance steps are skipped entirely and the input order
// is preserved; callers populate it most-recent-first. The input slice is
// never mutated and an empty result is a valid outcome.
func RankPlaces(places []domain.Place, viewer *domain.Coordinates, f domain.PlaceFilter) []domain.RankedPlace {
	ranked := make([]domain.RankedPlace, 0, len(places))
	for _, p := range places {
		rp := domain.RankedPlace{Place: p}
		if viewer != nil {
			d := ComputeDistanceKm(*viewer, domain.Coordinates{Lat: p.Latitude, Lng: p.Longitude})
			rp.DistanceKm = &d
		}
		ranked = append(ranked, rp)
	}

	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		ranked = keep(ranked, func(p domain.RankedPlace) bool {
			return strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Category), needle)
		})
	}

	if len(f.Categories) > 0 {
		allowed := make(map[string]struct{}, len(f.Categories))
		for _, c := range f.Categories {
			allowed[c] = struct{}{}
		}
		ranked = keep(ranked, func(p domain.RankedPlace) bool {
			_, ok := allowed[p.Category]
			return ok
		})
	}

	if f.CostRange != "" {
		ranked = keep(ranked, func(p domain.RankedPlace) bool {
			return p.CostRange == f.CostRange
		})
	}

	if viewer != nil && f.MaxDistanceKm > 0 {
		ranked = keep(ranked, func(p domain.RankedPlace) bool {
			return *p.DistanceKm <= f.MaxDistanceKm
		})
	}

	if viewer != nil {
		sort.SliceStable(ranked, func(i, j int) bool {
			return *ranked[i].DistanceKm < *ranked[j].DistanceKm
		})
	}

	return ranked
}

func keep(in []domain.RankedPlace, pred func(domain.RankedPlace) bool) []domain.RankedPlace {
	out := in[:0:len(in)]
	for _, p := range in {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
