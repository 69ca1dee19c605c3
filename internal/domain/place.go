package domain

import "time"

// CostRange values as shown on the dashboard.
const (
	CostLow    = "$"
	CostMedium = "$$"
	CostHigh   = "$$$"
)

type Place struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude" validate:"lat"`  // -90..90
	Longitude    float64   `json:"longitude" validate:"lng"` // -180..180
	CostRange    string    `json:"costRange,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Menu         string    `json:"menu,omitempty"`
	OpeningHours string    `json:"openingHours,omitempty"`
	HasDelivery  bool      `json:"hasDelivery"`
	DeliveryApps string    `json:"deliveryApps,omitempty"`
	CoverImage   string    `json:"coverImage,omitempty"`
	Verified     bool      `json:"verified"`
	VisitCount   int64     `json:"visitCount"`
	UserID       int64     `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	Reviews      []Review  `json:"reviews,omitempty"`
}

// Coordinates is a plain lat/lng pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RankedPlace is a Place annotated for display. DistanceKm is nil when no
// viewer location was supplied, not a zero distance.
type RankedPlace struct {
	Place
	DistanceKm *float64      `json:"distanceKm,omitempty"`
	Summary    ReviewSummary `json:"summary"`
}

// PlaceFilter holds the recognized display filters. Zero values mean "no
// restriction": empty SearchText, empty Categories, empty CostRange and a
// non-positive MaxDistanceKm each disable their step of the pipeline.
type PlaceFilter struct {
	SearchText    string   `json:"searchText"`
	Categories    []string `json:"categories"`
	CostRange     string   `json:"costRange"`
	MaxDistanceKm float64  `json:"maxDistanceKm"`
}
