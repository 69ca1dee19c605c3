package domain

type CreatePlaceRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category" validate:"required,max=80"`
	Address      string  `json:"address" validate:"required,max=300"`
	Latitude     float64 `json:"latitude" validate:"lat"`
	Longitude    float64 `json:"longitude" validate:"lng"`
	CostRange    string  `json:"costRange" validate:"omitempty,oneof=$ $$ $$$"`
	Phone        string  `json:"phone" validate:"omitempty,max=32"`
	Menu         string  `json:"menu"`
	OpeningHours string  `json:"openingHours" validate:"omitempty,max=200"`
	HasDelivery  bool    `json:"hasDelivery"`
	DeliveryApps string  `json:"deliveryApps" validate:"omitempty,max=200"`
	CoverImage   string  `json:"coverImage" validate:"omitempty,max=500"`
}

// ListPlacesRequest carries the dashboard filters plus the optional viewer
// location. Viewer is nil when the client has no location fix.
type ListPlacesRequest struct {
	Viewer *Coordinates `json:"viewer"`
	Filter PlaceFilter  `json:"filter"`
}

type ListPlacesResponse struct {
	Places []RankedPlace `json:"places"`
	Total  int           `json:"total"`
}

type RegisterVisitResponse struct {
	PlaceID  int64 `json:"placeId"`
	NewCount int64 `json:"newCount"`
}
