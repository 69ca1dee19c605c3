package domain

import "time"

type Review struct {
	ID            int64     `json:"id"`
	PlaceID       int64     `json:"placeId"`
	UserID        int64     `json:"userId"`
	RatingService int       `json:"ratingService" validate:"rating"`
	RatingTime    int       `json:"ratingTime" validate:"rating"`
	RatingTaste   int       `json:"ratingTaste" validate:"rating"`
	Comment       string    `json:"comment,omitempty"`
	Likes         int       `json:"likes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReviewSummary is the display aggregate for one place. All float fields are
// 0.0 when Count is 0; rounding is left to the caller.
type ReviewSummary struct {
	Overall float64 `json:"overall"`
	Taste   float64 `json:"taste"`
	Service float64 `json:"service"`
	Time    float64 `json:"time"`
	Count   int     `json:"count"`
}
