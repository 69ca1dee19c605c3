package domain

type CreateReviewRequest struct {
	PlaceID       int64  `json:"placeId" validate:"required"`
	RatingService int    `json:"ratingService" validate:"rating"`
	RatingTime    int    `json:"ratingTime" validate:"rating"`
	RatingTaste   int    `json:"ratingTaste" validate:"rating"`
	Comment       string `json:"comment" validate:"omitempty,max=2000"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
