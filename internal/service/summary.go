package service

import "exquisitos/internal/domain"

// SummarizeReviews computes the display aggregate for one place's reviews.
//
// Overall averages each review's own balanced mean (service+time+taste)/3
// across reviews, rather than averaging the three aspect means; the two only
// coincide while every review carries all three ratings, and the per-review
// order is the one that stays correct if partial ratings ever appear.
//
// Zero reviews yield the all-zero summary, not NaN and not an error; the
// caller decides how to render the empty state. No rounding is done here.
func SummarizeReviews(reviews []domain.Review) domain.ReviewSummary {
	s := domain.ReviewSummary{Count: len(reviews)}
	if s.Count == 0 {
		return s
	}

	var overall, taste, service, waitTime float64
	for _, r := range reviews {
		overall += (float64(r.RatingService) + float64(r.RatingTime) + float64(r.RatingTaste)) / 3
		taste += float64(r.RatingTaste)
		service += float64(r.RatingService)
		waitTime += float64(r.RatingTime)
	}

	n := float64(s.Count)
	s.Overall = overall / n
	s.Taste = taste / n
	s.Service = service / n
	s.Time = waitTime / n
	return s
}
