package service_test

import (
	"math"
	"testing"

	"exquisitos/internal/domain"
	"exquisitos/internal/service"
)

func review(svc, wait, taste int) domain.Review {
	return domain.Review{RatingService: svc, RatingTime: wait, RatingTaste: taste}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %v want %v", name, got, want)
	}
}

func TestSummarizeReviews_Empty(t *testing.T) {
	t.Parallel()

	s := service.SummarizeReviews(nil)

	if s.Count != 0 {
		t.Fatalf("expected count 0 got %d", s.Count)
	}
	if s.Overall != 0 || s.Taste != 0 || s.Service != 0 || s.Time != 0 {
		t.Fatalf("expected all-zero summary got %+v", s)
	}
}

func TestSummarizeReviews_SinglePerfectReview(t *testing.T) {
	t.Parallel()

	s := service.SummarizeReviews([]domain.Review{review(5, 5, 5)})

	if s.Count != 1 {
		t.Fatalf("expected count 1 got %d", s.Count)
	}
	approx(t, "overall", s.Overall, 5)
	approx(t, "taste", s.Taste, 5)
	approx(t, "service", s.Service, 5)
	approx(t, "time", s.Time, 5)
}

func TestSummarizeReviews_OverallAveragesPerReviewMeans(t *testing.T) {
	t.Parallel()

	// Each review's own mean is 3, so overall is 3 even though individual
	// aspects swing between 1 and 5.
	s := service.SummarizeReviews([]domain.Review{
		review(5, 3, 1),
		review(1, 3, 5),
	})

	if s.Count != 2 {
		t.Fatalf("expected count 2 got %d", s.Count)
	}
	approx(t, "overall", s.Overall, 3)
	approx(t, "taste", s.Taste, 3)
	approx(t, "service", s.Service, 3)
	approx(t, "time", s.Time, 3)
}

func TestSummarizeReviews_FractionalAverages(t *testing.T) {
	t.Parallel()

	s := service.SummarizeReviews([]domain.Review{
		review(4, 5, 5),
		review(3, 4, 5),
	})

	approx(t, "service", s.Service, 3.5)
	approx(t, "time", s.Time, 4.5)
	approx(t, "taste", s.Taste, 5)
	// (14/3 + 12/3) / 2.
	approx(t, "overall", s.Overall, 13.0/3.0)
}
