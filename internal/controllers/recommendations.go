package controllers

import (
	"context"

	"github.com/desertthunder/filmhub/internal/models"
)

// RecommendationsSnapshot is a copy of the recommendations page state.
type RecommendationsSnapshot struct {
	Recommendations Source[[]models.Movie]
	RatingError     string
	Notice          string
}

// Empty reports a finished, successful load with nothing to show.
func (s RecommendationsSnapshot) Empty() bool {
	r := s.Recommendations
	return !r.Loading && r.Error == "" && len(r.Data) == 0
}

// Recommendations drives the full recommendations page.
type Recommendations struct {
	base
	recs Source[[]models.Movie]
}

func NewRecommendations(api API, opts Options) *Recommendations {
	r := &Recommendations{}
	r.init(api, opts, "recommendations")
	r.recs.Loading = true
	return r
}

func (r *Recommendations) Load(ctx context.Context) {
	fetch(&r.base, &r.recs, MsgRecommendationsError, func() ([]models.Movie, error) {
		return r.api.GetRecommendations(ctx)
	})
}

// Rate saves a score and reloads the list on success.
func (r *Recommendations) Rate(ctx context.Context, movieID, score int) error {
	return r.rate(ctx, movieID, score, r.Load)
}

func (r *Recommendations) Snapshot() RecommendationsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecommendationsSnapshot{
		Recommendations: copySource(r.recs),
		RatingError:     r.ratingError,
		Notice:          r.notice,
	}
}
