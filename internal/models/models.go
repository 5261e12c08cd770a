// package models defines the data model for the filmhub client
package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/filmhub/internal/shared"
)

// Score bounds accepted by the rating endpoints.
const (
	MinScore = 1
	MaxScore = 10
)

// Movie is a catalog entry. The client never mutates it.
type Movie struct {
	ExternalID    int      `json:"external_id"`
	Title         string   `json:"title"`
	Year          Year     `json:"year,omitempty"`
	Genre         string   `json:"genre,omitempty"`
	Director      string   `json:"director,omitempty"`
	PosterURL     string   `json:"poster_url,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// Year is a release year. The backend does not type it, so it decodes from a
// number, a numeric string or null. Anything else reads as unknown (0).
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*y = 0
		return nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*y = 0
		return nil
	}
	*y = Year(f)
	return nil
}

// RatingLabel formats the average rating with one decimal, or "N/A" when absent.
func (m Movie) RatingLabel() string {
	if m.AverageRating == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *m.AverageRating)
}

// Rating is one user's score for one movie; Movie holds the movie's external id.
type Rating struct {
	ID      int    `json:"id,omitempty"`
	Movie   int    `json:"movie"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// ValidateScore checks that score lies within [MinScore, MaxScore].
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: rating must be between %d and %d", shared.ErrInvalidInput, MinScore, MaxScore)
	}
	return nil
}

// UserSummary is the identity projection returned by the login endpoint.
type UserSummary struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session holds the current credentials. The zero value is the logged-out session.
type Session struct {
	User  *UserSummary
	Token string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Username returns the logged-in username or fallback when unknown.
func (s Session) Username(fallback string) string {
	if s.User == nil || s.User.Username == "" {
		return fallback
	}
	return s.User.Username
}

// SearchType selects the field a catalog search matches against.
type SearchType string

const (
	SearchByTitle    SearchType = "title"
	SearchByDirector SearchType = "director"
	SearchByGenre    SearchType = "genre"
)

// ParseSearchType maps user input to a [SearchType]; empty input means title.
func ParseSearchType(s string) (SearchType, error) {
	switch st := SearchType(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return SearchByTitle, nil
	case SearchByTitle, SearchByDirector, SearchByGenre:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown search type %q (want title, director or genre)", shared.ErrInvalidArgument, s)
	}
}

// DedupeMovies concatenates lists and drops repeated external ids, keeping first-seen order.
func DedupeMovies(lists ...[]Movie) []Movie {
	seen := make(map[int]struct{})
	out := []Movie{}
	for _, list := range lists {
		for _, m := range list {
			if _, ok := seen[m.ExternalID]; ok {
				continue
			}
			seen[m.ExternalID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// RatedMovies keeps the movies that have a rating, in the order of movies.
func RatedMovies(movies []Movie, ratings []Rating) []Movie {
	ids := make([]int, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.Movie)
	}

	out := []Movie{}
	for _, m := range movies {
		if slices.Contains(ids, m.ExternalID) {
			out = append(out, m)
		}
	}
	return out
}

// ScoreFor returns the user's score for movieID, or 0 when unrated.
func ScoreFor(ratings []Rating, movieID int) int {
	for _, r := range ratings {
		if r.Movie == movieID {
			return r.Score
		}
	}
	return 0
}

// RatingEntry is a rating joined with its catalog movie, when the catalog knows it.
type RatingEntry struct {
	Rating Rating `json:"rating"`
	Movie  *Movie `json:"movie,omitempty"`
}

// Title returns the movie title, or a placeholder naming the external id.
func (e RatingEntry) Title() string {
	if e.Movie == nil || e.Movie.Title == "" {
		return fmt.Sprintf("Movie #%d", e.Rating.Movie)
	}
	return e.Movie.Title
}

// JoinRatings pairs each rating with its movie from movies, keeping rating order.
func JoinRatings(ratings []Rating, movies []Movie) []RatingEntry {
	byID := make(map[int]Movie, len(movies))
	for _, m := range movies {
		if _, ok := byID[m.ExternalID]; !ok {
			byID[m.ExternalID] = m
		}
	}

	out := make([]RatingEntry, 0, len(ratings))
	for _, r := range ratings {
		entry := RatingEntry{Rating: r}
		if m, ok := byID[r.Movie]; ok {
			entry.Movie = &m
		}
		out = append(out, entry)
	}
	return out
}
