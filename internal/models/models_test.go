package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/filmhub/internal/shared"
)

func ids(movies []Movie) []int {
	out := make([]int, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ExternalID)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCatalog(t *testing.T) {
	t.Run("Flatten de-duplicates in first-seen order", func(t *testing.T) {
		var c Catalog
		body := `{"popular":[{"external_id":1,"title":"m1"},{"external_id":2,"title":"m2"}],
			"drama":[{"external_id":2,"title":"m2"},{"external_id":3,"title":"m3"}]}`
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if got := ids(c.Flatten()); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("Flatten() = %v, want [1 2 3]", got)
		}
	})

	t.Run("Key order is preserved", func(t *testing.T) {
		var c Catalog
		body := `{"zeta":[{"external_id":9}],"alpha":[{"external_id":1}],"mid":[{"external_id":5}]}`
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		names := c.Names()
		want := []string{"zeta", "alpha", "mid"}
		if len(names) != len(want) {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
			}
		}
		if got := ids(c.Flatten()); !equalInts(got, []int{9, 1, 5}) {
			t.Errorf("Flatten() = %v, want [9 1 5]", got)
		}
	})

	t.Run("Non-array categories are skipped", func(t *testing.T) {
		var c Catalog
		body := `{"count":3,"meta":{"page":1},"popular":[{"external_id":4}]}`
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(c.Categories) != 1 || c.Categories[0].Name != "popular" {
			t.Errorf("expected only the popular category, got %v", c.Names())
		}
	})

	t.Run("String year does not drop the catalog", func(t *testing.T) {
		var c Catalog
		body := `{"popular":[{"external_id":1,"title":"A","year":"2010"}],"drama":[{"external_id":2,"title":"B","year":1999}]}`
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		movies := c.Flatten()
		if got := ids(movies); !equalInts(got, []int{1, 2}) {
			t.Fatalf("Flatten() = %v, want [1 2]", got)
		}
		if movies[0].Year != 2010 || movies[1].Year != 1999 {
			t.Errorf("years = %d, %d, want 2010, 1999", movies[0].Year, movies[1].Year)
		}
	})

	t.Run("Bare array becomes the all category", func(t *testing.T) {
		var c Catalog
		if err := json.Unmarshal([]byte(`[{"external_id":7},{"external_id":8}]`), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		movies, ok := c.Category(AllCategory)
		if !ok || len(movies) != 2 {
			t.Errorf("expected 2 movies under %q, got %v", AllCategory, movies)
		}
	})

	t.Run("Null yields an empty catalog", func(t *testing.T) {
		var c Catalog
		if err := json.Unmarshal([]byte(`null`), &c); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(c.Flatten()) != 0 {
			t.Error("expected no movies")
		}
	})

	t.Run("Scalar body is rejected", func(t *testing.T) {
		var c Catalog
		if err := json.Unmarshal([]byte(`"nope"`), &c); err == nil {
			t.Error("expected error for scalar catalog")
		}
	})

	t.Run("MarshalJSON keeps order", func(t *testing.T) {
		c := Catalog{Categories: []Category{
			{Name: "b", Movies: []Movie{{ExternalID: 2, Title: "Two"}}},
			{Name: "a"},
		}}
		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		want := `{"b":[{"external_id":2,"title":"Two"}],"a":[]}`
		if string(data) != want {
			t.Errorf("MarshalJSON() = %s, want %s", data, want)
		}
	})

	t.Run("Find", func(t *testing.T) {
		c := Catalog{Categories: []Category{
			{Name: "popular", Movies: []Movie{{ExternalID: 1, Title: "One"}}},
			{Name: "drama", Movies: []Movie{{ExternalID: 3, Title: "Three"}}},
		}}

		m, err := c.Find(3)
		if err != nil {
			t.Fatalf("Find(3) error = %v", err)
		}
		if m.Title != "Three" {
			t.Errorf("Find(3) title = %s", m.Title)
		}

		if _, err := c.Find(42); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})
}

func TestYear(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Year
	}{
		{name: "number", body: `1999`, want: 1999},
		{name: "numeric string", body: `"2010"`, want: 2010},
		{name: "padded string", body: `" 2001 "`, want: 2001},
		{name: "null", body: `null`, want: 0},
		{name: "empty string", body: `""`, want: 0},
		{name: "non-numeric string reads as unknown", body: `"circa 1920"`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Movie
			if err := json.Unmarshal([]byte(`{"external_id":1,"year":`+tt.body+`}`), &m); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if m.Year != tt.want {
				t.Errorf("Year = %d, want %d", m.Year, tt.want)
			}
		})
	}

	t.Run("encodes as a number", func(t *testing.T) {
		data, err := json.Marshal(Movie{ExternalID: 1, Year: 1979})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if raw["year"] != float64(1979) {
			t.Errorf("year = %v, want 1979", raw["year"])
		}
	})
}

func TestValidateScore(t *testing.T) {
	tc := []struct {
		score   int
		wantErr bool
	}{
		{score: 0, wantErr: true},
		{score: 1},
		{score: 5},
		{score: 10},
		{score: 11, wantErr: true},
		{score: -3, wantErr: true},
	}

	for _, tt := range tc {
		err := ValidateScore(tt.score)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateScore(%d) error = %v, wantErr %v", tt.score, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("ValidateScore(%d) should wrap ErrInvalidInput", tt.score)
		}
	}
}

func TestParseSearchType(t *testing.T) {
	tc := []struct {
		input   string
		want    SearchType
		wantErr bool
	}{
		{input: "", want: SearchByTitle},
		{input: "title", want: SearchByTitle},
		{input: " Director ", want: SearchByDirector},
		{input: "genre", want: SearchByGenre},
		{input: "actor", wantErr: true},
	}

	for _, tt := range tc {
		got, err := ParseSearchType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSearchType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSearchType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHelpers(t *testing.T) {
	t.Run("RatedMovies", func(t *testing.T) {
		movies := []Movie{{ExternalID: 1}, {ExternalID: 2}, {ExternalID: 3}}
		ratings := []Rating{{Movie: 3, Score: 7}, {Movie: 1, Score: 9}}

		if got := ids(RatedMovies(movies, ratings)); !equalInts(got, []int{1, 3}) {
			t.Errorf("RatedMovies() = %v, want [1 3]", got)
		}
		if ScoreFor(ratings, 3) != 7 || ScoreFor(ratings, 2) != 0 {
			t.Error("ScoreFor returned unexpected values")
		}
	})

	t.Run("RatingLabel", func(t *testing.T) {
		avg := 7.25
		if (Movie{AverageRating: &avg}).RatingLabel() != "7.2" && (Movie{AverageRating: &avg}).RatingLabel() != "7.3" {
			t.Error("expected one decimal place")
		}
		if (Movie{}).RatingLabel() != "N/A" {
			t.Error("expected N/A for missing rating")
		}
	})

	t.Run("Session", func(t *testing.T) {
		var s Session
		if s.Authenticated() {
			t.Error("zero session should not be authenticated")
		}
		if s.Username("User") != "User" {
			t.Error("expected fallback username")
		}

		s = Session{User: &UserSummary{Username: "alice"}, Token: "t1"}
		if !s.Authenticated() || s.Username("User") != "alice" {
			t.Error("expected authenticated alice session")
		}
	})
}

func TestJoinRatings(t *testing.T) {
	movies := []Movie{{ExternalID: 1, Title: "Alien"}, {ExternalID: 2, Title: "Heat"}}
	ratings := []Rating{{Movie: 2, Score: 8}, {Movie: 9, Score: 3}}

	entries := JoinRatings(ratings, movies)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title() != "Heat" || entries[0].Rating.Score != 8 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Movie != nil || entries[1].Title() != "Movie #9" {
		t.Errorf("expected placeholder for unknown movie, got %q", entries[1].Title())
	}
}
