package formatter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
	th "github.com/desertthunder/filmhub/internal/testing"
)

func sampleMovies() []models.Movie {
	avg := 8.4
	return []models.Movie{
		{ExternalID: 1, Title: "Alien", Year: 1979, Genre: "Sci-Fi", Director: "Ridley Scott", AverageRating: &avg, PosterURL: "http://img/alien.jpg"},
		{ExternalID: 2, Title: "Heat | Director's Cut"},
	}
}

func sampleEntries() []models.RatingEntry {
	movies := sampleMovies()
	return models.JoinRatings([]models.Rating{
		{Movie: 1, Score: 9, Comment: "classic, tense"},
		{Movie: 7, Score: 4},
	}, movies)
}

func TestExporters(t *testing.T) {
	t.Run("Stars", func(t *testing.T) {
		tc := []struct {
			score int
			want  string
		}{
			{score: 0, want: "☆☆☆☆☆☆☆☆☆☆"},
			{score: 3, want: "★★★☆☆☆☆☆☆☆"},
			{score: 10, want: "★★★★★★★★★★"},
			{score: 12, want: "★★★★★★★★★★"},
			{score: -1, want: "☆☆☆☆☆☆☆☆☆☆"},
		}
		for _, tt := range tc {
			if got := Stars(tt.score); got != tt.want {
				t.Errorf("Stars(%d) = %s, want %s", tt.score, got, tt.want)
			}
		}
	})

	t.Run("MovieLine", func(t *testing.T) {
		movies := sampleMovies()
		if got := MovieLine(movies[0]); got != "[1] Alien (1979) · Sci-Fi · Ridley Scott · ★ 8.4" {
			t.Errorf("unexpected line %q", got)
		}
		if got := MovieLine(movies[1]); got != "[2] Heat | Director's Cut · ★ N/A" {
			t.Errorf("unexpected line %q", got)
		}
	})

	t.Run("MoviesToText", func(t *testing.T) {
		output := string(MoviesToText("All Movies", sampleMovies()))
		if !strings.HasPrefix(output, "All Movies (2)\n\n1. [1] Alien") {
			t.Errorf("unexpected text output: %s", output)
		}
		if !strings.Contains(output, "2. [2] Heat") {
			t.Errorf("missing second movie: %s", output)
		}
	})

	t.Run("MoviesToMarkdown", func(t *testing.T) {
		output := string(MoviesToMarkdown("Search", sampleMovies()))
		if !strings.Contains(output, "# Search") {
			t.Error("Markdown missing title")
		}
		if !strings.Contains(output, "| 1 | Alien | 1979 | Sci-Fi | Ridley Scott | 8.4 |") {
			t.Errorf("Markdown missing Alien row: %s", output)
		}
		if !strings.Contains(output, `Heat \| Director's Cut`) {
			t.Error("Markdown should escape pipes")
		}
	})

	t.Run("MoviesToCSV", func(t *testing.T) {
		data, err := MoviesToCSV(sampleMovies())
		if err != nil {
			t.Fatalf("MoviesToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "external_id,title,year,genre,director,average_rating,poster_url" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "1,Alien,1979,Sci-Fi,Ridley Scott,8.4,http://img/alien.jpg" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if lines[2] != "2,Heat | Director's Cut,,,,," {
			t.Errorf("unexpected second row: %s", lines[2])
		}
	})

	t.Run("RatingsToCSV", func(t *testing.T) {
		data, err := RatingsToCSV(sampleEntries())
		if err != nil {
			t.Fatalf("RatingsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "movie,title,score,comment\n") {
			t.Errorf("CSV missing headers: %s", output)
		}
		if !strings.Contains(output, `1,Alien,9,"classic, tense"`) {
			t.Errorf("CSV should quote comments with commas: %s", output)
		}
		if !strings.Contains(output, "7,Movie #7,4,") {
			t.Errorf("CSV missing placeholder title: %s", output)
		}
	})

	t.Run("RatingsToMarkdown", func(t *testing.T) {
		output := string(RatingsToMarkdown(sampleEntries()))
		if !strings.Contains(output, "**Rated movies**: 2") {
			t.Error("Markdown missing count")
		}
		if !strings.Contains(output, "★★★★★★★★★☆ 9/10") {
			t.Errorf("Markdown missing stars: %s", output)
		}
	})

	t.Run("RatingsToText", func(t *testing.T) {
		output := string(RatingsToText(sampleEntries()))
		if !strings.Contains(output, " 9/10  [1] Alien - classic, tense\n") {
			t.Errorf("unexpected text: %s", output)
		}
		if !strings.Contains(output, " 4/10  [7] Movie #7\n") {
			t.Errorf("unexpected text: %s", output)
		}
	})
}

func TestParseRatingsCSV(t *testing.T) {
	t.Run("with header", func(t *testing.T) {
		rows, err := ParseRatingsCSV(strings.NewReader("movie,score,comment\n1,9,great\n2,4,\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].Movie != 1 || rows[0].Score != 9 || rows[0].Comment != "great" || rows[0].Line != 2 {
			t.Errorf("unexpected first row %+v", rows[0])
		}
	})

	t.Run("without header", func(t *testing.T) {
		rows, err := ParseRatingsCSV(strings.NewReader("5,7\n6,8,ok\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].Movie != 5 || rows[1].Comment != "ok" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("reads its own export", func(t *testing.T) {
		data, _ := RatingsToCSV(sampleEntries())
		rows, err := ParseRatingsCSV(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].Movie != 1 || rows[0].Score != 9 || rows[0].Comment != "classic, tense" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("bad rows keep going", func(t *testing.T) {
		rows, err := ParseRatingsCSV(strings.NewReader("1,9\nabc,5\n3,high\n4\n\n5,2\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 5 {
			t.Fatalf("expected 5 rows, got %d", len(rows))
		}

		var bad int
		for _, r := range rows {
			if r.Err != nil {
				bad++
				if !errors.Is(r.Err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", r.Err)
				}
			}
		}
		if bad != 3 {
			t.Errorf("expected 3 bad rows, got %d", bad)
		}
		if rows[4].Movie != 5 || rows[4].Err != nil {
			t.Errorf("expected last row parsed, got %+v", rows[4])
		}
	})

	t.Run("malformed CSV", func(t *testing.T) {
		_, err := ParseRatingsCSV(strings.NewReader("1,\"unterminated\n"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestDownloadPoster(t *testing.T) {
	t.Run("empty URL", func(t *testing.T) {
		_, err := DownloadPoster(context.Background(), nil, "")
		if err == nil {
			t.Error("DownloadPoster with empty URL should return error")
		}
	})

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("JPEGDATA"))
		}))
		defer server.Close()

		data, err := DownloadPoster(context.Background(), server.Client(), server.URL+"/p.jpg")
		if err != nil || string(data) != "JPEGDATA" {
			t.Errorf("unexpected result %q, %v", data, err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadPoster(context.Background(), nil, server.URL); err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteRatings", func(t *testing.T) {
		formats := []struct {
			format string
			want   string
		}{
			{format: FormatCSV, want: "movie,title,score,comment"},
			{format: FormatMarkdown, want: "# My Ratings"},
			{format: FormatText, want: "[1] Alien"},
			{format: FormatJSON, want: `"score": 9`},
		}

		for _, tt := range formats {
			t.Run(tt.format, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "nested", "ratings."+tt.format)
				written, err := WriteRatings(sampleEntries(), tt.format, path)
				if err != nil {
					t.Fatalf("WriteRatings failed: %v", err)
				}
				if written != path {
					t.Errorf("expected %s, got %s", path, written)
				}
				if content := th.MustReadFile(t, path); !strings.Contains(content, tt.want) {
					t.Errorf("expected %q in output, got: %s", tt.want, content)
				}
			})
		}
	})

	t.Run("with default path", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		written, err := WriteRatings(sampleEntries(), FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteRatings failed: %v", err)
		}
		if !strings.HasPrefix(written, "ratings_") || !strings.HasSuffix(written, ".md") {
			t.Errorf("unexpected default path %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := WriteRatings(nil, "xml", filepath.Join(t.TempDir(), "r.xml"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := WriteRatings(sampleEntries(), FormatCSV, filepath.Join(blocker, "r.csv")); err == nil {
			t.Error("expected error writing below a regular file")
		}
	})
}
