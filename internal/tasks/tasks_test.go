package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/shared"
	tu "github.com/desertthunder/filmhub/internal/testing"
)

type mockAPIClient struct {
	responses map[string]*services.RawResponse
	err       error
}

func (m *mockAPIClient) Get(ctx context.Context, path string) (*services.RawResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.responses[path]; ok {
		return resp, nil
	}
	return &services.RawResponse{StatusCode: 404, Body: []byte("not found")}, nil
}

func quietEngine() *RatingsEngine {
	return NewRatingsEngine(log.New(&strings.Builder{}))
}

func collect(progressCh chan ProgressUpdate) (*[]ProgressUpdate, chan bool) {
	updates := []ProgressUpdate{}
	done := make(chan bool)
	go func() {
		for update := range progressCh {
			updates = append(updates, update)
		}
		done <- true
	}()
	return &updates, done
}

func parseRows(t *testing.T, csv string) []formatter.RatingRow {
	t.Helper()
	rows, err := formatter.ParseRatingsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRatingsCSV() error = %v", err)
	}
	return rows
}

func TestRatingsEngine_ImportRatings(t *testing.T) {
	t.Run("applies every row", func(t *testing.T) {
		api := &tu.MockAPI{Ratings: []models.Rating{{ID: 1, Movie: 2, Score: 3}}}
		rows := parseRows(t, "movie,score,comment\n1,8,good\n2,9,\n")

		progressCh := make(chan ProgressUpdate, 100)
		updates, done := collect(progressCh)

		result, err := quietEngine().ImportRatings(context.Background(), progressCh, api, rows, ImportOpts{RateLimit: 1000})
		close(progressCh)
		<-done

		if err != nil {
			t.Fatalf("ImportRatings() error = %v", err)
		}
		if result.Total != 2 || result.Succeeded != 2 || result.Failed != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if api.Calls("RateOrUpdate") != 2 {
			t.Errorf("expected 2 RateOrUpdate calls, got %d", api.Calls("RateOrUpdate"))
		}
		if got := models.ScoreFor(api.Ratings, 2); got != 9 {
			t.Errorf("existing rating should be updated to 9, got %d", got)
		}
		if result.Results[0].Rating == nil || result.Results[0].Rating.Comment != "good" {
			t.Errorf("unexpected saved rating %+v", result.Results[0].Rating)
		}

		if len(*updates) != 3 {
			t.Fatalf("expected start + 2 row updates, got %d", len(*updates))
		}
		last := (*updates)[2]
		if last.Phase != ImportRatings || last.Step != 2 || last.Total != 2 {
			t.Errorf("unexpected final update %+v", last)
		}
		if !strings.Contains(last.Message, "✓ movie 2 rated 9") {
			t.Errorf("unexpected message %q", last.Message)
		}
	})

	t.Run("continues after failing rows", func(t *testing.T) {
		api := &tu.MockAPI{
			RateFunc: func(movieID, score int, comment string) (*models.Rating, error) {
				if movieID == 2 {
					return nil, &services.APIError{Op: "rate", Status: 400, Message: "Movie does not exist"}
				}
				return &models.Rating{Movie: movieID, Score: score, Comment: comment}, nil
			},
		}
		rows := parseRows(t, "1,8\n2,5\nx,4\n3,11\n4,10\n")

		result, err := quietEngine().ImportRatings(context.Background(), nil, api, rows, ImportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("ImportRatings() error = %v", err)
		}
		if result.Total != 5 || result.Succeeded != 2 || result.Failed != 3 {
			t.Errorf("unexpected counts %+v", result)
		}

		tc := []struct {
			idx  int
			want error
		}{
			{idx: 1, want: shared.ErrAPIRequest},
			{idx: 2, want: shared.ErrInvalidInput},
			{idx: 3, want: shared.ErrInvalidInput},
		}
		for _, tt := range tc {
			if !errors.Is(result.Results[tt.idx].Error, tt.want) {
				t.Errorf("row %d: expected %v, got %v", tt.idx, tt.want, result.Results[tt.idx].Error)
			}
		}

		// Unparseable rows never reach the API.
		if api.Calls("RateOrUpdate") != 4 {
			t.Errorf("expected 4 RateOrUpdate calls, got %d", api.Calls("RateOrUpdate"))
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		api := &tu.MockAPI{}
		rows := parseRows(t, "1,8\n2,9\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := quietEngine().ImportRatings(ctx, nil, api, rows, ImportOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(result.Results) != 0 || api.Calls("RateOrUpdate") != 0 {
			t.Errorf("no rows should be applied, got %d results", len(result.Results))
		}
	})

	t.Run("paced by rate limit", func(t *testing.T) {
		api := &tu.MockAPI{}
		rows := parseRows(t, "1,1\n2,2\n3,3\n")

		start := time.Now()
		if _, err := quietEngine().ImportRatings(context.Background(), nil, api, rows, ImportOpts{RateLimit: 20}); err != nil {
			t.Fatalf("ImportRatings() error = %v", err)
		}

		// Burst of one: the 2nd and 3rd requests each wait ~50ms.
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("import finished too quickly for 20 req/s: %v", elapsed)
		}
	})

	t.Run("nil api", func(t *testing.T) {
		_, err := quietEngine().ImportRatings(context.Background(), nil, nil, nil, ImportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestRatingsEngine_ExportRatings(t *testing.T) {
	catalog := models.Catalog{Categories: []models.Category{
		{Name: "drama", Movies: []models.Movie{{ExternalID: 1, Title: "Heat"}}},
	}}

	t.Run("writes joined entries", func(t *testing.T) {
		api := &tu.MockAPI{
			Catalog: catalog,
			Ratings: []models.Rating{{Movie: 1, Score: 9}, {Movie: 5, Score: 2}},
		}
		path := filepath.Join(t.TempDir(), "ratings.csv")

		progressCh := make(chan ProgressUpdate, 10)
		updates, done := collect(progressCh)

		result, err := quietEngine().ExportRatings(context.Background(), progressCh, api, formatter.FormatCSV, path)
		close(progressCh)
		<-done

		if err != nil {
			t.Fatalf("ExportRatings() error = %v", err)
		}
		if result.Path != path || len(result.Entries) != 2 {
			t.Errorf("unexpected result %+v", result)
		}

		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "1,Heat,9,") || !strings.Contains(content, "5,Movie #5,2,") {
			t.Errorf("unexpected export:\n%s", content)
		}

		phases := []Phase{FetchRatings, FetchCatalog, WriteExport}
		if len(*updates) != len(phases) {
			t.Fatalf("expected %d updates, got %d", len(phases), len(*updates))
		}
		for i, p := range phases {
			if (*updates)[i].Phase != p {
				t.Errorf("update %d: expected %s, got %s", i, p, (*updates)[i].Phase)
			}
		}
	})

	t.Run("catalog failure keeps placeholders", func(t *testing.T) {
		api := &tu.MockAPI{
			CatalogErr: tu.ErrUnavailable,
			Ratings:    []models.Rating{{Movie: 1, Score: 9}},
		}
		path := filepath.Join(t.TempDir(), "ratings.txt")

		if _, err := quietEngine().ExportRatings(context.Background(), nil, api, formatter.FormatText, path); err != nil {
			t.Fatalf("ExportRatings() error = %v", err)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Movie #1") {
			t.Errorf("expected placeholder title, got %s", content)
		}
	})

	t.Run("ratings failure", func(t *testing.T) {
		api := &tu.MockAPI{RatingsErr: tu.ErrUnavailable}

		_, err := quietEngine().ExportRatings(context.Background(), nil, api, formatter.FormatCSV, "")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		api := &tu.MockAPI{}

		_, err := quietEngine().ExportRatings(context.Background(), nil, api, "xml", filepath.Join(t.TempDir(), "r.xml"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestRatingsEngine_Dump(t *testing.T) {
	apiClient := &mockAPIClient{
		responses: map[string]*services.RawResponse{
			"/movies/": {
				StatusCode: 200,
				IsJSON:     true,
				JSONData:   map[string]any{"drama": []any{}},
			},
			"/ratings/": {
				StatusCode: 200,
				IsJSON:     true,
				JSONData:   []any{map[string]any{"movie": 1, "score": 8}},
			},
			"/recommended_movies/": {
				StatusCode: 500,
				Body:       []byte("internal error"),
			},
		},
	}

	progressCh := make(chan ProgressUpdate, 100)
	updates, done := collect(progressCh)

	result, err := quietEngine().Dump(context.Background(), progressCh, apiClient)
	close(progressCh)
	<-done

	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if result.Movies == nil || result.Ratings == nil {
		t.Error("Dump() movies and ratings should not be nil")
	}
	if result.Recommendations != nil {
		t.Error("Dump() failed endpoint should leave data nil")
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 failed endpoints, got %d", len(result.Errors))
	}
	if len(*updates) != 5 {
		t.Errorf("expected 5 progress updates, got %d", len(*updates))
	}

	data := result.Data()
	if len(data.Errors) != 3 {
		t.Errorf("expected 3 serialised errors, got %d", len(data.Errors))
	}
	if _, err := shared.MarshalJSON(data, true); err != nil {
		t.Errorf("DumpData should marshal: %v", err)
	}

	t.Run("transport error", func(t *testing.T) {
		result, err := quietEngine().Dump(context.Background(), nil, &mockAPIClient{err: fmt.Errorf("%w: refused", shared.ErrServiceUnavailable)})
		if err != nil {
			t.Fatalf("Dump() error = %v", err)
		}
		if len(result.Errors) != 5 {
			t.Errorf("expected all endpoints to fail, got %d", len(result.Errors))
		}
	})

	t.Run("nil client", func(t *testing.T) {
		if _, err := quietEngine().Dump(context.Background(), nil, nil); err == nil {
			t.Error("Dump() expected error for nil API client")
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	api := &tu.MockAPI{}
	rows := parseRows(t, "1,1\n2,2\n")

	// Unbuffered and never read.
	progressCh := make(chan ProgressUpdate)

	done := make(chan bool)
	go func() {
		_, err := quietEngine().ImportRatings(context.Background(), progressCh, api, rows, ImportOpts{RateLimit: 1000})
		if err != nil {
			t.Errorf("ImportRatings() error = %v", err)
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("ImportRatings() should not block on progress sends")
	}
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		FetchRatings:         "fetch_ratings",
		FetchCatalog:         "fetch_catalog",
		FetchRecommendations: "fetch_recommendations",
		FetchWatchList:       "fetch_watch_list",
		FetchWatched:         "fetch_watched",
		ImportRatings:        "import_ratings",
		WriteExport:          "write_export",
		Phase(99):            "",
	}
	for p, want := range tc {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
