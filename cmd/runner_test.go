package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/session"
	"github.com/desertthunder/filmhub/internal/shared"
	tu "github.com/desertthunder/filmhub/internal/testing"
)

// fakeRaw serves canned raw responses keyed by path.
type fakeRaw struct {
	responses map[string]*services.RawResponse
	err       error
	posted    []byte
}

func (f *fakeRaw) Get(_ context.Context, path string) (*services.RawResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if resp, ok := f.responses[path]; ok {
		return resp, nil
	}
	return &services.RawResponse{StatusCode: http.StatusNotFound, Body: []byte(`{"detail":"Not found."}`)}, nil
}

func (f *fakeRaw) Post(_ context.Context, path string, data []byte) (*services.RawResponse, error) {
	f.posted = data
	return f.Get(context.Background(), path)
}

func jsonResponse(body string, data any) *services.RawResponse {
	return &services.RawResponse{StatusCode: http.StatusOK, Body: []byte(body), IsJSON: true, JSONData: data}
}

func loggedInStorage() *tu.MemoryStorage {
	return tu.NewMemoryStorage(map[string]string{
		session.KeyToken: "abc123",
		session.KeyUser:  `{"username":"ana"}`,
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			storage := tu.NewMemoryStorage(nil)
			api := &tu.MockAPI{}
			raw := &fakeRaw{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Storage:    storage,
				API:        api,
				Raw:        raw,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.storage != storage {
				t.Error("expected storage to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.raw != raw {
				t.Error("expected raw client to be set")
			}
			if runner.engine == nil {
				t.Error("expected ratings engine to be created")
			}
		})

		t.Run("with nil config falls back to defaults on use", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config != nil {
				t.Error("expected config to be loaded lazily")
			}
			if runner.cfg().API.BaseURL == "" {
				t.Error("expected default config to have a base URL")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("connect", func(t *testing.T) {
		t.Run("restores the saved session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:  shared.DefaultConfig(),
				Storage: loggedInStorage(),
				API:     &tu.MockAPI{},
				Output:  &bytes.Buffer{},
			})

			if err := runner.connect(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.store.Token() != "abc123" {
				t.Errorf("expected restored token, got %q", runner.store.Token())
			}
			if runner.auth == nil {
				t.Error("expected auth controller to be built")
			}
		})

		t.Run("storage read failure continues logged out", func(t *testing.T) {
			storage := loggedInStorage()
			storage.GetErr = errors.New("disk gone")
			runner := NewRunner(RunnerOpts{
				Config:  shared.DefaultConfig(),
				Storage: storage,
				API:     &tu.MockAPI{},
				Output:  &bytes.Buffer{},
			})

			if err := runner.connect(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.store.Authenticated() {
				t.Error("expected logged-out session")
			}
		})

		t.Run("builds the HTTP client when none is injected", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:  shared.DefaultConfig(),
				Storage: tu.NewMemoryStorage(nil),
				Output:  &bytes.Buffer{},
			})

			if err := runner.connect(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := runner.api.(*services.Client); !ok {
				t.Errorf("expected *services.Client, got %T", runner.api)
			}
			if runner.raw == nil {
				t.Error("expected raw client to share the gateway client")
			}
		})

		t.Run("requireAuth rejects a missing session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:  shared.DefaultConfig(),
				Storage: tu.NewMemoryStorage(nil),
				API:     &tu.MockAPI{},
				Output:  &bytes.Buffer{},
			})

			err := runner.requireAuth(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeRaw", func(t *testing.T) {
		t.Run("pretty-prints JSON bodies", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeRaw(jsonResponse(`{"a":1}`, map[string]any{"a": 1}), true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), `"a": 1`) {
				t.Errorf("expected indented JSON, got %q", output.String())
			}
		})

		t.Run("prints other bodies verbatim", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeRaw(&services.RawResponse{StatusCode: 200, Body: []byte("plain")}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "plain\n" {
				t.Errorf("expected %q, got %q", "plain\n", output.String())
			}
		})
	})

	t.Run("validJSON", func(t *testing.T) {
		if err := validJSON(`{"movie": 1}`); err != nil {
			t.Errorf("expected valid JSON, got %v", err)
		}
		if err := validJSON(`{movie: 1`); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
				continue
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "movies", "ratings", "recommendations", "watchlist", "watched", "api", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads defaults when the config file is missing", func(t *testing.T) {
			dir := t.TempDir()
			tu.MustChdir(t, dir)

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Storage: tu.NewMemoryStorage(nil), API: &tu.MockAPI{}})
			err := newApp(runner).Run(context.Background(), []string{"filmhub", "auth", "status"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config == nil || runner.config.API.BaseURL == "" {
				t.Error("expected default config to be loaded")
			}
		})

		t.Run("rejects an invalid config file", func(t *testing.T) {
			dir := t.TempDir()
			tu.MustChdir(t, dir)
			if err := os.WriteFile("bad.toml", []byte("[api]\nbase_url = \"\"\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			err := newApp(runner).Run(context.Background(), []string{"filmhub", "--config", "bad.toml", "auth", "status"})
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func TestSessionUser(t *testing.T) {
	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Storage: loggedInStorage(),
		API:     &tu.MockAPI{},
		Output:  &bytes.Buffer{},
	})
	if err := runner.connect(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := models.Session{Token: "abc123", User: &models.UserSummary{Username: "ana"}}
	got := runner.store.Session()
	if got.Token != want.Token || got.Username("") != want.User.Username {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
