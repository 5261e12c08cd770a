package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/desertthunder/filmhub/internal/shared"
)

// Client talks to the filmhub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *log.Logger
}

// NewClient creates a client for baseURL. token is consulted on every authenticated request.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     shared.WithLogger(logger, "component", "api"),
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// response is a fully read API response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// do sends r and reads the whole body. Only failures to reach the API or read its answer are errors.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.auth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// decode unmarshals a response body into v.
func decode(op string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrDecodeResponse, op, err)
	}
	return nil
}

// empty reports whether a response carried no payload.
func empty(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}
