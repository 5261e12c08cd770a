// Raw requests against the filmhub API, for debugging endpoints directly
package services

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
)

// RawResponse is an undecoded API response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs an authenticated GET to path and returns the raw response whatever its status.
func (c *Client) Get(ctx context.Context, path string) (*RawResponse, error) {
	return c.raw(ctx, http.MethodGet, path, nil)
}

// Post performs an authenticated POST of the given JSON document to path.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*RawResponse, error) {
	return c.raw(ctx, http.MethodPost, path, json.RawMessage(data))
}

func (c *Client) raw(ctx context.Context, method, path string, body any) (*RawResponse, error) {
	resp, err := c.do(ctx, request{method: method, path: path, body: body, auth: true})
	if err != nil {
		return nil, err
	}

	out := &RawResponse{StatusCode: resp.status, Headers: resp.header, Body: resp.body}

	var jsonData any
	if err := json.Unmarshal(resp.body, &jsonData); err == nil {
		out.IsJSON = true
		out.JSONData = jsonData
	}
	return out, nil
}
