// Package session is the client side of the API: an HTTP client with
// retries and a Keeper that holds a signed-in session and refreshes it
// before it expires.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("api: %d %s", e.Status, e.Message) }

// Client calls the API under base (scheme, host and API prefix).
type Client struct {
	base    string
	anonKey string
	http    *httpclient.Client
}

// NewClient builds a client that retries transport errors and 5xx answers
// with a constant backoff.
func NewClient(base, anonKey string, retries int, timeout time.Duration) *Client {
	backoff := heimdall.NewConstantBackoff(200*time.Millisecond, 5*time.Millisecond)
	hc := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
		httpclient.WithRetryCount(retries),
	)
	return &Client{base: strings.TrimRight(base, "/"), anonKey: anonKey, http: hc}
}

// Do sends body as JSON and decodes a JSON answer into out when out is not
// nil. An empty token authenticates with the anon key.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.DoRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// DoRaw is Do without decoding, for CSV and HTML answers.
func (c *Client) DoRaw(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return raw, apiErr
	}
	return raw, nil
}
