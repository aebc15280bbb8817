// Package storeclient is the SDK every storefront surface talks to the
// orders service through. It owns the session-resilience protocol: each
// authenticated call survives an expiring credential with exactly one forced
// refresh-and-retry before the session is declared dead.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// do runs one authenticated request under the resilience protocol:
//
//  1. no session -> ErrUnauthenticated, no network call;
//  2. a 401 triggers exactly one forced refresh and one retry;
//  3. a second 401 (or a failed refresh) clears the session and surfaces
//     ErrSessionExpired — never a third attempt;
//  4. everything else is returned verbatim as *APIError.
//
// Mutating operations are never blindly retried: outside the auth case a
// repeat could duplicate the side effect.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrUnauthenticated
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	status, respBody, err := c.attempt(ctx, method, path, token, body)
	if err != nil {
		return nil, &APIError{Err: err}
	}

	if status == http.StatusUnauthorized {
		token, err = c.tokens.ForceRefresh(ctx)
		if err != nil {
			c.tokens.Invalidate()
			return nil, ErrSessionExpired
		}

		status, respBody, err = c.attempt(ctx, method, path, token, body)
		if err != nil {
			return nil, &APIError{Err: err}
		}
		if status == http.StatusUnauthorized {
			c.tokens.Invalidate()
			return nil, ErrSessionExpired
		}
	}

	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Body: string(respBody)}
	}
	return respBody, nil
}

func (c *Client) attempt(ctx context.Context, method, path, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
