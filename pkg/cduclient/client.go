// Package cduclient is a Go client for the cdusync admin API.
package cduclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is matched by errors.Is for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLoadInProgress is matched by errors.Is when a reload or import is
	// refused because the server is still loading.
	ErrLoadInProgress = errors.New("load in progress")
)

// APIError is a non-2xx response decoded from an RFC 7807 problem body.
type APIError struct {
	StatusCode int          `json:"status"`
	Type       string       `json:"type"`
	Title      string       `json:"title"`
	Detail     string       `json:"detail"`
	Errors     []FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("cdusync: %d %s: %s", e.StatusCode, e.Title, e.Detail)
	for _, fe := range e.Errors {
		msg += fmt.Sprintf("; %s %s", fe.Field, fe.Message)
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrLoadInProgress:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client talks to a running cdusync server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a new client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}, nil
}

// Health checks connectivity.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/api/v1/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Status returns the engine status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.getJSON(ctx, "/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Tree returns the whole entity tree as a backup-shaped JSON document.
func (c *Client) Tree(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/api/v1/tree", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Notifications returns notifications with a sequence number after after.
func (c *Client) Notifications(ctx context.Context, after int64) ([]Notification, error) {
	var body struct {
		Notifications []Notification `json:"notifications"`
	}
	path := "/api/v1/notifications?after=" + strconv.FormatInt(after, 10)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Notifications, nil
}

// Reload asks the server to discard its tree and bulk-load again.
func (c *Client) Reload(ctx context.Context) (*ReloadResult, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/reload", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r ReloadResult
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode reload response: %w", err)
	}
	return &r, nil
}

// Save acknowledges the session's changes.
func (c *Client) Save(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/save", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Export downloads the backup document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/v1/export", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return doc, nil
}

// Import replaces the server's whole dataset with doc. A malformed
// document yields an *APIError carrying the invalid fields.
func (c *Client) Import(ctx context.Context, doc []byte) (*ImportResult, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/import", doc)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode import response: %w", err)
	}
	return &r, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// send issues an authenticated request. Non-2xx responses are returned as
// *APIError with the body already consumed.
func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, apiErr); err != nil {
		apiErr.Detail = strings.TrimSpace(string(data))
	}
	apiErr.StatusCode = resp.StatusCode
	return nil, apiErr
}
