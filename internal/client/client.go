// Package client talks to a running jungse server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/rules"
)

// Client is an HTTP client for the jungse API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client. apiKey is only needed for rule table
// writes and reloads.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status    int
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (status %d, %s): %s", e.Status, e.Code, e.Message)
}

// TranslateResult mirrors the translate response.
type TranslateResult struct {
	Output  string               `json:"output"`
	Applied []engine.Application `json:"applied"`
	ETag    string               `json:"etag"`
}

// RuleTable mirrors GET /v1/rules.
type RuleTable struct {
	ID        string       `json:"id"`
	ETag      string       `json:"etag"`
	Origin    string       `json:"origin"`
	LoadedAt  time.Time    `json:"loadedAt"`
	RuleCount int          `json:"ruleCount"`
	Rules     []rules.Rule `json:"rules"`
}

// Warning is one lint finding reported by a load.
type Warning struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoadResult mirrors the answer to a push or reload.
type LoadResult struct {
	RuleCount int       `json:"ruleCount"`
	ETag      string    `json:"etag"`
	Origin    string    `json:"origin"`
	Warnings  []Warning `json:"warnings"`
}

// Translate rewrites text on the server.
func (c *Client) Translate(ctx context.Context, text string, debug bool) (*TranslateResult, error) {
	body, err := json.Marshal(map[string]any{"text": text, "debug": debug})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	var out TranslateResult
	if err := c.do(ctx, http.MethodPost, "/v1/translate", "application/json", bytes.NewReader(body), false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rules fetches the table currently in force.
func (c *Client) Rules(ctx context.Context) (*RuleTable, error) {
	var out RuleTable
	if err := c.do(ctx, http.MethodGet, "/v1/rules", "", nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PushRules replaces the server's table with csv.
func (c *Client) PushRules(ctx context.Context, csv string) (*LoadResult, error) {
	var out LoadResult
	if err := c.do(ctx, http.MethodPut, "/v1/rules", "text/csv; charset=utf-8", strings.NewReader(csv), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reload asks the server to re-read its configured source.
func (c *Client) Reload(ctx context.Context) (*LoadResult, error) {
	var out LoadResult
	if err := c.do(ctx, http.MethodPost, "/v1/rules/reload", "", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, admin bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		if c.APIKey == "" {
			return fmt.Errorf("%s %s requires an API key", method, path)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
