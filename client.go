// Package pitchlens is a typed HTTP client for the pitchlens API.
package pitchlens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 180 * time.Second

// Client talks to a pitchlens API server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the given server base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("pitchlens: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("pitchlens: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c, nil
}

// Health returns the server health report. An unhealthy server responds with
// 503 but still carries a report, so that status is not treated as an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("pitchlens: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("pitchlens: GET /health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthReport{}, parseAPIError(resp)
	}

	var out HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return HealthReport{}, fmt.Errorf("pitchlens: decode response: %w", err)
	}
	return out, nil
}

// Topics lists the knowledge corpus topics.
func (c *Client) Topics(ctx context.Context) ([]TopicInfo, error) {
	var out topicsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/knowledge/topics", nil, &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}

// Search runs a similarity query against the knowledge corpus.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	var out searchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/knowledge/search", req, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// Analyze generates an investment analysis for extracted pitch-deck text.
func (c *Client) Analyze(ctx context.Context, content string) (Analysis, error) {
	var out Analysis
	err := c.do(ctx, http.MethodPost, "/v1/analyze/text", analyzeRequest{Content: content}, &out)
	if err != nil {
		return Analysis{}, err
	}
	return out, nil
}

// Evaluate scores an analysis against the original content.
func (c *Client) Evaluate(ctx context.Context, content, analysis string) (Evaluation, error) {
	var out Evaluation
	err := c.do(ctx, http.MethodPost, "/v1/evaluate",
		evaluateRequest{Content: content, Analysis: analysis}, &out)
	if err != nil {
		return Evaluation{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("pitchlens: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("pitchlens: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pitchlens: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("pitchlens: decode response: %w", err)
		}
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Code != "" {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
