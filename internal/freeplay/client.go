// Package freeplay is a minimal read-only client for the Freeplay REST API,
// covering exactly the endpoints the verification checks consult. There is
// no retry or rate-limit logic; every call is a single bounded round trip.
package freeplay

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/harrison/proctor/internal/config"
)

// requestTimeout bounds every platform round trip.
const requestTimeout = 10 * time.Second

// APIError is a non-2xx platform response. Transport failures stay plain
// errors; callers distinguish the two with errors.As.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("freeplay: %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("freeplay: %s", e.Status)
}

// Client issues typed read requests against one Freeplay project.
type Client struct {
	baseURL    string
	apiKey     string
	projectID  string
	httpClient *http.Client
}

// New builds a client from platform settings. TLS verification is relaxed
// only when the configuration asks for it (local development against
// self-signed certificates).
func New(cfg config.Freeplay) *Client {
	transport := http.DefaultTransport
	if cfg.SkipTLSVerify() {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

// SearchCompletions POSTs a best-effort server-side filter and returns the
// raw completion records the platform answered with.
func (c *Client) SearchCompletions(ctx context.Context, filter SearchFilter) (*CompletionSearch, error) {
	var payload struct {
		Data []Completion `json:"data"`
	}
	body := map[string]SearchFilter{"filters": filter}
	status, err := c.do(ctx, http.MethodPost, c.projectPath("/search/completions"), body, &payload)
	if err != nil {
		return nil, err
	}
	return &CompletionSearch{StatusCode: status, Completions: payload.Data}, nil
}

// ListPromptTemplates returns every prompt template in the project.
func (c *Client) ListPromptTemplates(ctx context.Context) ([]PromptTemplate, error) {
	var payload struct {
		Data []PromptTemplate `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.projectPath("/prompt-templates"), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// GetTemplateVersion fetches the message content of one template version.
func (c *Client) GetTemplateVersion(ctx context.Context, templateID, versionID string) (*TemplateVersion, error) {
	var payload TemplateVersion
	path := c.projectPath("/prompt-templates/" + templateID + "/versions/" + versionID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ListDatasets returns every dataset in the project.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var payload struct {
		Data []Dataset `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.projectPath("/datasets"), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// ListTestCases returns the test cases of one dataset.
func (c *Client) ListTestCases(ctx context.Context, datasetID string) ([]TestCase, error) {
	var payload struct {
		Data []TestCase `json:"data"`
	}
	path := c.projectPath("/datasets/" + datasetID + "/test-cases")
	if _, err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// ListTestRuns returns every test run in the project.
func (c *Client) ListTestRuns(ctx context.Context) ([]TestRun, error) {
	var payload struct {
		Data []TestRun `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.projectPath("/test-runs"), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// GetTestRun fetches the detail record of one test run.
func (c *Client) GetTestRun(ctx context.Context, testRunID string) (*TestRunDetail, error) {
	var payload TestRunDetail
	if _, err := c.do(ctx, http.MethodGet, c.projectPath("/test-runs/"+testRunID), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) projectPath(suffix string) string {
	return "/api/v2/projects/" + c.projectID + suffix
}

// do performs one request. Non-2xx responses become *APIError with a bounded
// capture of the response body; 2xx responses decode into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
