package freeplay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/proctor/internal/config"
)

func testClient(baseURL string) *Client {
	return New(config.Freeplay{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		ProjectID: "proj-123",
		VerifySSL: "true",
	})
}

func TestClient_SearchCompletions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/projects/proj-123/search/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Filters SearchFilter `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "start_time", body.Filters.Field)
		assert.Equal(t, "gte", body.Filters.Operator)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "c1", "start_time": "2024-01-15 10:31:00"},
			{"id": "c2", "completion_metadata": {"start_time": "2024-01-15 10:32:00"}}
		]}`))
	}))
	defer srv.Close()

	search, err := testClient(srv.URL).SearchCompletions(context.Background(), SearchFilter{
		Field:    "start_time",
		Operator: "gte",
		Value:    "2024-01-15 10:30:00",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, search.StatusCode)
	require.Len(t, search.Completions, 2)
	assert.Equal(t, "c1", search.Completions[0]["id"])

	// Nested metadata must decode as a mapping for timestamp reconciliation.
	meta, ok := search.Completions[1]["completion_metadata"].(map[string]interface{})
	require.True(t, ok, "completion_metadata should decode as a map")
	assert.Equal(t, "2024-01-15 10:32:00", meta["start_time"])
}

func TestClient_ListPromptTemplates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/projects/proj-123/prompt-templates", r.URL.Path)
		w.Write([]byte(`{"data": [{"id": "t1", "name": "qa-assistant", "latest_version_id": "v9"}]}`))
	}))
	defer srv.Close()

	templates, err := testClient(srv.URL).ListPromptTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "qa-assistant", templates[0].Name)
	assert.Equal(t, "v9", templates[0].LatestVersionID)
}

func TestClient_GetTemplateVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/projects/proj-123/prompt-templates/t1/versions/v9", r.URL.Path)
		w.Write([]byte(`{"id": "v9", "name": "qa-assistant", "messages": [
			{"role": "system", "content": "Answer questions about {{topic}}."}
		]}`))
	}))
	defer srv.Close()

	version, err := testClient(srv.URL).GetTemplateVersion(context.Background(), "t1", "v9")
	require.NoError(t, err)
	require.Len(t, version.Messages, 1)
	assert.Contains(t, version.Messages[0].Content, "{{topic}}")
}

func TestClient_ListDatasetsAndTestCases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/proj-123/datasets":
			w.Write([]byte(`{"data": [{"id": "d1", "name": "qa-assistant-test-dataset"}]}`))
		case "/api/v2/projects/proj-123/datasets/d1/test-cases":
			w.Write([]byte(`{"data": [{"id": "tc1"}, {"id": "tc2"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	datasets, err := client.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "qa-assistant-test-dataset", datasets[0].Name)

	cases, err := client.ListTestCases(context.Background(), "d1")
	require.NoError(t, err)
	assert.Len(t, cases, 2)
}

func TestClient_TestRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/proj-123/test-runs":
			w.Write([]byte(`{"data": [{"id": "r1", "name": "eval-test-run", "created_at": 1705314600}]}`))
		case "/api/v2/projects/proj-123/test-runs/r1":
			w.Write([]byte(`{"id": "r1", "name": "eval-test-run", "session_count": 4}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	runs, err := client.ListTestRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, float64(1705314600), runs[0].CreatedAt)

	detail, err := client.GetTestRun(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, detail.SessionCount)
}

func TestClient_NonOKStatusBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "project not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListPromptTemplates(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "want *APIError, got %T", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "project not found")
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).ListDatasets(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures must stay plain errors")
}

func TestClient_SkipTLSVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	strict := New(config.Freeplay{BaseURL: srv.URL, APIKey: "k", ProjectID: "p", VerifySSL: "true"})
	_, err := strict.ListDatasets(context.Background())
	require.Error(t, err, "self-signed certificate should fail verification")

	relaxed := New(config.Freeplay{BaseURL: srv.URL, APIKey: "k", ProjectID: "p", VerifySSL: "false"})
	_, err = relaxed.ListDatasets(context.Background())
	require.NoError(t, err)
}
