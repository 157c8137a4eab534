package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/service"
)

// fastRetries keeps test retries from sleeping.
func fastRetries(c *Client) {
	c.retryOpts = service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "valid http URL", url: "http://localhost:8000"},
		{name: "trailing slash trimmed", url: "http://localhost:8000/"},
		{name: "empty URL", url: "", wantErr: common.ErrMissingConfig},
		{name: "whitespace URL", url: "   ", wantErr: common.ErrMissingConfig},
		{name: "missing scheme", url: "localhost:8000", wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8000", client.baseURL)
		})
	}
}

func TestClient_StartAnalysis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var req struct {
			Path      string `json:"path"`
			Recursive bool   `json:"recursive"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/home/sam/Downloads", req.Path)
		assert.True(t, req.Recursive)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"type\":\"started\",\"total\":0}\n"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	stream, err := client.StartAnalysis(context.Background(), "/home/sam/Downloads", true)
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	line, err := bufio.NewReader(stream).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"type":"started"`)
}

func TestClient_StartAnalysisRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("data: {\"type\":\"started\",\"total\":0}\n"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	fastRetries(client)

	stream, err := client.StartAnalysis(context.Background(), "/x", false)
	require.NoError(t, err)
	_ = stream.Close()

	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_StartAnalysisDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"path does not exist"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	fastRetries(client)

	_, err = client.StartAnalysis(context.Background(), "/nope", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MoveFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/operations/move", r.URL.Path)

		var req service.MoveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/x", req.BasePath)
		require.Len(t, req.Items, 2)

		_ = json.NewEncoder(w).Encode(service.MoveResponse{
			Success: false,
			Moved:   1,
			Errors: []model.MoveError{
				{Path: "/x/b.bat", Reason: "permission denied"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	resp, err := client.MoveFiles(context.Background(), service.MoveRequest{
		BasePath: "/x",
		Items: []model.MoveItem{
			{Path: "/x/a.ps1", TargetFolder: "Scripts"},
			{Path: "/x/b.bat", TargetFolder: "Scripts"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Moved)
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "permission denied", resp.Errors[0].Reason)
}

func TestClient_MoveFilesIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	fastRetries(client)

	_, err = client.MoveFiles(context.Background(), service.MoveRequest{BasePath: "/x"})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analysis/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","model":"category-v2","ready":true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	ready, detail, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, "ok (category-v2)", detail)
}

func TestClient_HealthBackendDown(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	_, _, err = client.Health(context.Background())
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
}
