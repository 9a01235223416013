package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sfhttp "github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	token     string
	err       error
	refreshed atomic.Int32
	onRefresh func() string
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	m.refreshed.Add(1)

	if m.onRefresh != nil {
		m.token = m.onRefresh()
	}

	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/Nodes", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Len(t, request.Header.Get("X-Request-ID"), 36)

			_, _ = writer.Write([]byte(`{"ContinuationToken":"","Items":[{"Name":"_Node_0"}]}`))
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, &MockTokenManager{token: "test-token"})

		resp, err := client.Do(context.Background(), &sfhttp.Request{Method: "GET", Path: "/Nodes"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var page sf.PagedList[sf.NodeInfo]

		err = json.Unmarshal(resp.Body, &page)
		require.NoError(t, err)
		assert.Equal(t, "_Node_0", page.Items[0].Name)
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/Applications", request.URL.Path)
			assert.Equal(t, "ContinuationToken=app%2B2&api-version=6.1", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL+"/", nil)

		resp, err := client.Get(context.Background(), "/Applications", url.Values{
			"api-version":       []string{"6.1"},
			"ContinuationToken": []string{"app+2"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"Error":{"Code":"FABRIC_E_APPLICATION_NOT_FOUND","Message":"Application not found"}}`))
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/Applications/missing", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		errResp := &sf.ResponseError{}
		ok := errors.As(err, &errResp)
		require.True(t, ok)
		assert.Equal(t, sf.ErrorCodeApplicationNotFound, errResp.Err.Code)
		assert.True(t, sf.IsNotFound(err))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "sfctl-test", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, nil, sfhttp.WithUserAgent("sfctl-test"))

		resp, err := client.Do(context.Background(), &sfhttp.Request{
			Method:  "GET",
			Path:    "/Nodes",
			Headers: map[string]string{"X-Custom-Header": "custom-value"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(`{"Version":"10.1"}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := sfhttp.NewClient(server.URL, nil, sfhttp.WithLogger(logger), sfhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/$/GetClusterVersion", nil)
		require.NoError(t, err)

		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("token error", func(t *testing.T) {
		t.Parallel()

		errNoToken := errors.New("no token")
		client := sfhttp.NewClient("http://127.0.0.1:1", &MockTokenManager{err: errNoToken})

		_, err := client.Get(context.Background(), "/Nodes", nil)
		require.ErrorIs(t, err, errNoToken)
	})

	t.Run("refreshes token once on 401", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get("Authorization") != "Bearer fresh" {
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tokens := &MockTokenManager{token: "stale", onRefresh: func() string { return "fresh" }}
		client := sfhttp.NewClient(server.URL, tokens)

		resp, err := client.Get(context.Background(), "/Nodes", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(1), tokens.refreshed.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := sfhttp.NewClient(server.URL, nil,
			sfhttp.WithLogger(logger),
			sfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "retrying request", logger.logs[0]["msg"])
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, nil, sfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("gives up and returns the last response", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte(`{"Error":{"Code":"FABRIC_E_TIMEOUT","Message":"busy"}}`))
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, nil, sfhttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
		assert.True(t, sf.IsTimeout(err))
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := sfhttp.NewClient(server.URL, nil, sfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

func TestClient_Cache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits.Add(1)
		_, _ = writer.Write([]byte(`{"Version":"10.1.1"}`))
	}))
	defer server.Close()

	client := sfhttp.NewClient(server.URL, nil, sfhttp.WithCache(sf.NewMemoryCache(10), time.Minute))

	var first, second sf.ClusterVersion

	require.NoError(t, client.GetJSON(context.Background(), "/$/GetClusterVersion", nil, &first))
	require.NoError(t, client.GetJSON(context.Background(), "/$/GetClusterVersion", nil, &second))

	assert.Equal(t, "10.1.1", second.Version)
	assert.Equal(t, int32(1), hits.Load())

	resp, err := client.Get(context.Background(), "/$/GetClusterVersion", nil)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
}
