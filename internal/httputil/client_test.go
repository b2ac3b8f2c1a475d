// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

func TestDoWithRetryAttempts(t *testing.T) {
	tests := []struct {
		name       string
		throttled  int32
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{"succeeds after two 429s", 2, 5, http.StatusOK, 3},
		{"first attempt succeeds", 0, 5, http.StatusOK, 1},
		{"default retries exhausted", 100, 0, http.StatusTooManyRequests, 4},
		{"explicit retries exhausted", 100, 1, http.StatusTooManyRequests, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if atomic.AddInt32(&calls, 1) <= tt.throttled {
					w.WriteHeader(http.StatusTooManyRequests)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer ts.Close()

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_RewindsBody(t *testing.T) {
	var calls int32
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(`{"q":"espresso"}`))
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, 2)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{`{"q":"espresso"}`, `{"q":"espresso"}`}, bodies)
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientGetJSONSetsUserAgent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "keyword-engine/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "v", r.Header.Get("X-Extra"))
		json.NewEncoder(w).Encode([]string{"a", "b"})
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second, UserAgent: "keyword-engine/test"}, 0)
	var out []string
	require.NoError(t, c.GetJSON(context.Background(), "test", ts.URL, map[string]string{"X-Extra": "v"}, &out))
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Nil(t, c.Limiter)
}

func TestClientPostJSONStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{}, 100)
	require.NotNil(t, c.Limiter)

	var out map[string]any
	err := c.PostJSON(context.Background(), "embed", ts.URL, nil, map[string]string{"k": "v"}, &out)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.True(t, statusErr.Retryable())
	assert.Contains(t, err.Error(), "upstream down")
}

func TestStatusErrorRetryable(t *testing.T) {
	assert.False(t, (&StatusError{StatusCode: http.StatusBadRequest}).Retryable())
	assert.False(t, (&StatusError{StatusCode: http.StatusUnauthorized}).Retryable())
	assert.True(t, (&StatusError{StatusCode: http.StatusServiceUnavailable}).Retryable())
}
