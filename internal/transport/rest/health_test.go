package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func checks(db, redis, storage error) []Check {
	return []Check{
		{Name: "database", Ping: ping(db), Critical: true},
		{Name: "redis", Ping: ping(redis)},
		{Name: "storage", Ping: ping(storage)},
	}
}

func serveHealth(t *testing.T, h http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.False(t, resp.Timestamp.IsZero())
	return rec.Code, resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler("v1", checks(errors.New("down"), nil, nil)...)

	code, resp := serveHealth(t, h.Live, "/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	t.Parallel()
	refused := errors.New("connection refused")

	tests := []struct {
		name       string
		db, redis  error
		storage    error
		wantCode   int
		wantStatus string
	}{
		{"all up", nil, nil, nil, http.StatusOK, "ok"},
		{"database down", refused, nil, nil, http.StatusServiceUnavailable, "down"},
		{"redis down", nil, refused, nil, http.StatusOK, "ok"},
		{"storage down", nil, nil, refused, http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHealthHandler("v1", checks(tt.db, tt.redis, tt.storage)...)

			code, resp := serveHealth(t, h.Ready, "/ready")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler("1.4.0 (commit: abc)", checks(nil, nil, nil)...)

	code, resp := serveHealth(t, h.Health, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.4.0 (commit: abc)", resp.Version)
	require.Len(t, resp.Components, 3)
	for name, c := range resp.Components {
		assert.Equal(t, "ok", c.Status, name)
		assert.NotEmpty(t, c.Latency, name)
		assert.Empty(t, c.Error, name)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler("v1", checks(errors.New("connection refused"), errors.New("timeout"), nil)...)

	code, resp := serveHealth(t, h.Health, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", resp.Status)
	assert.Equal(t, CompStatus{Status: "down", Error: "connection refused"}, resp.Components["database"])
	assert.Equal(t, "down", resp.Components["redis"].Status)
	assert.Equal(t, "ok", resp.Components["storage"].Status)
}

func TestHealth_OptionalDependencyDegrades(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler("v1", checks(nil, nil, errors.New("bucket missing"))...)

	code, resp := serveHealth(t, h.Health, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Components["storage"].Status)
	assert.Equal(t, "bucket missing", resp.Components["storage"].Error)
}

func TestHealth_ProbeHonoursTimeout(t *testing.T) {
	t.Parallel()
	slow := Check{Name: "database", Critical: true, Ping: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	h := NewHealthHandler("v1", slow)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil).WithContext(ctx))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
