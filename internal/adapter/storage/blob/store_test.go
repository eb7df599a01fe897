package blob

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/config"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// fakeS3 answers HEAD object requests for a single bucket.
func fakeS3(t *testing.T, objects map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/uploads/")
		body, ok := objects[key]
		if r.Method != http.MethodHead || !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("Last-Modified", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(http.TimeFormat))
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStore(t *testing.T, endpoint string, timeout time.Duration) *Store {
	t.Helper()
	s, err := New(config.StorageConfig{
		Endpoint:      strings.TrimPrefix(endpoint, "http://"),
		AccessKey:     "access",
		SecretKey:     "secret",
		Bucket:        "uploads",
		Region:        "us-east-1",
		LookupTimeout: timeout,
	})
	require.NoError(t, err)
	return s
}

func TestStore_Stat_Found(t *testing.T) {
	t.Parallel()
	srv := fakeS3(t, map[string]string{"app-1/xray.pdf": "0123456789"})
	s := newStore(t, srv.URL, time.Second)

	meta, err := s.Stat(context.Background(), "app-1/xray.pdf")
	require.NoError(t, err)
	assert.Equal(t, "app-1/xray.pdf", meta.Ref)
	assert.EqualValues(t, 10, meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)
}

func TestStore_Stat_NotFound(t *testing.T) {
	t.Parallel()
	srv := fakeS3(t, nil)
	s := newStore(t, srv.URL, time.Second)

	_, err := s.Stat(context.Background(), "app-1/missing.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)

	var re *domain.ReviewError
	require.True(t, errors.As(err, &re))
	assert.False(t, re.Retryable())
}

func TestStore_Stat_Unavailable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	s := newStore(t, endpoint, 100*time.Millisecond)

	_, err := s.Stat(context.Background(), "app-1/xray.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	var re *domain.ReviewError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Retryable())
}
