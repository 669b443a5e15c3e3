package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens map[string]domain.Viewer

func (s stubTokens) Parse(token string) (domain.Viewer, error) {
	viewer, ok := s[token]
	if !ok {
		return domain.Viewer{}, domain.ErrUnauthenticated
	}
	return viewer, nil
}

type stubAccounts map[string]domain.Viewer

func (s stubAccounts) Lookup(id string) (domain.Viewer, bool) {
	viewer, ok := s[id]
	return viewer, ok
}

func echoViewer(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.GetViewerFromContext(r.Context())
		require.NoError(t, err)
		w.Write([]byte(viewer.ID + "/" + string(viewer.Category)))
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := stubTokens{
		"good":    {ID: "officer_road", Role: domain.RoleOfficer, Category: domain.CategoryRoad},
		"removed": {ID: "officer_gone", Role: domain.RoleOfficer, Category: domain.CategoryLight},
	}
	accounts := stubAccounts{
		// Category changed since the token was issued.
		"officer_road": {ID: "officer_road", Role: domain.RoleOfficer, Category: domain.CategoryDrain},
	}
	h := middleware.NewAuthMiddleware(tokens, accounts).Authenticate(echoViewer(t))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"removed account", "Bearer removed", http.StatusUnauthorized, ""},
		{"valid", "Bearer good", http.StatusOK, "officer_road/drain"},
		{"lowercase scheme", "bearer good", http.StatusOK, "officer_road/drain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/issues", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGetViewerFromContext_Missing(t *testing.T) {
	_, err := middleware.GetViewerFromContext(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

type countingLimiter struct {
	limit int
	hits  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.hits[key]++
	if l.hits[key] > l.limit {
		return false, 90 * time.Second, nil
	}
	return true, 0, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2, hits: map[string]int{}}
	h := middleware.RateLimit(limiter, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/issues", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5001").Code)

	rec := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, send("10.0.0.2:5000").Code)
}

func TestRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	limiter := &countingLimiter{limit: 1, hits: map[string]int{}}
	h := middleware.RateLimit(limiter, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/issues", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.2"))
	assert.Equal(t, 2, limiter.hits["10.0.0.9"])
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	h := middleware.RateLimit(limiter, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/issues", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4242"
	assert.Equal(t, "192.0.2.7", middleware.ClientIP(req, false))

	req.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	assert.Equal(t, "192.0.2.7", middleware.ClientIP(req, false))
	assert.Equal(t, "203.0.113.5", middleware.ClientIP(req, true))
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := middleware.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	key := "panchayat:test:192.0.2.44"
	require.NoError(t, client.Del(ctx, key).Err())
	defer client.Del(ctx, key)

	limiter := middleware.NewRedisLimiter(client, "panchayat:test:", 1, time.Minute)

	allowed, _, err := limiter.Allow(ctx, "192.0.2.44")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, retryAfter, err := limiter.Allow(ctx, "192.0.2.44")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Positive(t, retryAfter)

	count, err := client.Get(ctx, key).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
