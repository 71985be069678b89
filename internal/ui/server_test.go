package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gridview/internal/testutil"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

func newTestServer(t *testing.T, cfg Config) (*Server, http.Handler) {
	t.Helper()
	if cfg.Source == nil {
		cfg.Source = grid.NewMemorySource(testutil.Users(8)...)
	}
	cfg.Columns = testutil.UserColumns()
	cfg.Logger = testutil.NewTestLogger(t)

	s := NewServer(cfg)
	h, err := s.Handler()
	require.NoError(t, err)
	return s, h
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "page",
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   "user 08",
		},
		{
			name:       "stylesheet",
			path:       "/static/gridview.css",
			wantStatus: http.StatusOK,
			wantBody:   ".grid",
		},
		{
			name:       "metrics enabled",
			cfg:        Config{Metrics: true},
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "gridview_sessions",
		},
		{
			name:       "metrics disabled",
			path:       "/metrics",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "russian labels",
			cfg:        Config{Options: []grid.Option{grid.WithLang("ru")}},
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   `<html lang="ru">`,
		},
		{
			name:       "hot reload in dev mode",
			cfg:        Config{IsDev: true},
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   "@get('/reload')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, tt.cfg)

			rec := get(h, tt.path)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServer_SessionsGauge(t *testing.T) {
	_, h := newTestServer(t, Config{Metrics: true, SessionSecret: "0123456789abcdef0123456789abcdef"})

	get(h, "/")
	get(h, "/")

	body := get(h, "/metrics").Body.String()
	assert.Contains(t, body, "gridview_sessions 2", "each cookieless request opens a session")
	assert.Contains(t, body, `gridview_http_request_duration_seconds_count{method="GET",route="/",status="200"} 2`)
}

func TestServer_ObserveSource(t *testing.T) {
	src := grid.NewMemorySource(testutil.Users(3)...)
	s, h := newTestServer(t, Config{Source: src, Metrics: true})

	unsubscribe := src.Subscribe(s.observeSource)
	defer unsubscribe()

	require.NoError(t, grid.FetchAndWait(context.Background(), src))
	src.SetLoader(func(context.Context) ([]grid.Record, error) { return nil, errors.New("gone") })
	require.Error(t, grid.FetchAndWait(context.Background(), src))

	body := get(h, "/metrics").Body.String()
	assert.Contains(t, body, `gridview_source_fetches_total{result="ok"} 1`)
	assert.Contains(t, body, `gridview_source_fetches_total{result="error"} 1`)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	watched := make(chan struct{})
	s, _ := newTestServer(t, Config{
		Port: 0,
		Watch: func(ctx context.Context) error {
			close(watched)
			<-ctx.Done()
			return ctx.Err()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	<-watched
	cancel()
	assert.NoError(t, <-done)
}
