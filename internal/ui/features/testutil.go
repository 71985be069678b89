// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/gridview/internal/testutil"
	"github.com/leapstack-labs/gridview/internal/ui/metrics"
	"github.com/leapstack-labs/gridview/internal/ui/notifier"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Source       *grid.MemorySource
	Columns      []grid.Column
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Metrics      *metrics.Metrics
}

// SetupTestFixture creates a fixture over n user records
// (see testutil.Users) with the user column model.
func SetupTestFixture(n int) *TestFixture {
	return &TestFixture{
		Source:       grid.NewMemorySource(testutil.Users(n)...),
		Columns:      testutil.UserColumns(),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Metrics:      metrics.New(),
	}
}

// Factory returns a function building grids attached to the fixture source.
func (f *TestFixture) Factory(opts ...grid.Option) func() *grid.Grid {
	return func() *grid.Grid {
		g := grid.New(f.Columns, opts...)
		g.Attach(f.Source)
		return g
	}
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// Cookies copies the cookies set on a response onto req, the way a browser
// would on its next request.
func Cookies(req *http.Request, resp *http.Response) *http.Request {
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	return req
}
