// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	gridFeature "github.com/leapstack-labs/gridview/internal/ui/features/grid"
	"github.com/leapstack-labs/gridview/internal/ui/metrics"
	"github.com/leapstack-labs/gridview/internal/ui/notifier"
	"github.com/leapstack-labs/gridview/internal/ui/resources"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/starfederation/datastar-go/datastar"
)

// SetupRoutes configures all routes for the UI server. m may be nil, in
// which case /metrics is not served.
func SetupRoutes(
	router chi.Router,
	registry *gridFeature.Registry,
	src grid.RecordSource,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	isDev bool,
) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	handlers := gridFeature.NewHandlers(registry, src, sessionStore, notify, m, logger, isDev)
	return gridFeature.SetupRoutes(router, handlers)
}

// setupReload serves /reload, which reloads connected pages once after a
// restart and again on every hit to /hotreload.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Post("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
