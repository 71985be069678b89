package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/gridview/internal/ui/metrics"
	"github.com/leapstack-labs/gridview/internal/ui/notifier"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	sessionName = "gridview"
	sessionKey  = "grid_id"
)

// errBadRequest marks intent errors caused by the request itself.
var errBadRequest = errors.New("bad request")

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	registry     *Registry
	source       grid.RecordSource
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates the grid handlers. m may be nil.
func NewHandlers(registry *Registry, src grid.RecordSource, sessionStore sessions.Store, notify *notifier.Notifier, m *metrics.Metrics, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry:     registry,
		source:       src,
		sessionStore: sessionStore,
		notifier:     notify,
		metrics:      m,
		logger:       logger,
		isDev:        isDev,
	}
}

// session returns the caller's grid session, creating one and setting the
// cookie when needed. It must run before any response is written.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*Session, error) {
	// A cookie that fails to decode yields a fresh session.
	sess, _ := h.sessionStore.Get(r, sessionName)
	id, _ := sess.Values[sessionKey].(string)

	s, created := h.registry.Get(id)
	if created {
		sess.Values[sessionKey] = s.ID
		if err := sess.Save(r, w); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		h.logger.Debug("grid session created", "session", s.ID)
	}
	return s, nil
}

// GridPage renders the full page for the caller's session.
func (h *Handlers) GridPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d := newPageData(s)
	if err := AppPage(d, signalsFor(d.View), h.isDev).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GridFragment renders only the grid element.
func (h *Handlers) GridFragment(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GridView(newPageData(s)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GridUpdates is the long-lived SSE endpoint. It sends nothing initially;
// the page is server-rendered. Each change to the session's grid patches
// the grid element.
func (h *Handlers) GridUpdates(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := h.notifier.Subscribe(s.ID)
	defer h.notifier.Unsubscribe(s.ID, updates)
	h.registry.StreamOpened(s)
	defer h.registry.StreamClosed(s)
	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(GridView(newPageData(s))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// intentFunc applies one intent. It reports whether the grid changed.
type intentFunc func(r *http.Request, s *Session, sig Signals) (bool, error)

// intent wraps fn as a datastar action: it reads signals when asked to,
// applies fn and answers with the patched grid.
func (h *Handlers) intent(name string, readSignals bool, fn intentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.session(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Signals must be read before the SSE generator consumes the body.
		var sig Signals
		if readSignals && r.ContentLength != 0 {
			if err := datastar.ReadSignals(r, &sig); err != nil {
				http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
				return
			}
		}

		applied, err := fn(r, s, sig)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, errBadRequest) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		h.metrics.Intent(name, applied)
		h.logger.Debug("grid intent", "intent", name, "applied", applied, "session", s.ID)

		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(GridView(newPageData(s))); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

func badRequest(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, a...))
}

func required(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", badRequest("%s is required", name)
	}
	return v, nil
}

// Sort toggles the sort of ?column. With ?multi=true on a multisort grid
// the column is added to the sort spec.
func (h *Handlers) Sort(r *http.Request, s *Session, _ Signals) (bool, error) {
	column, err := required(r, "column")
	if err != nil {
		return false, err
	}
	multi := r.URL.Query().Get("multi") == "true" && s.Grid.Multisort()
	return s.Grid.ApplySort(column, multi), nil
}

// Filter applies the filter text for ?column, taken from ?text when given
// and from the filters signal otherwise.
func (h *Handlers) Filter(r *http.Request, s *Session, sig Signals) (bool, error) {
	column, err := required(r, "column")
	if err != nil {
		return false, err
	}
	text := sig.Filters[column]
	if q := r.URL.Query(); q.Has("text") {
		text = q.Get("text")
	}
	return s.Grid.ApplyFilter(column, text), nil
}

// Search sets the search bar query from ?column and ?pattern, or from the
// search signals.
func (h *Handlers) Search(r *http.Request, s *Session, sig Signals) (bool, error) {
	column, pattern := sig.SearchColumn, sig.Search
	if q := r.URL.Query(); q.Has("pattern") {
		column, pattern = q.Get("column"), q.Get("pattern")
	}
	return s.Grid.Search(column, pattern), nil
}

// Page moves to ?to (a number, first, last, next or prev) or changes the
// page size to ?size.
func (h *Handlers) Page(r *http.Request, s *Session, _ Signals) (bool, error) {
	q := r.URL.Query()
	if q.Has("size") {
		n, err := strconv.Atoi(q.Get("size"))
		if err != nil || n < 0 {
			return false, badRequest("invalid page size %q", q.Get("size"))
		}
		return s.Grid.SetPageSize(n), nil
	}
	to, err := required(r, "to")
	if err != nil {
		return false, err
	}
	req, ok := grid.ParsePageRequest(to)
	if !ok {
		return false, badRequest("invalid page %q", to)
	}
	return s.Grid.SetPage(req), nil
}

// Select selects ?id, or toggles it with ?multi=true on a multiselect
// grid. ?all selects or clears the page and ?clear empties the selection.
func (h *Handlers) Select(r *http.Request, s *Session, _ Signals) (bool, error) {
	q := r.URL.Query()
	switch {
	case q.Has("all"):
		return s.Grid.SelectAll(q.Get("all") == "true"), nil
	case q.Has("clear"):
		return s.Grid.ClearSelection(), nil
	}
	id, err := required(r, "id")
	if err != nil {
		return false, err
	}
	multi := q.Get("multi") == "true" && s.Grid.Multiselect()
	return s.Grid.ToggleSelect(id, multi), nil
}

// Expand toggles the detail row of ?id.
func (h *Handlers) Expand(r *http.Request, s *Session, _ Signals) (bool, error) {
	id, err := required(r, "id")
	if err != nil {
		return false, err
	}
	return s.Grid.ToggleExpand(id), nil
}

// Activate reports a double click on ?id.
func (h *Handlers) Activate(r *http.Request, s *Session, _ Signals) (bool, error) {
	id, err := required(r, "id")
	if err != nil {
		return false, err
	}
	return s.Grid.Activate(id), nil
}

// Reload fetches the shared source again. Every session sees the result.
func (h *Handlers) Reload(r *http.Request, _ *Session, _ Signals) (bool, error) {
	if err := h.source.Fetch(context.WithoutCancel(r.Context())); err != nil {
		return false, fmt.Errorf("failed to reload: %w", err)
	}
	return true, nil
}
