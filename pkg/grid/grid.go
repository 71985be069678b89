package grid

import (
	"regexp"
	"slices"
	"sync"
)

// ShowAll is the page size that puts every record on one page.
const ShowAll = 0

// =============================================================================
// Options
// =============================================================================

type options struct {
	pageSize    int
	rowList     []int
	multiselect bool
	multisort   bool
	subgrid     bool
	accordion   bool
	lang        string
}

// Option configures a Grid.
type Option func(*options)

// WithPageSize sets the initial page size. ShowAll disables paging.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.pageSize = n
		}
	}
}

// WithRowList sets the page sizes offered to the user.
func WithRowList(sizes ...int) Option {
	return func(o *options) {
		o.rowList = nil
		for _, n := range sizes {
			if n >= 0 && !slices.Contains(o.rowList, n) {
				o.rowList = append(o.rowList, n)
			}
		}
	}
}

// WithMultiselect enables checkbox selection and SelectAll.
func WithMultiselect() Option {
	return func(o *options) { o.multiselect = true }
}

// WithMultisort makes multi-key sorting the default renderers offer.
func WithMultisort() Option {
	return func(o *options) { o.multisort = true }
}

// WithSubgrid enables per-row detail expansion. In accordion mode at most
// one row is expanded at a time.
func WithSubgrid(accordion bool) Option {
	return func(o *options) {
		o.subgrid = true
		o.accordion = accordion
	}
}

// WithLang selects the label dictionary.
func WithLang(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// =============================================================================
// Grid
// =============================================================================

// SortKey is one entry of the sort spec.
type SortKey struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Filter is one stored column filter.
type Filter struct {
	Column string `json:"column"`
	Text   string `json:"text"`
}

// SearchSpec is the active search bar query.
type SearchSpec struct {
	Column  string `json:"column"`
	Pattern string `json:"pattern"`
}

// Grid is the view state over a RecordSource: paging, sorting, filtering,
// search, selection and row expansion. It is safe for concurrent use.
// Observers are called after the internal lock is released.
type Grid struct {
	mu   sync.Mutex
	opts options

	columns []Column
	byName  map[string]int

	source RecordSource
	cancel func()

	records []Record
	index   map[string]int

	page          int
	pageSize      int
	filteredCount int
	sortKeys      []SortKey
	filters       []Filter
	search        *SearchSpec
	searchRe      *regexp.Regexp
	selected      map[string]struct{}
	expanded      map[string]struct{}
	loading       bool

	obs observers
}

// New creates a grid over the given column model.
func New(columns []Column, opts ...Option) *Grid {
	o := options{pageSize: ShowAll}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Grid{
		opts:     o,
		columns:  make([]Column, 0, len(columns)),
		byName:   make(map[string]int, len(columns)),
		pageSize: o.pageSize,
	}
	for _, c := range columns {
		if c.Name == "" {
			continue
		}
		if _, dup := g.byName[c.Name]; dup {
			continue
		}
		c.SortOrder = Unsorted
		g.byName[c.Name] = len(g.columns)
		g.columns = append(g.columns, c)
	}
	g.resetState()
	return g
}

func (g *Grid) resetState() {
	g.records = nil
	g.index = make(map[string]int)
	g.page = 1
	g.filteredCount = 0
	g.sortKeys = nil
	g.filters = nil
	g.search = nil
	g.searchRe = nil
	g.selected = make(map[string]struct{})
	g.expanded = make(map[string]struct{})
	g.loading = false
	for i := range g.columns {
		g.columns[i].SortOrder = Unsorted
	}
}

// Subscribe registers fn for grid events and returns a cancel function.
func (g *Grid) Subscribe(fn func(Event)) func() {
	return g.obs.add(fn)
}

// update runs fn under the grid lock and dispatches the events it
// collected once the lock is released.
func (g *Grid) update(fn func(b *batch) bool) bool {
	var b batch
	g.mu.Lock()
	changed := fn(&b)
	g.mu.Unlock()
	g.obs.dispatch(b.events)
	return changed
}

// =============================================================================
// Source lifecycle
// =============================================================================

// Attach subscribes to src and derives state from its current records.
// A previously attached source is detached first.
func (g *Grid) Attach(src RecordSource) {
	g.Detach()

	cancel := src.Subscribe(func(ev SourceEvent) {
		g.handleSource(src, ev)
	})

	g.update(func(b *batch) bool {
		before := g.counts()
		g.source = src
		g.cancel = cancel
		g.setRecords(src.Records())
		g.settle(b, before, false)
		return true
	})
}

// Detach unsubscribes from the current source and discards all state.
func (g *Grid) Detach() {
	g.mu.Lock()
	cancel := g.cancel
	g.source = nil
	g.cancel = nil
	g.resetState()
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Source returns the attached source, or nil.
func (g *Grid) Source() RecordSource {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source
}

func (g *Grid) handleSource(src RecordSource, ev SourceEvent) {
	switch ev.Kind {
	case SourceRequest:
		g.update(func(b *batch) bool {
			if g.source != src {
				return false
			}
			before := g.counts()
			if !g.loading {
				g.loading = true
				b.add(LoadingChanged{Loading: true})
			}
			g.filters = nil
			g.search = nil
			g.searchRe = nil
			g.clearSort()
			g.settle(b, before, false)
			return true
		})

	case SourceError:
		g.update(func(b *batch) bool {
			if g.source != src {
				return false
			}
			if g.loading {
				g.loading = false
				b.add(LoadingChanged{Loading: false})
			}
			b.add(FetchFailed{Err: &FetchError{Err: ev.Err}})
			return true
		})

	case SourceWriteError:
		g.update(func(b *batch) bool {
			if g.source != src {
				return false
			}
			b.add(WriteFailed{Err: ev.Err})
			return true
		})

	case SourceSync, SourceReset:
		records := ev.Records
		g.update(func(b *batch) bool {
			if g.source != src {
				return false
			}
			g.refresh(b, records)
			if g.loading {
				g.loading = false
				b.add(LoadingChanged{Loading: false})
			}
			return true
		})

	default:
		records := src.Records()
		g.update(func(b *batch) bool {
			if g.source != src {
				return false
			}
			g.refresh(b, records)
			return true
		})
	}
}

// RecordsAdded merges records into the grid's collection, replacing
// records with the same id.
func (g *Grid) RecordsAdded(records []Record) {
	g.update(func(b *batch) bool {
		merged := slices.Clone(g.records)
		for _, r := range records {
			if r.ID == "" {
				continue
			}
			if i, ok := g.index[r.ID]; ok {
				merged[i] = r
				continue
			}
			merged = append(merged, r)
		}
		g.refresh(b, merged)
		return true
	})
}

// RecordsRemoved drops records by id, pruning selection and expansion.
func (g *Grid) RecordsRemoved(ids []string) {
	g.update(func(b *batch) bool {
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		kept := make([]Record, 0, len(g.records))
		for _, r := range g.records {
			if _, ok := drop[r.ID]; !ok {
				kept = append(kept, r)
			}
		}
		g.refresh(b, kept)
		return true
	})
}

// Reset replaces the grid's collection.
func (g *Grid) Reset(records []Record) {
	g.update(func(b *batch) bool {
		g.refresh(b, records)
		return true
	})
}

func (g *Grid) refresh(b *batch, records []Record) {
	before := g.counts()
	g.setRecords(records)
	g.prune(b)
	g.settle(b, before, false)
}

func (g *Grid) setRecords(records []Record) {
	g.records = make([]Record, 0, len(records))
	g.index = make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if i, ok := g.index[r.ID]; ok {
			g.records[i] = r
			continue
		}
		g.index[r.ID] = len(g.records)
		g.records = append(g.records, r)
	}
}

// prune drops selected and expanded ids that are no longer present.
func (g *Grid) prune(b *batch) {
	selChanged := false
	for id := range g.selected {
		if _, ok := g.index[id]; !ok {
			delete(g.selected, id)
			selChanged = true
		}
	}
	var collapsed []string
	for id := range g.expanded {
		if _, ok := g.index[id]; !ok {
			delete(g.expanded, id)
			collapsed = append(collapsed, id)
		}
	}
	slices.Sort(collapsed)
	for _, id := range collapsed {
		b.add(ExpansionChanged{ID: id, Expanded: false})
	}
	if selChanged {
		b.add(SelectionChanged{Selected: g.selectedIDs()})
	}
}

type counts struct {
	filtered  int
	page      int
	pageCount int
}

func (g *Grid) counts() counts {
	return counts{filtered: g.filteredCount, page: g.page, pageCount: g.pageCount()}
}

// settle recomputes the filtered count, clamps the page and reports what
// moved since before.
func (g *Grid) settle(b *batch, before counts, forceFiltered bool) {
	g.filteredCount = len(g.filtered())
	pc := g.pageCount()
	g.page = min(max(g.page, 1), pc)

	if forceFiltered || g.filteredCount != before.filtered {
		b.add(Filtered{FilteredCount: g.filteredCount})
	}
	if g.page != before.page || pc != before.pageCount {
		b.add(PageChanged{Page: g.page, PageCount: pc, PageSize: g.pageSize})
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Columns returns a copy of the column model including sort orders.
func (g *Grid) Columns() []Column {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.columns)
}

// VisibleColumns returns the columns that are not hidden.
func (g *Grid) VisibleColumns() []Column {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visibleColumns()
}

func (g *Grid) visibleColumns() []Column {
	out := make([]Column, 0, len(g.columns))
	for _, c := range g.columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the column with the given name.
func (g *Grid) Column(name string) (Column, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.byName[name]
	if !ok {
		return Column{}, false
	}
	return g.columns[i], true
}

// Loading reports whether a fetch is in flight.
func (g *Grid) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// TotalCount returns the number of records in the collection.
func (g *Grid) TotalCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// FilteredCount returns the number of records passing filters and search.
func (g *Grid) FilteredCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filteredCount
}

// Multiselect reports whether the grid was built with WithMultiselect.
func (g *Grid) Multiselect() bool { return g.opts.multiselect }

// Multisort reports whether the grid was built with WithMultisort.
func (g *Grid) Multisort() bool { return g.opts.multisort }

// Subgrid reports whether row expansion is enabled.
func (g *Grid) Subgrid() bool { return g.opts.subgrid }

// Accordion reports whether at most one row can be expanded.
func (g *Grid) Accordion() bool { return g.opts.accordion }

// RowList returns the page sizes offered to the user.
func (g *Grid) RowList() []int { return slices.Clone(g.opts.rowList) }

// Labels returns the grid's label dictionary.
func (g *Grid) Labels() Labels { return Dictionary(g.opts.lang) }

// Activate reports a row double-click or enter on a known row.
func (g *Grid) Activate(id string) bool {
	return g.update(func(b *batch) bool {
		if _, ok := g.index[id]; !ok {
			return false
		}
		b.add(RowActivated{ID: id})
		return true
	})
}

// FilterOptions returns the distinct non-empty display values of a
// filterable column over the whole collection, in first-seen order.
func (g *Grid) FilterOptions(column string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.byName[column]
	if !ok || g.columns[i].Filter == FilterNone {
		return nil
	}
	col := g.columns[i]
	seen := make(map[string]struct{})
	var out []string
	for _, r := range g.records {
		v := col.DisplayValue(r)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
