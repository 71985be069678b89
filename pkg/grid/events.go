package grid

import "sync"

// EventKind names a grid notification.
type EventKind string

// Event kinds emitted by a Grid.
const (
	KindPageChanged      EventKind = "pageChanged"
	KindSorted           EventKind = "sorted"
	KindFiltered         EventKind = "filtered"
	KindSelectionChanged EventKind = "selectionChanged"
	KindExpansionChanged EventKind = "expansionChanged"
	KindLoadingChanged   EventKind = "loadingChanged"
	KindFetchFailed      EventKind = "fetchFailed"
	KindWriteFailed      EventKind = "writeFailed"
	KindRowActivated     EventKind = "rowActivated"
)

// Event is a typed change notification.
type Event interface {
	Kind() EventKind
}

// PageChanged reports a new current page or page count.
type PageChanged struct {
	Page      int
	PageCount int
	PageSize  int
}

// Sorted reports the sort spec after a sort intent.
type Sorted struct {
	Keys []SortKey
}

// Filtered reports the number of records passing filters and search.
type Filtered struct {
	FilteredCount int
}

// SelectionChanged reports the selected ids in source order.
type SelectionChanged struct {
	Selected []string
}

// ExpansionChanged reports a row's detail panel opening or closing.
type ExpansionChanged struct {
	ID       string
	Expanded bool
}

// LoadingChanged reports entering or leaving the loading state.
type LoadingChanged struct {
	Loading bool
}

// FetchFailed reports a source fetch error. Grid state is unaffected.
type FetchFailed struct {
	Err error
}

// WriteFailed reports that a source could not persist an add or remove.
// The collection is left as it was before the write.
type WriteFailed struct {
	Err error
}

// RowActivated reports a row double-click or enter.
type RowActivated struct {
	ID string
}

func (PageChanged) Kind() EventKind      { return KindPageChanged }
func (Sorted) Kind() EventKind           { return KindSorted }
func (Filtered) Kind() EventKind         { return KindFiltered }
func (SelectionChanged) Kind() EventKind { return KindSelectionChanged }
func (ExpansionChanged) Kind() EventKind { return KindExpansionChanged }
func (LoadingChanged) Kind() EventKind   { return KindLoadingChanged }
func (FetchFailed) Kind() EventKind      { return KindFetchFailed }
func (WriteFailed) Kind() EventKind      { return KindWriteFailed }
func (RowActivated) Kind() EventKind     { return KindRowActivated }

// observers is an ordered list of event callbacks.
type observers struct {
	mu     sync.Mutex
	nextID int
	fns    []observer
}

type observer struct {
	id int
	fn func(Event)
}

func (o *observers) add(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.fns = append(o.fns, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, ob := range o.fns {
				if ob.id == id {
					o.fns = append(o.fns[:i:i], o.fns[i+1:]...)
					return
				}
			}
		})
	}
}

// dispatch delivers events in order to a snapshot of the current observers.
func (o *observers) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}
	o.mu.Lock()
	fns := make([]func(Event), len(o.fns))
	for i, ob := range o.fns {
		fns[i] = ob.fn
	}
	o.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// batch collects events produced while the grid lock is held.
type batch struct {
	events []Event
}

func (b *batch) add(ev Event) {
	b.events = append(b.events, ev)
}
