package grid

import (
	"context"
	"sync"
)

// SourceEventKind names a RecordSource notification.
type SourceEventKind string

// Source event kinds. SourceWriteError reports a failed write and never
// follows a request.
const (
	SourceAdd        SourceEventKind = "add"
	SourceRemove     SourceEventKind = "remove"
	SourceChange     SourceEventKind = "change"
	SourceReset      SourceEventKind = "reset"
	SourceRequest    SourceEventKind = "request"
	SourceSync       SourceEventKind = "sync"
	SourceError      SourceEventKind = "error"
	SourceWriteError SourceEventKind = "write_error"
)

// SourceEvent is delivered to RecordSource subscribers.
type SourceEvent struct {
	Kind SourceEventKind
	// Records holds the added or changed records, or the whole collection
	// for reset and sync.
	Records []Record
	// IDs holds removed record ids.
	IDs []string
	// Err is set for SourceError and SourceWriteError.
	Err error
}

// RecordSource supplies the ordered record collection a grid derives from.
type RecordSource interface {
	// Fetch starts an asynchronous load. It emits SourceRequest, then
	// SourceSync with the new collection or SourceError.
	Fetch(ctx context.Context) error
	// Records returns an ordered snapshot of the collection.
	Records() []Record
	Get(id string) (Record, bool)
	Add(records ...Record)
	Remove(ids ...string)
	Subscribe(fn func(SourceEvent)) (cancel func())
}

// LoadFunc produces a full collection for a fetch.
type LoadFunc func(ctx context.Context) ([]Record, error)

// MemorySource is an in-memory RecordSource. Other sources embed it as
// their collection and plug their loading logic in with SetLoader.
type MemorySource struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
	load    LoadFunc
	subs    sourceSubscribers
	wg      sync.WaitGroup
}

var _ RecordSource = (*MemorySource)(nil)

// NewMemorySource creates a source holding records.
// Records without an id are dropped; a repeated id keeps the last value.
func NewMemorySource(records ...Record) *MemorySource {
	s := &MemorySource{}
	s.replace(records)
	return s
}

// SetLoader sets the function Fetch runs on its goroutine.
func (s *MemorySource) SetLoader(load LoadFunc) {
	s.mu.Lock()
	s.load = load
	s.mu.Unlock()
}

// Fetch emits SourceRequest and loads on a new goroutine. Without a loader
// the current collection is synced back unchanged.
func (s *MemorySource) Fetch(ctx context.Context) error {
	s.mu.RLock()
	load := s.load
	s.mu.RUnlock()

	s.BeginFetch()
	if load == nil {
		s.Sync(s.Records())
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		records, err := load(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			s.Fail(err)
			return
		}
		s.Sync(records)
	}()
	return nil
}

// Wait blocks until every in-flight fetch has finished.
func (s *MemorySource) Wait() {
	s.wg.Wait()
}

// BeginFetch emits SourceRequest.
func (s *MemorySource) BeginFetch() {
	s.subs.emit(SourceEvent{Kind: SourceRequest})
}

// Sync replaces the collection with a fetched one and emits SourceSync.
func (s *MemorySource) Sync(records []Record) {
	s.mu.Lock()
	s.replace(records)
	snapshot := s.snapshot()
	s.mu.Unlock()
	s.subs.emit(SourceEvent{Kind: SourceSync, Records: snapshot})
}

// Fail emits SourceError. The collection is left unchanged.
func (s *MemorySource) Fail(err error) {
	s.subs.emit(SourceEvent{Kind: SourceError, Err: err})
}

// FailWrite emits SourceWriteError with err wrapped in a WriteError.
func (s *MemorySource) FailWrite(op string, err error) {
	s.subs.emit(SourceEvent{Kind: SourceWriteError, Err: &WriteError{Op: op, Err: err}})
}

// Reset replaces the collection and emits SourceReset.
func (s *MemorySource) Reset(records ...Record) {
	s.mu.Lock()
	s.replace(records)
	snapshot := s.snapshot()
	s.mu.Unlock()
	s.subs.emit(SourceEvent{Kind: SourceReset, Records: snapshot})
}

// Records returns a copy of the ordered collection.
func (s *MemorySource) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of records.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with the given id.
func (s *MemorySource) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Add appends new records and replaces existing ones in place.
// New records are announced with SourceAdd, replaced ones with SourceChange.
func (s *MemorySource) Add(records ...Record) {
	var added, changed []Record

	s.mu.Lock()
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if i, ok := s.index[r.ID]; ok {
			s.records[i] = r
			changed = append(changed, r)
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
		added = append(added, r)
	}
	s.mu.Unlock()

	if len(added) > 0 {
		s.subs.emit(SourceEvent{Kind: SourceAdd, Records: added})
	}
	if len(changed) > 0 {
		s.subs.emit(SourceEvent{Kind: SourceChange, Records: changed})
	}
}

// Update replaces existing records. Unknown ids are ignored.
func (s *MemorySource) Update(records ...Record) {
	known := records[:0:0]
	s.mu.RLock()
	for _, r := range records {
		if _, ok := s.index[r.ID]; ok {
			known = append(known, r)
		}
	}
	s.mu.RUnlock()
	if len(known) > 0 {
		s.Add(known...)
	}
}

// Remove deletes records by id and emits SourceRemove with the ids that
// were present.
func (s *MemorySource) Remove(ids ...string) {
	s.mu.Lock()
	drop := make(map[string]struct{}, len(ids))
	var removed []string
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			continue
		}
		if _, dup := drop[id]; dup {
			continue
		}
		drop[id] = struct{}{}
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		kept := s.records[:0]
		for _, r := range s.records {
			if _, ok := drop[r.ID]; !ok {
				kept = append(kept, r)
			}
		}
		s.replace(kept)
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		s.subs.emit(SourceEvent{Kind: SourceRemove, IDs: removed})
	}
}

// Subscribe registers fn for source events.
func (s *MemorySource) Subscribe(fn func(SourceEvent)) func() {
	return s.subs.add(fn)
}

func (s *MemorySource) replace(records []Record) {
	out := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if i, ok := index[r.ID]; ok {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	s.records = out
	s.index = index
}

func (s *MemorySource) snapshot() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// FetchAndWait starts a fetch on src and blocks until it syncs or fails.
func FetchAndWait(ctx context.Context, src RecordSource) error {
	done := make(chan error, 1)
	cancel := src.Subscribe(func(ev SourceEvent) {
		var result error
		switch ev.Kind {
		case SourceSync:
		case SourceError:
			result = ev.Err
		default:
			return
		}
		select {
		case done <- result:
		default:
		}
	})
	defer cancel()

	if err := src.Fetch(ctx); err != nil {
		return err
	}
	select {
	case err := <-done:
		if err != nil {
			return &FetchError{Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type sourceSubscribers struct {
	mu     sync.Mutex
	nextID int
	subs   []sourceSubscriber
}

type sourceSubscriber struct {
	id int
	fn func(SourceEvent)
}

func (o *sourceSubscribers) add(fn func(SourceEvent)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, sourceSubscriber{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, sub := range o.subs {
			if sub.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *sourceSubscribers) emit(ev SourceEvent) {
	o.mu.Lock()
	fns := make([]func(SourceEvent), len(o.subs))
	for i, sub := range o.subs {
		fns[i] = sub.fn
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
