package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/gridview/pkg/grid"
)

// writeTimeout bounds writes made through the RecordSource interface,
// which carries no context.
const writeTimeout = 10 * time.Second

// Source is a grid.RecordSource backed by a SQLiteStore. Fetch reloads
// the collection from the database; Add and Remove write through.
type Source struct {
	*grid.MemorySource
	store  *SQLiteStore
	logger *slog.Logger
}

var _ grid.RecordSource = (*Source)(nil)

// NewSource creates a source over store. The collection is empty until the
// first Fetch.
func NewSource(store *SQLiteStore, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Source{
		MemorySource: grid.NewMemorySource(),
		store:        store,
		logger:       logger,
	}
	s.SetLoader(store.ListRecords)
	return s
}

// Store returns the underlying store.
func (s *Source) Store() *SQLiteStore { return s.store }

// Add persists records and then applies them to the collection. A failed
// write is reported to subscribers as SourceWriteError.
func (s *Source) Add(records ...grid.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	stored, err := s.store.UpsertRecords(ctx, records...)
	if err != nil {
		s.logger.Error("failed to store records", "error", err)
		s.FailWrite("store records", err)
		return
	}
	s.MemorySource.Add(stored...)
}

// Remove deletes records and then drops them from the collection.
func (s *Source) Remove(ids ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := s.store.DeleteRecords(ctx, ids...); err != nil {
		s.logger.Error("failed to delete records", "error", err)
		s.FailWrite("delete records", err)
		return
	}
	s.MemorySource.Remove(ids...)
}

// Update persists changes to records already in the collection and then
// applies them. Unknown ids are ignored.
func (s *Source) Update(records ...grid.Record) {
	known := records[:0:0]
	for _, r := range records {
		if _, ok := s.Get(r.ID); ok {
			known = append(known, r)
		}
	}
	if len(known) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	stored, err := s.store.UpsertRecords(ctx, known...)
	if err != nil {
		s.logger.Error("failed to update records", "error", err)
		s.FailWrite("update records", err)
		return
	}
	s.MemorySource.Update(stored...)
}
