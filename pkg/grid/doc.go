// Package grid implements a UI-agnostic tabular view state.
//
// A Grid coordinates what a table widget shows over an ordered collection of
// records supplied by a RecordSource:
//   - Filtering (per-column text or enumerated filters, ANDed in registration order)
//   - A single regular-expression search bar over one column
//   - Single and multi-column sorting (stable, grouped by primary key)
//   - Pagination with a fixed page size or "show all"
//   - Row selection (single or multiselect) and select-all over the visible page
//   - Expandable per-row detail ("subgrid"), optionally in accordion mode
//
// The grid never copies or mutates the source collection. VisibleSlice is
// recomputed from current state on every call. Intents that cannot apply
// (unknown column, out-of-range page, disabled row) return false and leave
// state unchanged; nothing in this package panics on malformed input.
//
// State changes are reported to observers as typed Event values, and a
// Renderer receives a View snapshot of everything it needs to draw a page.
package grid
