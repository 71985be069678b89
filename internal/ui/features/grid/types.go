// Package grid serves a grid in the browser. Each browser session holds
// its own view state over the shared record source; intents arrive as
// datastar requests and the table is patched back over SSE.
package grid

import (
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// Signals are the client-side values datastar posts with intents.
type Signals struct {
	Filters      map[string]string `json:"filters"`
	Search       string            `json:"search"`
	SearchColumn string            `json:"searchColumn"`
}

// PageData is everything the grid markup renders.
type PageData struct {
	View    grid.View
	Options map[string][]string
	// Searchable lists the columns the search bar offers.
	Searchable []grid.Column
	Error      string
}

// newPageData snapshots s for rendering.
func newPageData(s *Session) PageData {
	v := s.Grid.Snapshot()
	d := PageData{
		View:       v,
		Options:    make(map[string][]string),
		Searchable: v.Columns,
	}
	for _, c := range v.Columns {
		if c.Filter == grid.FilterEnumerated {
			d.Options[c.Name] = s.Grid.FilterOptions(c.Name)
		}
	}
	if err := s.FetchError(); err != nil {
		d.Error = err.Error()
	}
	return d
}

// signalsFor returns the initial client signals mirroring the view.
func signalsFor(v grid.View) Signals {
	sig := Signals{Filters: make(map[string]string)}
	for _, c := range v.Columns {
		if c.Filter != grid.FilterNone {
			sig.Filters[c.Name] = v.FilterText(c.Name)
		}
	}
	if v.Search != nil {
		sig.Search = v.Search.Pattern
		sig.SearchColumn = v.Search.Column
	} else if len(v.Columns) > 0 {
		sig.SearchColumn = v.Columns[0].Name
	}
	return sig
}
