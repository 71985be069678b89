package grid

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// ApplyFilter stores, replaces or clears (blank text) the filter on column.
// Text filters match a case-insensitive substring of the display value,
// enumerated filters match it exactly. Unknown or non-filterable columns
// are ignored, as are all filter intents while loading.
func (g *Grid) ApplyFilter(column, text string) bool {
	text = strings.TrimSpace(text)
	return g.update(func(b *batch) bool {
		if g.loading {
			return false
		}
		i, ok := g.byName[column]
		if !ok || g.columns[i].Filter == FilterNone {
			return false
		}

		at := -1
		for j, f := range g.filters {
			if f.Column == column {
				at = j
				break
			}
		}

		switch {
		case text == "" && at < 0:
			return false
		case text == "":
			g.filters = append(g.filters[:at:at], g.filters[at+1:]...)
		case at >= 0 && g.filters[at].Text == text:
			return false
		case at >= 0:
			g.filters[at].Text = text
		default:
			g.filters = append(g.filters, Filter{Column: column, Text: text})
		}

		before := g.counts()
		g.settle(b, before, true)
		return true
	})
}

// Filters returns the stored filters in registration order.
func (g *Grid) Filters() []Filter {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Filter(nil), g.filters...)
}

// Search sets the search bar query: a case-insensitive regular expression
// matched against one visible column. A pattern that does not compile is
// matched literally. Blank pattern clears the search.
func (g *Grid) Search(column, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	return g.update(func(b *batch) bool {
		if g.loading {
			return false
		}
		if pattern == "" {
			if g.search == nil {
				return false
			}
			g.search = nil
			g.searchRe = nil
		} else {
			i, ok := g.byName[column]
			if !ok || g.columns[i].Hidden {
				return false
			}
			if g.search != nil && g.search.Column == column && g.search.Pattern == pattern {
				return false
			}
			g.search = &SearchSpec{Column: column, Pattern: pattern}
			g.searchRe = compileSearch(pattern)
		}

		before := g.counts()
		g.settle(b, before, true)
		return true
	})
}

// CurrentSearch returns the active search, if any.
func (g *Grid) CurrentSearch() (SearchSpec, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.search == nil {
		return SearchSpec{}, false
	}
	return *g.search, true
}

func compileSearch(pattern string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	return re
}

// filtered returns the records passing every filter and the search, in
// collection order. Callers hold g.mu.
func (g *Grid) filtered() []Record {
	if len(g.filters) == 0 && g.search == nil {
		return g.records
	}

	fold := cases.Fold()
	preds := make([]predicate, 0, len(g.filters))
	for _, f := range g.filters {
		col := g.columns[g.byName[f.Column]]
		p := predicate{col: col, text: f.Text}
		if col.Filter == FilterText {
			p.text = fold.String(f.Text)
		}
		preds = append(preds, p)
	}
	var searchCol Column
	if g.search != nil {
		searchCol = g.columns[g.byName[g.search.Column]]
	}

	out := make([]Record, 0, len(g.records))
	for _, r := range g.records {
		if g.search != nil && !g.searchRe.MatchString(searchCol.DisplayValue(r)) {
			continue
		}
		if matchFilters(r, preds, fold) {
			out = append(out, r)
		}
	}
	return out
}

type predicate struct {
	col  Column
	text string
}

func matchFilters(r Record, preds []predicate, fold cases.Caser) bool {
	for _, p := range preds {
		v := p.col.DisplayValue(r)
		if v == "" {
			return false
		}
		if p.col.Filter == FilterEnumerated {
			if v != p.text {
				return false
			}
			continue
		}
		if !strings.Contains(fold.String(v), p.text) {
			return false
		}
	}
	return true
}
