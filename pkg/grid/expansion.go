package grid

import "slices"

// ToggleExpand opens or closes the detail panel of a row. In accordion mode
// opening a row closes the previously open one, and without multiselect the
// selection follows the open row unless it is disabled.
func (g *Grid) ToggleExpand(id string) bool {
	return g.update(func(b *batch) bool {
		if !g.opts.subgrid {
			return false
		}
		i, ok := g.index[id]
		if !ok {
			return false
		}
		follow := g.opts.accordion && !g.opts.multiselect

		if _, open := g.expanded[id]; open {
			delete(g.expanded, id)
			b.add(ExpansionChanged{ID: id, Expanded: false})
			if _, on := g.selected[id]; follow && on {
				delete(g.selected, id)
				b.add(SelectionChanged{Selected: g.selectedIDs()})
			}
			return true
		}

		if g.opts.accordion {
			prev := make([]string, 0, len(g.expanded))
			for other := range g.expanded {
				prev = append(prev, other)
			}
			slices.Sort(prev)
			for _, other := range prev {
				delete(g.expanded, other)
				b.add(ExpansionChanged{ID: other, Expanded: false})
			}
		}
		g.expanded[id] = struct{}{}
		b.add(ExpansionChanged{ID: id, Expanded: true})

		if follow && !g.records[i].Disabled {
			_, on := g.selected[id]
			if !on || len(g.selected) != 1 {
				clear(g.selected)
				g.selected[id] = struct{}{}
				b.add(SelectionChanged{Selected: g.selectedIDs()})
			}
		}
		return true
	})
}

// IsExpanded reports whether a row's detail panel is open.
func (g *Grid) IsExpanded(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.expanded[id]
	return ok
}

// ExpandedIDs returns the open rows in collection order.
func (g *Grid) ExpandedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, r := range g.records {
		if _, ok := g.expanded[r.ID]; ok {
			out = append(out, r.ID)
		}
	}
	return out
}
