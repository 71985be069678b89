package grid

// ToggleSelect selects a row. With multiselect the row's membership is
// toggled; otherwise the selection becomes exactly {id}. Unknown and
// disabled rows are ignored.
func (g *Grid) ToggleSelect(id string, multiselect bool) bool {
	return g.update(func(b *batch) bool {
		i, ok := g.index[id]
		if !ok || g.records[i].Disabled {
			return false
		}

		if multiselect {
			if _, on := g.selected[id]; on {
				delete(g.selected, id)
			} else {
				g.selected[id] = struct{}{}
			}
		} else {
			if _, on := g.selected[id]; on && len(g.selected) == 1 {
				return false
			}
			clear(g.selected)
			g.selected[id] = struct{}{}
		}

		b.add(SelectionChanged{Selected: g.selectedIDs()})
		return true
	})
}

// SelectAll sets the membership of every non-disabled row on the current
// page. It only applies to grids built with WithMultiselect.
func (g *Grid) SelectAll(checked bool) bool {
	return g.update(func(b *batch) bool {
		if !g.opts.multiselect {
			return false
		}
		changed := false
		for _, r := range g.visible() {
			if r.Disabled {
				continue
			}
			_, on := g.selected[r.ID]
			switch {
			case checked && !on:
				g.selected[r.ID] = struct{}{}
				changed = true
			case !checked && on:
				delete(g.selected, r.ID)
				changed = true
			}
		}
		if changed {
			b.add(SelectionChanged{Selected: g.selectedIDs()})
		}
		return changed
	})
}

// ClearSelection deselects every row.
func (g *Grid) ClearSelection() bool {
	return g.update(func(b *batch) bool {
		if len(g.selected) == 0 {
			return false
		}
		clear(g.selected)
		b.add(SelectionChanged{Selected: nil})
		return true
	})
}

// IsSelected reports whether id is selected.
func (g *Grid) IsSelected(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.selected[id]
	return ok
}

// SelectedIDs returns the selected ids in collection order.
func (g *Grid) SelectedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selectedIDs()
}

// Selected returns the selected records in collection order.
func (g *Grid) Selected() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Record, 0, len(g.selected))
	for _, r := range g.records {
		if _, ok := g.selected[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (g *Grid) selectedIDs() []string {
	if len(g.selected) == 0 {
		return nil
	}
	out := make([]string, 0, len(g.selected))
	for _, r := range g.records {
		if _, ok := g.selected[r.ID]; ok {
			out = append(out, r.ID)
		}
	}
	return out
}
