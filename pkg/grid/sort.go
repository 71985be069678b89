package grid

import (
	"cmp"
	"slices"
	"strconv"

	"golang.org/x/text/cases"
)

// ApplySort toggles the sort direction of column: unset and descending
// become ascending, ascending becomes descending. With multi the key moves
// to the front of the sort spec and other keys keep their order; without
// it the key replaces the spec and every other column is cleared.
// Unknown or non-sortable columns are ignored, as are all sort intents
// while loading.
func (g *Grid) ApplySort(column string, multi bool) bool {
	return g.update(func(b *batch) bool {
		if g.loading {
			return false
		}
		i, ok := g.byName[column]
		if !ok || !g.columns[i].Sortable {
			return false
		}
		dir := g.columns[i].SortOrder.Toggle()

		if multi {
			keys := make([]SortKey, 0, len(g.sortKeys)+1)
			keys = append(keys, SortKey{Column: column, Direction: dir})
			for _, k := range g.sortKeys {
				if k.Column != column {
					keys = append(keys, k)
				}
			}
			g.sortKeys = keys
		} else {
			for j := range g.columns {
				g.columns[j].SortOrder = Unsorted
			}
			g.sortKeys = []SortKey{{Column: column, Direction: dir}}
		}
		g.columns[i].SortOrder = dir

		b.add(Sorted{Keys: slices.Clone(g.sortKeys)})
		return true
	})
}

// SortKeys returns the sort spec, primary key first.
func (g *Grid) SortKeys() []SortKey {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.sortKeys)
}

func (g *Grid) clearSort() {
	g.sortKeys = nil
	for i := range g.columns {
		g.columns[i].SortOrder = Unsorted
	}
}

// sorted orders records by the sort spec. Callers hold g.mu.
func (g *Grid) sorted(records []Record) []Record {
	if len(g.sortKeys) == 0 || len(records) < 2 {
		return records
	}
	keys := make([]sortColumn, 0, len(g.sortKeys))
	for _, k := range g.sortKeys {
		keys = append(keys, sortColumn{col: g.columns[g.byName[k.Column]], dir: k.Direction})
	}
	return sortGroups(records, keys, cases.Fold())
}

type sortColumn struct {
	col Column
	dir Direction
}

// sortValue is the comparable form of one cell.
type sortValue struct {
	numeric bool
	num     float64
	str     string
}

func (v sortValue) key() string {
	if v.numeric {
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return "s:" + v.str
}

func compareSortValues(a, b sortValue) int {
	switch {
	case a.numeric && b.numeric:
		return cmp.Compare(a.num, b.num)
	case a.numeric:
		return 1
	case b.numeric:
		return -1
	default:
		return cmp.Compare(a.str, b.str)
	}
}

func valueFor(sc sortColumn, r Record, fold cases.Caser) sortValue {
	if sc.col.SortType == SortNumber {
		raw := r.Get(sc.col.Name)
		if sc.col.Format != nil {
			raw = sc.col.Format(r)
		}
		if f, ok := numericValue(raw); ok {
			return sortValue{numeric: true, num: f}
		}
		return sortValue{str: sc.col.DisplayValue(r)}
	}
	return sortValue{str: fold.String(sc.col.DisplayValue(r))}
}

// sortGroups groups records by distinct primary values, orders the groups
// by the primary direction and sorts each group by the remaining keys.
// Records within a group keep their relative order.
func sortGroups(records []Record, keys []sortColumn, fold cases.Caser) []Record {
	if len(keys) == 0 || len(records) < 2 {
		return records
	}
	primary := keys[0]

	type group struct {
		value   sortValue
		records []Record
	}
	var groups []*group
	byKey := make(map[string]*group)
	for _, r := range records {
		v := valueFor(primary, r, fold)
		k := v.key()
		grp, ok := byKey[k]
		if !ok {
			grp = &group{value: v}
			byKey[k] = grp
			groups = append(groups, grp)
		}
		grp.records = append(grp.records, r)
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		c := compareSortValues(a.value, b.value)
		if primary.dir == Descending {
			return -c
		}
		return c
	})

	out := make([]Record, 0, len(records))
	for _, grp := range groups {
		out = append(out, sortGroups(grp.records, keys[1:], fold)...)
	}
	return out
}
