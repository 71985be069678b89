package grid

import (
	"strconv"
	"strings"
)

type pageMove int

const (
	moveTo pageMove = iota
	moveFirst
	moveLast
	moveNext
	movePrev
)

// PageRequest names a target page.
type PageRequest struct {
	move pageMove
	n    int
}

// Relative page requests.
var (
	FirstPage = PageRequest{move: moveFirst}
	LastPage  = PageRequest{move: moveLast}
	NextPage  = PageRequest{move: moveNext}
	PrevPage  = PageRequest{move: movePrev}
)

// Page requests the absolute page n, counted from 1.
func Page(n int) PageRequest {
	return PageRequest{move: moveTo, n: n}
}

// String returns the request in the form ParsePageRequest accepts.
func (r PageRequest) String() string {
	switch r.move {
	case moveFirst:
		return "first"
	case moveLast:
		return "last"
	case moveNext:
		return "next"
	case movePrev:
		return "prev"
	default:
		return strconv.Itoa(r.n)
	}
}

// ParsePageRequest parses "first", "last", "next", "prev" or a page number.
func ParsePageRequest(s string) (PageRequest, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return FirstPage, true
	case "last":
		return LastPage, true
	case "next":
		return NextPage, true
	case "prev", "previous":
		return PrevPage, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return PageRequest{}, false
	}
	return Page(n), true
}

func (r PageRequest) target(current, pageCount int) int {
	switch r.move {
	case moveFirst:
		return 1
	case moveLast:
		return pageCount
	case moveNext:
		return current + 1
	case movePrev:
		return current - 1
	default:
		return r.n
	}
}

// SetPage moves to the requested page. Targets outside [1, pageCount] are
// ignored, as are all page intents while loading.
func (g *Grid) SetPage(req PageRequest) bool {
	return g.update(func(b *batch) bool {
		if g.loading {
			return false
		}
		pc := g.pageCount()
		target := req.target(g.page, pc)
		if target < 1 || target > pc || target == g.page {
			return false
		}
		g.page = target
		b.add(PageChanged{Page: g.page, PageCount: pc, PageSize: g.pageSize})
		return true
	})
}

// SetPageSize changes the number of rows per page. ShowAll puts every row
// on one page; negative sizes are ignored, as is any change while loading.
func (g *Grid) SetPageSize(n int) bool {
	return g.update(func(b *batch) bool {
		if g.loading || n < 0 || n == g.pageSize {
			return false
		}
		g.pageSize = n
		pc := g.pageCount()
		g.page = min(max(g.page, 1), pc)
		b.add(PageChanged{Page: g.page, PageCount: pc, PageSize: g.pageSize})
		return true
	})
}

// CurrentPage returns the current page number.
func (g *Grid) CurrentPage() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page
}

// PageCount returns the number of pages after filtering.
func (g *Grid) PageCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pageCount()
}

// PageSize returns the rows per page, or ShowAll.
func (g *Grid) PageSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pageSize
}

func (g *Grid) pageCount() int {
	if g.pageSize <= 0 || g.filteredCount == 0 {
		return 1
	}
	return (g.filteredCount + g.pageSize - 1) / g.pageSize
}

// pageSlice cuts the current page out of records. Callers hold g.mu.
func (g *Grid) pageSlice(records []Record) []Record {
	if g.pageSize <= 0 {
		return records
	}
	start := (g.page - 1) * g.pageSize
	if start >= len(records) {
		return nil
	}
	end := min(start+g.pageSize, len(records))
	return records[start:end]
}
