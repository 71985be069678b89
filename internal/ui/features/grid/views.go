package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/gridview/internal/ui/features/common"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// GridElementID is the id of the element patched on every update.
const GridElementID = "grid"

// AppPage renders the full document: signals, the update stream and the
// grid itself.
func AppPage(d PageData, sig Signals, isDev bool) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(sig)
		if err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString("<main id=\"grid-app\"")
		common.Attr(&b, "data-signals", string(signals))
		common.Attr(&b, "data-init", "@get('/grid/updates')")
		b.WriteString(">")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := GridView(d).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</main>")
		return err
	})
	return common.Page("Grid", d.View.Labels.Lang, isDev, body)
}

// GridView renders the toolbar, table and pager.
func GridView(d PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<div")
		common.Attr(&b, "id", GridElementID)
		b.WriteString(">")

		if d.Error != "" {
			b.WriteString("<div class=\"grid-error\">")
			common.Text(&b, d.Error)
			b.WriteString("</div>")
		}
		writeToolbar(&b, d)

		v := d.View
		switch {
		case v.Loading:
			b.WriteString("<div class=\"grid-loading\">")
			common.Text(&b, v.Labels.Loading)
			b.WriteString("</div>")
		default:
			writeTable(&b, d)
			if len(v.Rows) == 0 {
				b.WriteString("<div class=\"grid-empty\">")
				common.Text(&b, v.Labels.NoData)
				b.WriteString("</div>")
			}
		}
		writePager(&b, v)

		b.WriteString("</div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeToolbar(b *strings.Builder, d PageData) {
	b.WriteString("<div class=\"grid-toolbar\"><label>")
	common.Text(b, d.View.Labels.Search)
	b.WriteString("</label><select")
	common.Attr(b, "data-bind", "searchColumn")
	b.WriteString(">")
	for _, c := range d.Searchable {
		b.WriteString("<option")
		common.Attr(b, "value", c.Name)
		b.WriteString(">")
		common.Text(b, c.Label())
		b.WriteString("</option>")
	}
	b.WriteString("</select><input type=\"search\"")
	common.Attr(b, "data-bind", "search")
	common.Attr(b, "data-on:input__debounce.300ms", "@post('/grid/search')")
	b.WriteString("><button")
	common.Attr(b, "data-on:click", "@post('/grid/reload')")
	b.WriteString(">⟳</button></div>")
}

func writeTable(b *strings.Builder, d PageData) {
	v := d.View
	withMarker := v.Multiselect || v.Subgrid
	span := len(v.Columns)
	if withMarker {
		span++
	}

	b.WriteString("<table class=\"grid\"><thead><tr>")
	if withMarker {
		b.WriteString("<th>")
		if v.Multiselect {
			b.WriteString("<input type=\"checkbox\"")
			if allSelected(v) {
				b.WriteString(" checked")
			}
			common.Attr(b, "data-on:change", "@post('/grid/select?all=' + el.checked)")
			b.WriteString(">")
		}
		b.WriteString("</th>")
	}
	for _, c := range v.Columns {
		writeHeader(b, v, c)
	}
	b.WriteString("</tr>")
	writeFilterRow(b, d, withMarker)
	b.WriteString("</thead><tbody>")

	for _, rec := range v.Rows {
		writeRow(b, v, rec, withMarker)
		if v.Subgrid && v.Expanded[rec.ID] {
			b.WriteString("<tr class=\"detail\"><td")
			common.Attr(b, "colspan", common.Itoa(span))
			b.WriteString(">")
			common.Text(b, detailText(v, rec))
			b.WriteString("</td></tr>")
		}
	}
	b.WriteString("</tbody></table>")
}

func writeHeader(b *strings.Builder, v grid.View, c grid.Column) {
	if !c.Sortable {
		b.WriteString("<th>")
		common.Text(b, c.Label())
		b.WriteString("</th>")
		return
	}
	b.WriteString("<th class=\"sortable\"")
	common.Attr(b, "data-on:click", fmt.Sprintf("@post('/grid/sort?column=%s&multi=' + evt.shiftKey)", url.QueryEscape(c.Name)))
	b.WriteString(">")
	common.Text(b, c.Label())
	switch v.SortDirection(c.Name) {
	case grid.Ascending:
		b.WriteString(" <span class=\"sort\">▲</span>")
	case grid.Descending:
		b.WriteString(" <span class=\"sort\">▼</span>")
	}
	b.WriteString("</th>")
}

func writeFilterRow(b *strings.Builder, d PageData, withMarker bool) {
	v := d.View
	if !slices.ContainsFunc(v.Columns, func(c grid.Column) bool { return c.Filter != grid.FilterNone }) {
		return
	}
	b.WriteString("<tr class=\"filters\">")
	if withMarker {
		b.WriteString("<th></th>")
	}
	for _, c := range v.Columns {
		b.WriteString("<th>")
		action := fmt.Sprintf("@post('/grid/filter?column=%s')", url.QueryEscape(c.Name))
		switch c.Filter {
		case grid.FilterText:
			b.WriteString("<input type=\"text\"")
			common.Attr(b, "data-bind", "filters."+c.Name)
			common.Attr(b, "data-on:input__debounce.300ms", action)
			b.WriteString(">")
		case grid.FilterEnumerated:
			current := v.FilterText(c.Name)
			b.WriteString("<select")
			common.Attr(b, "data-bind", "filters."+c.Name)
			common.Attr(b, "data-on:change", action)
			b.WriteString("><option value=\"\"></option>")
			for _, opt := range d.Options[c.Name] {
				b.WriteString("<option")
				common.Attr(b, "value", opt)
				if opt == current {
					b.WriteString(" selected")
				}
				b.WriteString(">")
				common.Text(b, opt)
				b.WriteString("</option>")
			}
			b.WriteString("</select>")
		}
		b.WriteString("</th>")
	}
	b.WriteString("</tr>")
}

func writeRow(b *strings.Builder, v grid.View, rec grid.Record, withMarker bool) {
	id := url.QueryEscape(rec.ID)
	var classes []string
	if v.Selected[rec.ID] {
		classes = append(classes, "selected")
	}
	if rec.Disabled {
		classes = append(classes, "disabled")
	}

	b.WriteString("<tr")
	common.Attr(b, "id", "row-"+rec.ID)
	if len(classes) > 0 {
		common.Attr(b, "class", strings.Join(classes, " "))
	}
	if !rec.Disabled {
		common.Attr(b, "data-on:click", fmt.Sprintf("@post('/grid/select?id=%s&multi=' + (evt.ctrlKey || evt.metaKey))", id))
	}
	common.Attr(b, "data-on:dblclick", fmt.Sprintf("@post('/grid/activate?id=%s')", id))
	b.WriteString(">")

	if withMarker {
		b.WriteString("<td>")
		if v.Subgrid {
			b.WriteString("<button class=\"expand\"")
			common.Attr(b, "data-on:click__stop", fmt.Sprintf("@post('/grid/expand?id=%s')", id))
			b.WriteString(">")
			if v.Expanded[rec.ID] {
				b.WriteString("▾")
			} else {
				b.WriteString("▸")
			}
			b.WriteString("</button>")
		}
		if v.Multiselect {
			b.WriteString("<input type=\"checkbox\" tabindex=\"-1\"")
			if !rec.Disabled {
				common.Attr(b, "data-on:click__stop", fmt.Sprintf("@post('/grid/select?id=%s&multi=true')", id))
			}
			if v.Selected[rec.ID] {
				b.WriteString(" checked")
			}
			if rec.Disabled {
				b.WriteString(" disabled")
			}
			b.WriteString(">")
		}
		b.WriteString("</td>")
	}
	for _, c := range v.Columns {
		b.WriteString("<td>")
		common.Text(b, c.DisplayValue(rec))
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
}

func writePager(b *strings.Builder, v grid.View) {
	l := v.Labels
	b.WriteString("<div class=\"grid-pager\">")
	for _, step := range []struct{ to, label string }{
		{"first", "«"}, {"prev", "‹"}, {"next", "›"}, {"last", "»"},
	} {
		b.WriteString("<button")
		common.Attr(b, "data-on:click", "@post('/grid/page?to="+step.to+"')")
		if (step.to == "first" || step.to == "prev") && v.Page <= 1 ||
			(step.to == "next" || step.to == "last") && v.Page >= v.PageCount {
			b.WriteString(" disabled")
		}
		b.WriteString(">")
		b.WriteString(step.label)
		b.WriteString("</button>")
	}

	b.WriteString("<span class=\"pages\">")
	common.Text(b, fmt.Sprintf("%s %d %s %d", l.Page, v.Page, l.Of, v.PageCount))
	b.WriteString("</span><span class=\"count\">")
	if v.FilteredCount != v.TotalCount {
		common.Text(b, fmt.Sprintf("(%d %s %d)", v.FilteredCount, l.Of, v.TotalCount))
	} else {
		common.Text(b, fmt.Sprintf("(%d)", v.TotalCount))
	}
	b.WriteString("</span><label>")
	common.Text(b, l.RowsOnPage)
	b.WriteString("</label><select")
	common.Attr(b, "data-on:change", "@post('/grid/page?size=' + el.value)")
	b.WriteString(">")
	for _, n := range v.RowList {
		label := common.Itoa(n)
		if n == grid.ShowAll {
			label = l.All
		}
		b.WriteString("<option")
		common.Attr(b, "value", common.Itoa(n))
		if n == v.PageSize {
			b.WriteString(" selected")
		}
		b.WriteString(">")
		common.Text(b, label)
		b.WriteString("</option>")
	}
	b.WriteString("</select></div>")
}

// allSelected reports whether every selectable row on the page is selected.
func allSelected(v grid.View) bool {
	found := false
	for _, rec := range v.Rows {
		if rec.Disabled {
			continue
		}
		if !v.Selected[rec.ID] {
			return false
		}
		found = true
	}
	return found
}

// detailText lists the visible fields of rec, sorted by name.
func detailText(v grid.View, rec grid.Record) string {
	fields := v.Detail(rec)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+": "+f.Value)
	}
	return strings.Join(parts, ", ")
}
