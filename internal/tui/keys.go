package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the grid bindings. Row movement is handled by the table's
// own key map.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Sort       key.Binding
	SortMulti  key.Binding
	Filter     key.Binding
	Search     key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	Grow       key.Binding
	Shrink     key.Binding
	Select     key.Binding
	SelectAll  key.Binding
	SelectNone key.Binding
	Expand     key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortMulti:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "add sort key")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Search:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "search")),
		NextPage:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		FirstPage:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		LastPage:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		Grow:       key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "more rows")),
		Shrink:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer rows")),
		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		SelectNone: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "clear selection")),
		Expand:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Filter, k.Search, k.NextPage, k.PrevPage, k.Select, k.Expand, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Sort, k.SortMulti, k.Filter, k.Search},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.Grow, k.Shrink},
		{k.Select, k.SelectAll, k.SelectNone, k.Expand, k.Reload, k.Help, k.Quit},
	}
}
