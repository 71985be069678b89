package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/gridview/internal/cli/output"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
)

const (
	shellPrompt      = "gridview> "
	shellHistoryFile = ".gridview_history"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Drive the grid from an interactive prompt",
		Long: `Start a line-oriented prompt over the grid.

Each command changes the view state and prints the current page.
Type help for the command list. Column names complete with tab.`,
		Aliases: []string{"repl"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			session, err := cc.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			return runShell(cmd.Context(), cc, session)
		},
	}

	return cmd
}

func runShell(ctx context.Context, cc *CommandContext, session *Session) error {
	historyFile := ""
	if cc.Cfg.ProjectRoot != "" {
		historyFile = filepath.Join(cc.Cfg.ProjectRoot, shellHistoryFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newColumnCompleter(session.Grid),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh := newShell(session.Grid, session.Source, cc.Renderer)
	cc.Renderer.Printf("gridview shell (%d records)\n", session.Grid.TotalCount())
	cc.Renderer.Println("Type help for commands, quit to exit")
	cc.Renderer.Println("")
	sh.show()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sh.exec(ctx, line) {
			break
		}
	}
	return nil
}

// shell executes prompt lines against a grid.
type shell struct {
	g   *grid.Grid
	src grid.RecordSource
	r   *output.Renderer
}

func newShell(g *grid.Grid, src grid.RecordSource, r *output.Renderer) *shell {
	return &shell{g: g, src: src, r: r}
}

// exec runs one line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(strings.TrimPrefix(fields[0], ".")), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help":
		printShellHelp(s.r.Writer())
		return false
	case "show":
		s.show()
		return false
	case "columns":
		err = renderColumns(s.r, columnInfos(s.g))
	case "selected":
		s.selected()
		return false
	case "expanded":
		s.expanded()
		return false
	case "sort":
		err = s.sort(args)
	case "filter":
		err = s.filter(args)
	case "search":
		err = s.search(args)
	case "page":
		err = s.page(args)
	case "size":
		err = s.size(args)
	case "select":
		err = s.toggle(args, func(id string) bool { return s.g.ToggleSelect(id, s.g.Multiselect()) })
	case "selectall":
		if !s.g.SelectAll(true) && !s.g.Multiselect() {
			err = errors.New("select all needs multiselect")
		}
	case "clear":
		s.g.ClearSelection()
	case "expand":
		err = s.toggle(args, s.g.ToggleExpand)
	case "set":
		err = s.set(args)
	case "reload":
		err = grid.FetchAndWait(ctx, s.src)
	default:
		err = fmt.Errorf("unknown command: %s (type help for commands)", name)
	}

	if err != nil {
		s.r.Error(err.Error())
		return false
	}
	if name != "columns" {
		s.show()
	}
	return false
}

func (s *shell) show() {
	if err := s.g.Render(s.r.Grid()); err != nil {
		s.r.Error(err.Error())
	}
}

func (s *shell) selected() {
	recs := s.g.Selected()
	if len(recs) == 0 {
		s.r.Muted("no rows selected")
		return
	}
	for _, rec := range recs {
		s.r.Println(rec.ID)
	}
}

func (s *shell) expanded() {
	ids := s.g.ExpandedIDs()
	if len(ids) == 0 {
		s.r.Muted("no rows expanded")
		return
	}
	for _, id := range ids {
		s.r.Println(id)
	}
}

// recordUpdater is implemented by sources that can change records in place.
type recordUpdater interface {
	Update(records ...grid.Record)
}

// set changes one field of a row. An empty value removes the field.
func (s *shell) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <id> <field> [value]")
	}
	u, ok := s.src.(recordUpdater)
	if !ok {
		return errors.New("source does not support editing")
	}
	rec, ok := s.src.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown row %q", args[0])
	}

	fields := maps.Clone(rec.Fields)
	if fields == nil {
		fields = make(map[string]any)
	}
	if value := strings.Join(args[2:], " "); value != "" {
		fields[args[1]] = value
	} else {
		delete(fields, args[1])
	}
	rec.Fields = fields
	u.Update(rec)
	return nil
}

func (s *shell) sort(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sort <column> [asc|desc] [+]")
	}
	multi := false
	dir := grid.Ascending
	for _, a := range args[1:] {
		if a == "+" {
			multi = true
			continue
		}
		if d := grid.ParseDirection(a); d != grid.Unsorted {
			dir = d
		}
	}
	if len(args) == 1 {
		col, ok := s.g.Column(args[0])
		if ok && col.SortOrder != grid.Unsorted {
			dir = col.SortOrder.Toggle()
		}
	}
	return applySort(s.g, args[0], dir, multi)
}

func (s *shell) filter(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: filter <column> [text]")
	}
	return applyFilter(s.g, args[0], strings.Join(args[1:], " "))
}

func (s *shell) search(args []string) error {
	if len(args) == 0 {
		s.g.Search("", "")
		return nil
	}
	if !s.g.Search(args[0], strings.Join(args[1:], " ")) {
		if _, ok := s.g.Column(args[0]); !ok {
			return fmt.Errorf("unknown column %q", args[0])
		}
	}
	return nil
}

func (s *shell) page(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: page <n|first|last|next|prev>")
	}
	req, ok := grid.ParsePageRequest(args[0])
	if !ok {
		return fmt.Errorf("invalid page %q", args[0])
	}
	if !s.g.SetPage(req) {
		if n, err := strconv.Atoi(args[0]); err == nil && n != s.g.CurrentPage() {
			return fmt.Errorf("page %d is out of range (1-%d)", n, s.g.PageCount())
		}
	}
	return nil
}

func (s *shell) size(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: size <n|all>")
	}
	if strings.EqualFold(args[0], "all") {
		s.g.SetPageSize(grid.ShowAll)
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid page size %q", args[0])
	}
	s.g.SetPageSize(n)
	return nil
}

func (s *shell) toggle(ids []string, fn func(string) bool) error {
	if len(ids) == 0 {
		return errors.New("at least one row id is required")
	}
	for _, id := range ids {
		if !fn(id) {
			return fmt.Errorf("row %q cannot be changed", id)
		}
	}
	return nil
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  show                          Print the current page
  sort <col> [asc|desc] [+]     Sort by a column, + adds to the sort
  filter <col> [text]           Filter a column, no text clears it
  search [<col> <pattern>]      Search a column, no arguments clears it
  page <n|first|last|next|prev> Go to a page
  size <n|all>                  Set rows per page
  select <id>...                Toggle row selection
  selectall                     Select every row on the page
  clear                         Clear the selection
  selected                      List selected row ids
  expand <id>                   Toggle a row's detail
  expanded                      List expanded row ids
  set <id> <field> [value]      Change a field, no value removes it
  columns                       List the column model
  reload                        Fetch the source again
  help                          Show this help message
  quit / exit                   Leave the shell
`
	_, _ = fmt.Fprintln(w, help)
}

// newColumnCompleter completes commands and, where they take one, column
// names.
func newColumnCompleter(g *grid.Grid) *readline.PrefixCompleter {
	var cols []readline.PrefixCompleterInterface
	for _, c := range g.Columns() {
		cols = append(cols, readline.PcItem(c.Name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("show"),
		readline.PcItem("sort", cols...),
		readline.PcItem("filter", cols...),
		readline.PcItem("search", cols...),
		readline.PcItem("page",
			readline.PcItem("first"),
			readline.PcItem("last"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
		),
		readline.PcItem("size", readline.PcItem("all")),
		readline.PcItem("select"),
		readline.PcItem("selectall"),
		readline.PcItem("clear"),
		readline.PcItem("selected"),
		readline.PcItem("expand"),
		readline.PcItem("expanded"),
		readline.PcItem("set"),
		readline.PcItem("columns"),
		readline.PcItem("reload"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	)
}
