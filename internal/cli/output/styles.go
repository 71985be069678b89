package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the text renderer.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	Selected      lipgloss.Style
	Disabled      lipgloss.Style
}

// NewStyles builds styles for the given lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:       r.NewStyle().Bold(true).Underline(true),
		Header2:       r.NewStyle().Bold(true),
		Bold:          r.NewStyle().Bold(true),
		Muted:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:       r.NewStyle().Foreground(lipgloss.Color("3")),
		Error:         r.NewStyle().Foreground(lipgloss.Color("1")),
		Info:          r.NewStyle().Foreground(lipgloss.Color("4")),
		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Selected:      r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		Disabled:      r.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
	}
}
