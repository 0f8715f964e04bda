package smoke

import "github.com/charmbracelet/lipgloss"

// Styles used by the report.
type Styles struct {
	Rule    lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Running lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Hint    lipgloss.Style
	Code    lipgloss.Style
}

// NewStyles makes the report styles for the given renderer.
func NewStyles(r *lipgloss.Renderer) (s Styles) {
	s.Rule = r.NewStyle().Foreground(lipgloss.Color("#585858"))
	s.Title = r.NewStyle().Bold(true)
	s.Label = r.NewStyle().Foreground(lipgloss.Color("#757575"))
	s.Running = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8470FF", Dark: "#745CFF"})
	s.Pass = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00B594", Dark: "#3EEFCF"}).Bold(true)
	s.Fail = r.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	s.Hint = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF71D0", Dark: "#FF78D2"})
	s.Code = r.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	return s
}
