package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles of the monitor derived from a theme.
type Styles struct {
	Header   lipgloss.Style
	Panel    lipgloss.Style
	Canvas   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Active   lipgloss.Style
	Graph    lipgloss.Style
	Help     lipgloss.Style
	Running  lipgloss.Style
	Paused   lipgloss.Style
	Stopped  lipgloss.Style
	BarHigh  lipgloss.Style
	BarMid   lipgloss.Style
	BarLow   lipgloss.Style
	ErrorMsg lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(48),
		Canvas:   lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Active:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Graph:    lipgloss.NewStyle().Foreground(t.Secondary),
		Help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		Running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Stopped:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		BarHigh:  lipgloss.NewStyle().Foreground(t.Success),
		BarMid:   lipgloss.NewStyle().Foreground(t.Warning),
		BarLow:   lipgloss.NewStyle().Foreground(t.Error),
		ErrorMsg: lipgloss.NewStyle().Foreground(t.Error),
	}
}

// Bar renders a ratio in [0, 1] as a filled bar colored by level.
func (s Styles) Bar(ratio float64, width int) string {
	ratio = max(0, min(ratio, 1))
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case ratio > 0.8:
		return s.BarHigh.Render(bar)
	case ratio > 0.4:
		return s.BarMid.Render(bar)
	default:
		return s.BarLow.Render(bar)
	}
}
