package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the renderer. Without color every
// style renders text unchanged.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
	Caret   lipgloss.Style
	Gutter  lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when colored is false.
func NewStyles(colored bool) *Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header:  plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
			Muted:   plain,
			Key:     plain,
			Caret:   plain,
			Gutter:  plain,
		}
	}
	return &Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Key:     lipgloss.NewStyle().Bold(true),
		Caret:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
