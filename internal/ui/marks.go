package ui

import "github.com/charmbracelet/lipgloss"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// OK renders a check result label in the success style.
func OK(s string) string { return okStyle.Render(s) }

// Fail renders a check result label in the failure style.
func Fail(s string) string { return failStyle.Render(s) }

// Warn renders a check result label in the warning style.
func Warn(s string) string { return warnStyle.Render(s) }
