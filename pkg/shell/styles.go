// SPDX-License-Identifier: MPL-2.0

package shell

import "github.com/charmbracelet/lipgloss"

// Diagnostic styles. Rendering degrades to plain text when the output is
// not a color terminal.
var (
	diagnosticStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	nameStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#EF4444"))

	suggestionStyle = lipgloss.NewStyle().
			Bold(true).
			Italic(true).
			Foreground(lipgloss.Color("#10B981"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)
