package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/coolbeans/escrutinio/pkg/audit"
)

// The three visual classes of the presentation contract: matched entities,
// discrepancies, and phase banners, plus a summary line for halted runs.
var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true)
)

// renderTrace writes the audit trace in order, one item per line, applying
// the style each item's flags call for. The comparator output is the sole
// contract here: no comparison logic is re-derived.
func renderTrace(w io.Writer, result *audit.ComparisonResult) {
	for _, item := range result.Items {
		switch {
		case item.IsHeader:
			fmt.Fprintln(w, headerStyle.Render(item.Message))
		case item.OK:
			fmt.Fprintln(w, okStyle.Render(item.Message))
		default:
			fmt.Fprintln(w, errorStyle.Render(item.Message))
		}
	}

	if result.Halted {
		fmt.Fprintln(w)
		fmt.Fprintln(w, summaryStyle.Render("Proceso detenido por inconsistencia."))
	}
}
