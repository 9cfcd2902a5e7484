package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	styleOK     = lipgloss.NewStyle().Foreground(ac("28", "42")).Bold(true)
	styleFail   = lipgloss.NewStyle().Foreground(ac("160", "203")).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(ac("240", "245"))
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
)

// status prints one result line: a marker, the subject and a muted detail.
func status(w io.Writer, ok bool, subject, detail string) {
	mark := styleOK.Render("ok")
	if !ok {
		mark = styleFail.Render("fail")
	}
	line := mark + " " + subject
	if detail != "" {
		line += " " + styleMuted.Render(detail)
	}
	fmt.Fprintln(w, line)
}

// table prints rows as left-aligned columns under a styled header.
func table(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	cells := func(row []string, st *lipgloss.Style) string {
		parts := make([]string, len(row))
		for i, c := range row {
			pad := c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
			if st != nil {
				pad = st.Render(c) + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
			}
			parts[i] = pad
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	fmt.Fprintln(w, cells(header, &styleHeader))
	for _, row := range rows {
		fmt.Fprintln(w, cells(row, nil))
	}
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
