package cmd

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f77b4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// textTable is a static table for the terminal commands. Columns listed in
// right are right-aligned.
type textTable struct {
	title   string
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t *textTable) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}
	total := 0
	for i, h := range t.headers {
		sb.WriteString(headerStyle.Width(widths[i]).Align(t.align(i)).Render(h))
		total += widths[i]
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i := range t.headers {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cellStyle.Width(widths[i]).Align(t.align(i)).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *textTable) align(col int) lipgloss.Position {
	if t.right[col] {
		return lipgloss.Right
	}
	return lipgloss.Left
}

// sparkline draws one block per value, blank for gaps.
func sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return strings.Repeat(" ", len(values))
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		idx := n / 2
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}
