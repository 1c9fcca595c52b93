package components

import (
	"fmt"
	"strings"

	"caseburn/internal/cli"
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values. Negative values render
// as the lowest block.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// RunwaySeries is a weekly balance projection for one client.
type RunwaySeries struct {
	Actual  []float64 // balance at the current burn
	Ideal   []float64 // balance if spending exactly lasts to plan end
	Labels  []string  // one per week
	PlanEnd int       // index of the plan end week, -1 if not on the chart
}

const (
	glyphIdeal   = "━"
	glyphPlanEnd = "┊"
)

// RunwayChart draws the projected balance as bars with the on-plan balance
// overlaid as a line and a marker at the plan end week. The result is
// height rows of plot plus an axis, a label row and a legend. Areas too
// small for a plot get a sparkline of the projected balance.
func RunwayChart(s RunwaySeries, color lipgloss.Color, width, height int) string {
	n := len(s.Actual)
	if n == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(s.Actual, color)
	}

	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := surface.Foreground(t.TextDim)
	barStyle := surface.Foreground(color)
	idealStyle := surface.Foreground(t.Blue)
	planStyle := surface.Foreground(t.Yellow)

	peak := 0.0
	for i, v := range s.Actual {
		peak = max(peak, v, s.ideal(i))
	}
	if peak <= 0 {
		peak = 1
	}

	topLabel := cli.FormatMoneyWhole(peak)
	yLabelW := max(len(topLabel), 2) + 1
	chartW := max(width-yLabelW-1, 2)

	cols := sampleIndexes(n, chartW)
	colW, gap := 1, 0
	if len(cols)*3-1 <= chartW {
		colW, gap = 2, 1
	}
	planCol := -1
	if s.PlanEnd >= 0 {
		for c, i := range cols {
			if i >= s.PlanEnd {
				planCol = c
				break
			}
		}
	}

	blocks := []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		rowTop := peak * float64(row) / float64(height)
		rowBottom := peak * float64(row-1) / float64(height)
		inRow := func(v float64) bool {
			return v <= rowTop && (row == 1 || v > rowBottom)
		}

		label := ""
		if row == height {
			label = topLabel
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		for c, i := range cols {
			if c > 0 && gap > 0 {
				b.WriteString(surface.Render(strings.Repeat(" ", gap)))
			}
			a := s.Actual[i]
			switch {
			case i < len(s.Ideal) && inRow(s.Ideal[i]):
				b.WriteString(idealStyle.Render(strings.Repeat(glyphIdeal, colW)))
			case a >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat(blocks[8], colW)))
			case a > rowBottom:
				idx := min(max(int((a-rowBottom)/(rowTop-rowBottom)*8), 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(blocks[idx], colW)))
			case c == planCol:
				b.WriteString(planStyle.Render(strings.Repeat(glyphPlanEnd, colW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", colW)))
			}
		}
		b.WriteString("\n")
	}

	// X axis, with a tick under the plan end week.
	axisLen := len(cols)*colW + (len(cols)-1)*gap
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "$0")))
	b.WriteString(axisStyle.Render("└"))
	for c := range cols {
		if c > 0 && gap > 0 {
			b.WriteString(axisStyle.Render(strings.Repeat("─", gap)))
		}
		if c == planCol {
			b.WriteString(planStyle.Render("┴" + strings.Repeat("─", colW-1)))
			continue
		}
		b.WriteString(axisStyle.Render(strings.Repeat("─", colW)))
	}
	b.WriteString("\n")

	// First week, plan end, last week.
	labels := make([]rune, axisLen)
	for i := range labels {
		labels[i] = ' '
	}
	placed := make([]bool, axisLen)
	place := func(pos int, lbl string) {
		r := []rune(lbl)
		if pos+len(r) > axisLen {
			pos = axisLen - len(r)
		}
		if pos < 0 {
			return
		}
		for j := max(pos-1, 0); j < min(pos+len(r)+1, axisLen); j++ {
			if placed[j] {
				return
			}
		}
		copy(labels[pos:], r)
		for j := pos; j < pos+len(r); j++ {
			placed[j] = true
		}
	}
	if len(s.Labels) == n {
		place(0, s.Labels[cols[0]])
	}
	if planCol >= 0 {
		place(planCol*(colW+gap), "plan end")
	}
	if len(s.Labels) == n && len(cols) > 1 {
		last := s.Labels[cols[len(cols)-1]]
		place(axisLen-len([]rune(last)), last)
	}
	b.WriteString(surface.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(axisStyle.Render(strings.TrimRight(string(labels), " ")))
	b.WriteString("\n")

	b.WriteString(surface.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(barStyle.Render("█"))
	b.WriteString(axisStyle.Render(" projected  "))
	b.WriteString(idealStyle.Render(glyphIdeal))
	b.WriteString(axisStyle.Render(" on plan  "))
	b.WriteString(planStyle.Render(glyphPlanEnd))
	b.WriteString(axisStyle.Render(" plan end"))

	return b.String()
}

func (s RunwaySeries) ideal(i int) float64 {
	if i < len(s.Ideal) {
		return s.Ideal[i]
	}
	return 0
}

// sampleIndexes picks at most w evenly spaced indexes out of n, always
// keeping the first and last.
func sampleIndexes(n, w int) []int {
	k := min(n, max(w, 2))
	out := make([]int, k)
	if k == 1 {
		return out
	}
	for i := range out {
		out[i] = i * (n - 1) / (k - 1)
	}
	return out
}
