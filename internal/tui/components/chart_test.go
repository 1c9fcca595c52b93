package components

import (
	"fmt"
	"strings"
	"testing"

	"caseburn/internal/model"
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func declining() RunwaySeries {
	return RunwaySeries{
		Actual:  []float64{10000, 8000, 6000, 4000, 2000, 0, 0},
		Ideal:   []float64{10000, 7500, 5000, 2500, 0, 0, 0},
		Labels:  []string{"W0", "W1", "W2", "W3", "W4", "W5", "W6"},
		PlanEnd: 4,
	}
}

func TestRunwayChartDrawsBothSeriesAndPlanEnd(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := RunwayChart(declining(), theme.Active.Green, 60, 6)
	if h := lipgloss.Height(out); h != 9 {
		t.Errorf("height = %d, want 6 plot rows + axis + labels + legend:\n%s", h, out)
	}
	for _, want := range []string{"$10,000", "$0", "W0", "plan end", glyphIdeal, glyphPlanEnd, "┴", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q:\n%s", want, out)
		}
	}
}

func TestRunwayChartSamplesLongSeries(t *testing.T) {
	s := RunwaySeries{PlanEnd: -1}
	for i := 0; i < 200; i++ {
		s.Actual = append(s.Actual, float64(200-i))
		s.Labels = append(s.Labels, "L")
	}

	out := RunwayChart(s, theme.Active.Green, 40, 4)
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line width %d exceeds 40: %q", w, line)
		}
	}
	if strings.Contains(out, "┴") {
		t.Error("plan end tick drawn for a series without a plan end")
	}
}

func TestRunwayChartNarrowFallsBackToSparkline(t *testing.T) {
	out := RunwayChart(declining(), theme.Active.Blue, 10, 8)
	if lipgloss.Height(out) != 1 {
		t.Errorf("narrow chart should be a single-line sparkline, got:\n%s", out)
	}
	if RunwayChart(RunwaySeries{}, theme.Active.Blue, 60, 6) != "" {
		t.Error("empty series should render nothing")
	}
}

func TestSparklineAllNonPositive(t *testing.T) {
	out := Sparkline([]float64{0, -5, 0}, theme.Active.Blue)
	if w := lipgloss.Width(out); w != 3 {
		t.Errorf("sparkline width = %d, want 3", w)
	}
}

func TestSampleIndexes(t *testing.T) {
	tests := []struct {
		n, w int
		want []int
	}{
		{1, 10, []int{0}},
		{3, 10, []int{0, 1, 2}},
		{5, 3, []int{0, 2, 4}},
		{10, 2, []int{0, 9}},
	}
	for _, tt := range tests {
		got := sampleIndexes(tt.n, tt.w)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("sampleIndexes(%d, %d) = %v, want %v", tt.n, tt.w, got, tt.want)
		}
	}
}

func TestRunwayFraction(t *testing.T) {
	tests := []struct {
		runway, left float64
		want         float64
	}{
		{999, 10, 1},
		{5, 10, 0.5},
		{0, 10, 0},
		{3, 0, 1},
	}
	for _, tt := range tests {
		m := model.ClientMetrics{RunwayWeeks: tt.runway, WeeksRemaining: tt.left}
		if got := RunwayFraction(m); got != tt.want {
			t.Errorf("RunwayFraction(%v/%v) = %v, want %v", tt.runway, tt.left, got, tt.want)
		}
	}
}

func TestRunwayBarShowsWeeks(t *testing.T) {
	m := model.ClientMetrics{RunwayWeeks: 999, WeeksRemaining: 20, Status: model.RobustSurplus}
	out := RunwayBar("Runway", m, 8, 20)
	if !strings.Contains(out, "∞") || !strings.Contains(out, "20.0 wks") {
		t.Errorf("unexpected runway bar: %q", out)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('c'); got != 1 {
		t.Errorf("TabIdxByKey('c') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}
