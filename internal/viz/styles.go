package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).Padding(0, 2).Width(46)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Width(14)
	valueStyle  = lipgloss.NewStyle()
	activeStyle = lipgloss.NewStyle().Bold(true)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().MarginTop(1)

	StatusRunning   = lipgloss.NewStyle().Bold(true)
	StatusPaused    = lipgloss.NewStyle().Bold(true)
	StatusRecording = lipgloss.NewStyle().Bold(true).Blink(true)

	SparkHigh = lipgloss.NewStyle()
	SparkMid  = lipgloss.NewStyle()
	SparkLow  = lipgloss.NewStyle()
)

func init() {
	applyTheme(CurrentTheme)
}

// applyTheme recolors the shared styles.
func applyTheme(t Theme) {
	statsStyle = statsStyle.BorderForeground(t.Muted)
	headerStyle = headerStyle.Foreground(t.Secondary)
	labelStyle = labelStyle.Foreground(t.Muted)
	valueStyle = valueStyle.Foreground(t.Text)
	activeStyle = activeStyle.Foreground(t.Primary)
	graphStyle = graphStyle.Foreground(t.Secondary)
	helpStyle = helpStyle.Foreground(t.Muted)

	StatusRunning = StatusRunning.Foreground(t.Success)
	StatusPaused = StatusPaused.Foreground(t.Warning)
	StatusRecording = StatusRecording.Foreground(t.Error)

	SparkHigh = SparkHigh.Foreground(t.Success)
	SparkMid = SparkMid.Foreground(t.Warning)
	SparkLow = SparkLow.Foreground(t.Error)
}

// GradientText creates a gradient effect on text using color interpolation
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	var result strings.Builder
	runes := []rune(text)
	n := len(runes)

	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		b := int(float64(sb) + t*float64(eb-sb))

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(r, g, b)))
		result.WriteString(style.Render(string(c)))
	}

	return result.String()
}

// Bar renders value/max as a fixed-width bar tinted by the given color.
func Bar(value, max float64, width int, col lipgloss.Color) string {
	ratio := 0.0
	if max > 0 {
		ratio = value / max
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return lipgloss.NewStyle().Foreground(col).Render(strings.Repeat("█", filled)) +
		labelStyle.UnsetWidth().Render(strings.Repeat("░", width-filled))
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rng := max - min
	if rng == 0 {
		rng = 1
	}

	// newest values win when there are more than fit
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}

		c := chars[idx]
		if norm > 0.7 {
			result.WriteString(SparkHigh.Render(string(c)))
		} else if norm > 0.3 {
			result.WriteString(SparkMid.Render(string(c)))
		} else {
			result.WriteString(SparkLow.Render(string(c)))
		}
	}

	return result.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	r = parseHexByte(hex[1:3])
	g = parseHexByte(hex[3:5])
	b = parseHexByte(hex[5:7])
	return
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		if c >= '0' && c <= '9' {
			val += int(c - '0')
		} else if c >= 'a' && c <= 'f' {
			val += int(c - 'a' + 10)
		} else if c >= 'A' && c <= 'F' {
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
