package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/quantasim/internal/particle"
)

const (
	background = "#0a0a0a"
	wellColor  = "#FF3366"
)

// SVG renders a frame of the field: gravity wells as dashed rings at their
// radius, particle trails as fading polylines, particles as circles scaled
// by their glow.
func SVG(w io.Writer, ps []particle.Particle, wells []particle.GravityWell, width, height float64) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	if len(wells) > 0 {
		sb.WriteString(`<g fill="none" stroke-dasharray="6 4">` + "\n")
		for _, wl := range wells {
			stroke := wellColor
			if wl.Strength < 0 {
				stroke = "#33CCFF"
			}
			opacity := 0.6
			if !wl.Active {
				opacity = 0.2
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" stroke="%s" stroke-opacity="%.2f"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="%s" stroke="none"/>
`, wl.X, wl.Y, wl.Radius, stroke, opacity, wl.X, wl.Y, stroke))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString(`<g stroke-linecap="round">` + "\n")
	for i := range ps {
		writeTrail(&sb, &ps[i])
	}
	sb.WriteString("</g>\n<g>\n")
	for i := range ps {
		p := &ps[i]
		if !p.Finite() {
			continue
		}
		c := particle.ConstantsFor(p.Type)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.2f"/>
`, p.X, p.Y, p.Size, colorOf(p), 0.5+c.Glow/2))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeTrail draws one segment per consecutive trail pair, faded by the
// older sample's opacity. Segments that jump across a wrapped edge are
// skipped.
func writeTrail(sb *strings.Builder, p *particle.Particle) {
	if len(p.Trail) < 2 {
		return
	}
	col := colorOf(p)
	for i := 1; i < len(p.Trail); i++ {
		a, b := p.Trail[i-1], p.Trail[i]
		if math.Abs(a.X-b.X) > 100 || math.Abs(a.Y-b.Y) > 100 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.2f" stroke-width="%.2f"/>
`, a.X, a.Y, b.X, b.Y, col, b.Opacity, math.Max(p.Size/2, 0.5)))
	}
}

func colorOf(p *particle.Particle) string {
	if p.Color != "" {
		return p.Color
	}
	return particle.ConstantsFor(p.Type).Color
}

// SeriesToSVG draws values as a polyline over width x height, padded by a
// tenth of the value range.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	step := float64(width) / float64(len(values)-1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
