// Package chart renders the dashboard sales trend as a standalone SVG document.
package chart

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/fla-ops/fla/internal/dashboard"
)

// Default viewport for the trend chart.
const (
	DefaultWidth   = 640
	DefaultHeight  = 220
	DefaultPadding = 32.0
	DefaultTicks   = 4
)

// ErrNoPoints is returned when there is nothing to plot.
var ErrNoPoints = errors.New("chart: trend points required")

// Options customises the trend chart.
type Options struct {
	Width     int
	Height    int
	Title     string
	Stroke    string
	Fill      string
	Axis      string
	Grid      string
	Padding   float64
	TickCount int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.TickCount <= 0 {
		o.TickCount = DefaultTicks
	}
	o.Title = fallback(o.Title, "Net sales")
	o.Stroke = fallback(o.Stroke, "#0f766e")
	o.Fill = fallback(o.Fill, "rgba(15,118,110,0.12)")
	o.Axis = fallback(o.Axis, "#475569")
	o.Grid = fallback(o.Grid, "#cbd5e1")
	return o
}

// TrendSVG plots monthly net sales, oldest month on the left. Each point gets a dot
// whose tooltip carries the completed job count.
func TrendSVG(points []dashboard.TrendPoint, opts Options) (string, error) {
	if len(points) == 0 {
		return "", ErrNoPoints
	}
	opts = opts.withDefaults()

	plotW := float64(opts.Width) - 2*opts.Padding
	plotH := float64(opts.Height) - 2*opts.Padding
	if plotW <= 0 || plotH <= 0 {
		return "", errors.New("chart: viewport too small")
	}

	values := make([]float64, len(points))
	maxVal := 0.0
	for i, p := range points {
		values[i] = p.NetSales.InexactFloat64()
		maxVal = math.Max(maxVal, values[i])
	}
	if maxVal == 0 {
		maxVal = 1
	}

	xAt := func(i int) float64 {
		if len(points) == 1 {
			return opts.Padding + plotW/2
		}
		return opts.Padding + float64(i)*plotW/float64(len(points)-1)
	}
	yAt := func(v float64) float64 {
		return opts.Padding + plotH - (math.Max(v, 0)/maxVal)*plotH
	}
	base := opts.Padding + plotH

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="trend-title">`, opts.Width, opts.Height)
	fmt.Fprintf(&b, `<title id="trend-title">%s</title>`, template.HTMLEscapeString(opts.Title))

	for i := 0; i <= opts.TickCount; i++ {
		ratio := float64(i) / float64(opts.TickCount)
		y := base - ratio*plotH
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4"/>`,
			opts.Padding, y, opts.Padding+plotW, y, opts.Grid)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`,
			opts.Padding-6, y+4, opts.Axis, formatTick(maxVal*ratio))
	}
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`, opts.Padding, base, opts.Padding+plotW, base, opts.Axis)

	var path strings.Builder
	for i, v := range values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xAt(i), yAt(v))
	}
	line := strings.TrimSpace(path.String())
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none"/>`, line, xAt(len(values)-1), base, xAt(0), base, opts.Fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round"/>`, line, opts.Stroke)

	for i, p := range points {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %d jobs</title></circle>`,
			xAt(i), yAt(values[i]), opts.Stroke, p.Period, p.CompletedJobs)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
			xAt(i), base+14, opts.Axis, p.Period)
	}
	b.WriteString("</svg>")
	return b.String(), nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func formatTick(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
