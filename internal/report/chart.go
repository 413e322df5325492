// Package report renders analysis reports for a single contract: an HTML
// document with embedded SVG charts, or a plain-text digest for terminals.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/loanlens/pkg/models"
	"github.com/seenimoa/loanlens/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 360)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 40)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 90)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
	Currency     string // currency for money axes
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       360,
		MarginTop:    40,
		MarginRight:  40,
		MarginBottom: 50,
		MarginLeft:   90,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// withDefaults fills a zero config while keeping its title and currency.
func (c ChartConfig) withDefaults() ChartConfig {
	if c.Width != 0 {
		return c
	}
	d := DefaultChartConfig()
	d.Title = c.Title
	d.Currency = c.Currency
	return d
}

// ════════════════════════════════════════════════════════════════════
// Balance Chart
// ════════════════════════════════════════════════════════════════════

// BalanceChart plots the outstanding balance after each period, starting
// from the principal at period 0.
func BalanceChart(principal float64, rows []models.AmortizationRow, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(rows) == 0 {
		return emptySVG(cfg, "No schedule")
	}
	if cfg.Title == "" {
		cfg.Title = "Outstanding Balance"
	}

	values := make([]float64, 0, len(rows)+1)
	labels := make([]string, 0, len(rows)+1)
	values = append(values, principal)
	labels = append(labels, "0")
	for _, r := range rows {
		values = append(values, r.Balance)
		labels = append(labels, fmt.Sprintf("%d", r.Period))
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal < 0.01 {
		maxVal = 1
	}

	px, py, pw, ph := cfg.plotArea()
	n := len(values)

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeMoneyGrid(&sb, cfg, 0, maxVal)

	xAt := func(i int) float64 {
		return float64(px) + float64(i)*float64(pw)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - v/maxVal*float64(ph)
	}

	parts := make([]string, n)
	for i, v := range values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		parts[i] = fmt.Sprintf("%s%.1f,%.1f", cmd, xAt(i), yAt(v))
	}
	// Area fill under the curve
	sb.WriteString(fmt.Sprintf(`<path d="%s L%.1f,%d L%.1f,%d Z" fill="#2563eb" opacity="0.12"/>`,
		strings.Join(parts, " "), xAt(n-1), py+ph, xAt(0), py+ph))
	sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="#2563eb" stroke-width="2"/>`,
		strings.Join(parts, " ")))

	writeXLabels(&sb, cfg, labels, xAt)
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Payment Composition Chart
// ════════════════════════════════════════════════════════════════════

// PaymentChart draws one stacked bar per period: principal, interest and
// maintenance fee.
func PaymentChart(rows []models.AmortizationRow, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(rows) == 0 {
		return emptySVG(cfg, "No schedule")
	}
	if cfg.Title == "" {
		cfg.Title = "Payment Composition"
	}

	maxVal := 0.0
	for _, r := range rows {
		maxVal = math.Max(maxVal, r.Principal+r.Interest+r.Maintenance)
	}
	if maxVal < 0.01 {
		maxVal = 1
	}

	px, py, pw, ph := cfg.plotArea()
	n := len(rows)
	slot := float64(pw) / float64(n)
	barW := math.Min(slot*0.7, 24)

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeMoneyGrid(&sb, cfg, 0, maxVal)

	segments := []struct {
		name  string
		color string
		value func(models.AmortizationRow) float64
	}{
		{"Principal", "#2563eb", func(r models.AmortizationRow) float64 { return r.Principal }},
		{"Interest", "#ea580c", func(r models.AmortizationRow) float64 { return r.Interest }},
		{"Maintenance", "#6b7280", func(r models.AmortizationRow) float64 { return r.Maintenance }},
	}

	for i, r := range rows {
		cx := float64(px) + float64(i)*slot + slot/2
		base := float64(py + ph)
		for _, seg := range segments {
			v := seg.value(r)
			if v <= 0 {
				continue
			}
			h := v / maxVal * float64(ph)
			base -= h
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				cx-barW/2, base, barW, h, seg.color))
		}
	}

	// Legend
	for i, seg := range segments {
		lx := px + 10 + i*110
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`, lx, py-22, seg.color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			lx+16, py-12, cfg.TextColor, seg.name))
	}

	labels := make([]string, n)
	for i, r := range rows {
		labels[i] = fmt.Sprintf("%d", r.Period)
	}
	writeXLabels(&sb, cfg, labels, func(i int) float64 {
		return float64(px) + float64(i)*slot + slot/2
	})
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Horizontal)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional
}

// HorizontalBarChart generates an SVG horizontal bar chart around a zero
// line. Used for the change in interest under each rate scenario.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Comparison"
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal, minVal := 0.0, 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
		minVal = math.Min(minVal, item.Value)
	}
	valRange := maxVal - minVal
	if valRange < 0.001 {
		valRange = 1
	}

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 30)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	writeFrame(&sb, cfg)

	zeroX := float64(px) + (-minVal/valRange)*float64(pw)
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
		zeroX, py, zeroX, py+ph))

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			// Lower interest is good for the borrower.
			color = "#16a34a"
			if item.Value > 0 {
				color = "#dc2626"
			}
		}

		bw := math.Abs(item.Value) / valRange * float64(pw)
		bx := zeroX
		if item.Value < 0 {
			bx = zeroX - bw
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			bx, by, bw, barH, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`,
			bx+bw+5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(utils.FormatMoney(item.Value, cfg.Currency))))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Gauge Chart (market percentile)
// ════════════════════════════════════════════════════════════════════

// GaugeChart draws a semicircular gauge for a 0-100 market percentile.
// Low percentiles mean a cheaper rate and are drawn green.
func GaugeChart(value float64, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	radius := float64(width)/2 - 20

	value = math.Max(0, math.Min(100, value))

	angle := math.Pi - (value/100)*math.Pi
	needleX := cx + radius*0.85*math.Cos(angle)
	needleY := cy - radius*0.85*math.Sin(angle)

	var color string
	switch {
	case value < 25:
		color = "#16a34a"
	case value < 50:
		color = "#84cc16"
	case value < 75:
		color = "#f59e0b"
	default:
		color = "#dc2626"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, width, height))

	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, cx+radius, cy))

	endX := cx + radius*math.Cos(angle)
	endY := cy - radius*math.Sin(angle)
	largeArc := 0
	if value > 50 {
		largeArc = 1
	}
	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, largeArc, endX, endY, color))

	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
		cx, cy, needleX, needleY))
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy))

	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="22" font-weight="bold" fill="%s" text-anchor="middle">%.0f</text>`,
		cx, cy+25, color, value))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label)))

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

// writeFrame opens the SVG and draws the background and title.
func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
}

// writeMoneyGrid draws horizontal grid lines labelled with money amounts.
func writeMoneyGrid(sb *strings.Builder, cfg ChartConfig, minVal, maxVal float64) {
	px, py, pw, ph := cfg.plotArea()
	const gridLines = 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + (maxVal-minVal)*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, escapeXML(utils.FormatMoneyCompact(val, cfg.Currency))))
	}
}

// writeXLabels writes at most about a dozen evenly spaced axis labels.
func writeXLabels(sb *strings.Builder, cfg ChartConfig, labels []string, xAt func(int) float64) {
	_, py, _, ph := cfg.plotArea()
	interval := len(labels) / 12
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < len(labels); i += interval {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xAt(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i])))
	}
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
