package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/pkg/models"
	"github.com/seenimoa/loanlens/pkg/utils"
)

// ErrNoReport is returned when there is nothing to render.
var ErrNoReport = errors.New("report: analysis report is nil")

// ════════════════════════════════════════════════════════════════════
// Report Generator
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", s)
	}
}

// Section identifies a section to include or exclude.
type Section string

const (
	SectionTerms       Section = "terms"
	SectionCost        Section = "cost"
	SectionMarket      Section = "market"
	SectionSchedule    Section = "schedule"
	SectionSensitivity Section = "sensitivity"
	SectionWarnings    Section = "warnings"
)

// AllSections returns all report sections in display order.
func AllSections() []Section {
	return []Section{
		SectionTerms,
		SectionCost,
		SectionMarket,
		SectionSchedule,
		SectionSensitivity,
		SectionWarnings,
	}
}

// Config controls report generation.
type Config struct {
	Sections []Section  // sections to include (default: all)
	Title    string     // custom report title (optional)
	Author   string     // author line (optional, default: "loanlens")
	ChartCfg ChartConfig
	Now      func() time.Time // clock for the generated-at line (default: time.Now)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sections: AllSections(),
		Author:   "loanlens",
		ChartCfg: DefaultChartConfig(),
	}
}

func (c Config) hasSection(s Section) bool {
	if len(c.Sections) == 0 {
		return true
	}
	for _, sec := range c.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Data (flattened for template rendering)
// ════════════════════════════════════════════════════════════════════

// Data is the template model passed to the HTML template.
type Data struct {
	Title       string
	ReportID    string
	Source      string
	Author      string
	GeneratedAt string

	Lender     string
	Borrower   string
	Confidence string

	Terms []Row
	Cost  []Row

	// Market position
	MarketEvaluation string
	MarketClass      string // CSS class: good, fair, poor, none
	MarketRows       []Row
	HasMarket        bool

	Schedule []ScheduleRow
	Critical []Row

	Sensitivity []ScenarioRow

	Warnings []string

	BalanceChart     template.HTML
	PaymentChart     template.HTML
	GaugeChart       template.HTML
	SensitivityChart template.HTML

	ShowTerms       bool
	ShowCost        bool
	ShowMarket      bool
	ShowSchedule    bool
	ShowSensitivity bool
	ShowWarnings    bool
}

// Row is a label/value pair.
type Row struct {
	Label string
	Value string
}

// ScheduleRow is one formatted amortization period.
type ScheduleRow struct {
	Period      int
	Date        string
	Payment     string
	Principal   string
	Interest    string
	Maintenance string
	Balance     string
}

// ScenarioRow is one formatted sensitivity scenario.
type ScenarioRow struct {
	Label       string
	Rate        string
	MeanPayment string
	Interest    string
	Delta       string
	DeltaClass  string // CSS class: up, down, flat
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// Generate renders rep in the requested format.
func Generate(rep *analysis.Report, format Format, cfg Config) (string, error) {
	switch format {
	case FormatText:
		return GenerateText(rep, cfg)
	case FormatHTML, "":
		return GenerateHTML(rep, cfg)
	default:
		return "", fmt.Errorf("report: unknown format %q", format)
	}
}

// GenerateHTML renders an HTML report with embedded SVG charts.
func GenerateHTML(rep *analysis.Report, cfg Config) (string, error) {
	if rep == nil {
		return "", ErrNoReport
	}

	data := buildData(rep, cfg)

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text report for terminals.
func GenerateText(rep *analysis.Report, cfg Config) (string, error) {
	if rep == nil {
		return "", ErrNoReport
	}
	return renderText(buildData(rep, cfg)), nil
}

// ════════════════════════════════════════════════════════════════════
// Build template data
// ════════════════════════════════════════════════════════════════════

func buildData(rep *analysis.Report, cfg Config) Data {
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	if cfg.Author == "" {
		cfg.Author = "loanlens"
	}

	ct := rep.Contract
	res := rep.Result
	cur := ct.Currency
	money := func(v float64) string { return utils.FormatMoney(v, cur) }

	data := Data{
		Title:       cfg.Title,
		ReportID:    rep.ID,
		Source:      rep.Source,
		Author:      cfg.Author,
		GeneratedAt: now().UTC().Format("02 Jan 2006 15:04 UTC"),
		Lender:      orDash(ct.Lender),
		Borrower:    orDash(ct.Borrower),
		Confidence:  fmt.Sprintf("%.0f%%", ct.Confidence*100),
		Warnings:    ct.Warnings,

		ShowTerms:       cfg.hasSection(SectionTerms),
		ShowCost:        cfg.hasSection(SectionCost),
		ShowMarket:      cfg.hasSection(SectionMarket),
		ShowSchedule:    cfg.hasSection(SectionSchedule) && len(res.Schedule) > 0,
		ShowSensitivity: cfg.hasSection(SectionSensitivity) && res.Sensitivity != nil,
		ShowWarnings:    cfg.hasSection(SectionWarnings) && len(ct.Warnings) > 0,
	}
	if data.Title == "" {
		data.Title = "Loan Analysis"
		if ct.Borrower != "" {
			data.Title = "Loan Analysis: " + ct.Borrower
		}
	}

	data.Terms = termRows(ct)

	fs := rep.FinancialSummary
	irr := utils.FormatRate(res.IRR)
	if res.IRRFallback {
		irr += " (EAR)"
	}
	data.Cost = []Row{
		{"First payment", money(res.FirstPayment)},
		{"Installments", fmt.Sprintf("%d", len(res.Schedule))},
		{"Total interest", money(res.TotalInterest)},
		{"Total fees", money(res.TotalFees)},
		{"Total cost", money(res.TotalCost)},
		{"Cost per 100 borrowed", fmt.Sprintf("%.2f", fs.Executive.CostPer100)},
		{"Effective annual rate", utils.FormatRate(res.EffectiveAnnualRate)},
		{"Total annual cost (CAT)", utils.FormatRate(res.TotalAnnualCost)},
		{"IRR", irr},
		{"NPV", money(res.NPV)},
	}

	m := res.Market
	data.HasMarket = m.HasData
	data.MarketEvaluation = string(m.Evaluation)
	data.MarketClass = marketClass(m)
	if m.HasData {
		data.MarketRows = []Row{
			{"Segment", m.SizeTier + " / " + m.TermTier},
			{"Market average", utils.FormatRate(m.MarketAverage)},
			{"Market range", m.MarketRange},
			{"Difference", utils.FormatPct(m.Delta)},
			{"Percentile", fmt.Sprintf("%d", m.Percentile)},
		}
		data.GaugeChart = template.HTML(GaugeChart(float64(m.Percentile), "Market percentile", 200))
	}

	chartCfg := cfg.ChartCfg
	chartCfg.Currency = cur
	if data.ShowSchedule {
		data.Schedule = make([]ScheduleRow, len(res.Schedule))
		for i, r := range res.Schedule {
			data.Schedule[i] = ScheduleRow{
				Period:      r.Period,
				Date:        r.Date.Format("2006-01-02"),
				Payment:     money(r.Payment),
				Principal:   money(r.Principal),
				Interest:    money(r.Interest),
				Maintenance: money(r.Maintenance),
				Balance:     money(r.Balance),
			}
		}
		for _, cp := range fs.CriticalPeriods {
			data.Critical = append(data.Critical, Row{
				Label: fmt.Sprintf("Period %d (%s)", cp.Period, cp.Date.Format("2006-01-02")),
				Value: money(cp.Payment) + ", " + cp.Reason,
			})
		}

		bc := chartCfg
		bc.Title = "Outstanding Balance"
		data.BalanceChart = template.HTML(BalanceChart(ct.Principal, res.Schedule, bc))
		pc := chartCfg
		pc.Title = "Payment Composition"
		data.PaymentChart = template.HTML(PaymentChart(res.Schedule, pc))
	}

	if data.ShowSensitivity {
		items := make([]BarItem, 0, len(res.Sensitivity.Scenarios))
		for _, s := range res.Sensitivity.Scenarios {
			row := ScenarioRow{
				Label:       s.Label,
				Rate:        utils.FormatRate(s.Rate),
				MeanPayment: money(s.MeanPayment),
				Interest:    money(s.TotalInterest),
				Delta:       money(s.DeltaInterest),
				DeltaClass:  "flat",
			}
			switch {
			case s.DeltaInterest > 0:
				row.Delta = "+" + row.Delta
				row.DeltaClass = "up"
			case s.DeltaInterest < 0:
				row.DeltaClass = "down"
			}
			data.Sensitivity = append(data.Sensitivity, row)
			items = append(items, BarItem{Label: s.Label, Value: s.DeltaInterest})
		}
		sc := chartCfg
		sc.Title = "Change in Total Interest"
		data.SensitivityChart = template.HTML(HorizontalBarChart(items, sc))
	}

	return data
}

func termRows(ct models.Contract) []Row {
	rows := []Row{
		{"Principal", utils.FormatMoney(ct.Principal, ct.Currency)},
		{"Currency", ct.Currency},
		{"Nominal rate", utils.FormatRate(ct.NominalRate)},
		{"Rate type", string(ct.RateType)},
	}
	if ct.IsVariable() {
		if ct.Index != "" {
			rows = append(rows, Row{"Index", ct.Index})
		}
		if ct.SpreadBps != nil {
			rows = append(rows, Row{"Spread", utils.FormatBps(*ct.SpreadBps)})
		}
		if ct.Floor != nil {
			rows = append(rows, Row{"Floor", utils.FormatRate(*ct.Floor)})
		}
		if ct.Cap != nil {
			rows = append(rows, Row{"Cap", utils.FormatRate(*ct.Cap)})
		}
	}
	rows = append(rows,
		Row{"Term", fmt.Sprintf("%d months", ct.TermMonths)},
		Row{"Frequency", string(ct.Frequency)},
	)
	if ct.GraceMonths > 0 {
		rows = append(rows, Row{"Grace period", fmt.Sprintf("%d months", ct.GraceMonths)})
	}
	if ct.Bullet {
		rows = append(rows, Row{"Repayment", "bullet"})
	}
	if ct.IsMultiTranche() {
		rows = append(rows, Row{"Tranches", fmt.Sprintf("%d", len(ct.Tranches))})
	}
	rows = append(rows, Row{"Guarantees", string(ct.GuaranteeCategory)})
	for _, f := range ct.Fees {
		val := utils.FormatMoney(f.Value, ct.Currency)
		if f.IsPercentage {
			val = fmt.Sprintf("%.2f%%", f.Value)
		}
		rows = append(rows, Row{"Fee: " + string(f.Type), val})
	}
	if p := ct.Prepayment; p != nil {
		val := "not permitted"
		if p.Permitted {
			val = fmt.Sprintf("permitted, %.2f%% penalty", p.PenaltyPct)
			if p.WindowMonths > 0 {
				val += fmt.Sprintf(" within %d months", p.WindowMonths)
			}
		}
		rows = append(rows, Row{"Prepayment", val})
	}
	if len(ct.Covenants) > 0 {
		rows = append(rows, Row{"Covenants", fmt.Sprintf("%d", len(ct.Covenants))})
	}
	if ct.CrossDefault {
		rows = append(rows, Row{"Cross default", "yes"})
	}
	if ct.Jurisdiction != "" {
		rows = append(rows, Row{"Jurisdiction", ct.Jurisdiction})
	}
	return rows
}

func marketClass(m models.MarketComparison) string {
	switch m.Evaluation {
	case models.MarketVeryCompetitive, models.MarketCompetitive:
		return "good"
	case models.MarketSlightlyHigh:
		return "fair"
	case models.MarketHigh:
		return "poor"
	default:
		return "none"
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderText(d Data) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	if d.Source != "" {
		sb.WriteString(fmt.Sprintf("  Source: %s\n", d.Source))
	}
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  Lender: %s | Borrower: %s\n", d.Lender, d.Borrower))
	sb.WriteString(fmt.Sprintf("  Extraction confidence: %s\n", d.Confidence))
	sb.WriteString(thinLine + "\n")

	writeRows := func(title string, rows []Row) {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-26s %s\n", r.Label, r.Value))
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowTerms {
		writeRows("CONTRACT TERMS", d.Terms)
	}
	if d.ShowCost {
		writeRows("COST OF CREDIT", d.Cost)
	}
	if d.ShowMarket {
		sb.WriteString("\n  ■ MARKET POSITION\n")
		sb.WriteString(fmt.Sprintf("  %s\n", d.MarketEvaluation))
		for _, r := range d.MarketRows {
			sb.WriteString(fmt.Sprintf("    %-26s %s\n", r.Label, r.Value))
		}
		sb.WriteString(thinLine + "\n")
	}
	if d.ShowSchedule {
		sb.WriteString("\n  ■ AMORTIZATION SCHEDULE\n")
		sb.WriteString(fmt.Sprintf("    %6s  %-10s  %14s  %14s  %14s  %16s\n",
			"Period", "Date", "Payment", "Principal", "Interest", "Balance"))
		for _, r := range d.Schedule {
			sb.WriteString(fmt.Sprintf("    %6d  %-10s  %14s  %14s  %14s  %16s\n",
				r.Period, r.Date, r.Payment, r.Principal, r.Interest, r.Balance))
		}
		for _, r := range d.Critical {
			sb.WriteString(fmt.Sprintf("    ! %s: %s\n", r.Label, r.Value))
		}
		sb.WriteString(thinLine + "\n")
	}
	if d.ShowSensitivity {
		sb.WriteString("\n  ■ RATE SENSITIVITY\n")
		for _, s := range d.Sensitivity {
			sb.WriteString(fmt.Sprintf("    %-6s %8s  payment %14s  interest %14s  (%s)\n",
				s.Label, s.Rate, s.MeanPayment, s.Interest, s.Delta))
		}
		sb.WriteString(thinLine + "\n")
	}
	if d.ShowWarnings {
		sb.WriteString("\n  ■ WARNINGS\n")
		for _, w := range d.Warnings {
			sb.WriteString(fmt.Sprintf("    - %s\n", w))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Figures are estimates derived from the contract text.\n")
	sb.WriteString("  Verify against the executed agreement before relying on them.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}
