package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/internal/finance"
	"github.com/seenimoa/loanlens/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

var fixedClock = func() time.Time { return time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC) }

func sampleRows(n int) []models.AmortizationRow {
	rows := make([]models.AmortizationRow, n)
	balance := 100000.0
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		interest := balance * 0.01
		principal := 100000.0 / float64(n)
		balance -= principal
		rows[i] = models.AmortizationRow{
			Period:    i + 1,
			Date:      start.AddDate(0, 0, 30*(i+1)),
			Payment:   principal + interest,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		}
	}
	return rows
}

func sampleReport() *analysis.Report {
	floor, capRate := 4.5, 6.0
	ct := models.NewContract()
	ct.Lender = "First Bank"
	ct.Borrower = "Acme Corp"
	ct.Principal = 100000
	ct.NominalRate = 5
	ct.RateType = models.RateVariable
	ct.Index = "SOFR"
	ct.Floor = &floor
	ct.Cap = &capRate
	ct.TermMonths = 12
	ct.Confidence = 0.8
	ct.Warnings = []string{"no jurisdiction found"}

	res := models.FinancialResult{
		EffectiveAnnualRate: 5.12,
		TotalAnnualCost:     2.73,
		TotalInterest:       2728.98,
		TotalCost:           102728.98,
		FirstPayment:        8560.75,
		Schedule:            sampleRows(12),
		IRR:                 5.12,
		Market: models.MarketComparison{
			SizeTier:      models.SizeSmall,
			TermTier:      models.TermShort,
			Delta:         -13.38,
			Percentile:    0,
			Evaluation:    models.MarketVeryCompetitive,
			MarketAverage: 18.5,
			MarketRange:   "14.00% - 24.00%",
			HasData:       true,
		},
		Sensitivity: &models.SensitivityReport{
			Scenarios: []models.SensitivityScenario{
				{Shift: -1, Label: "-1%", Rate: 4.5, MeanPayment: 8538.0, TotalInterest: 2454.23, DeltaInterest: -274.75},
				{Shift: 0, Label: "+0%", Rate: 5, MeanPayment: 8560.75, TotalInterest: 2728.98},
				{Shift: 2, Label: "+2%", Rate: 6, MeanPayment: 8606.64, TotalInterest: 3279.73, DeltaInterest: 550.75},
			},
			HasCap: true, HasFloor: true, Cap: &capRate, Floor: &floor, Index: "SOFR",
		},
	}

	return &analysis.Report{
		ID:               "rep-123",
		Source:           "acme.txt",
		Contract:         ct,
		Result:           res,
		FinancialSummary: finance.Summarize(ct, res),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Now = fixedClock
	return cfg
}

// ════════════════════════════════════════════════════════════════════
// Chart Tests
// ════════════════════════════════════════════════════════════════════

func TestBalanceChart_Basic(t *testing.T) {
	svg := BalanceChart(100000, sampleRows(12), ChartConfig{Currency: "USD"})
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not a complete SVG: %.60s", svg)
	}
	if !strings.Contains(svg, "Outstanding Balance") {
		t.Error("missing default title")
	}
	if !strings.Contains(svg, "$100K") {
		t.Error("missing compact money axis label")
	}
}

func TestBalanceChart_Empty(t *testing.T) {
	svg := BalanceChart(100000, nil, DefaultChartConfig())
	if !strings.Contains(svg, "No schedule") {
		t.Error("empty schedule should render a placeholder")
	}
}

func TestBalanceChart_SinglePeriod(t *testing.T) {
	svg := BalanceChart(500000, sampleRows(1), DefaultChartConfig())
	if !strings.Contains(svg, "<path") {
		t.Error("single period should still draw a line")
	}
}

func TestPaymentChart_Stacks(t *testing.T) {
	rows := sampleRows(6)
	rows[0].Maintenance = 100
	svg := PaymentChart(rows, DefaultChartConfig())
	// 6 principal + 6 interest + 1 maintenance + 3 legend swatches + background
	if got := strings.Count(svg, "<rect"); got != 17 {
		t.Errorf("rect count = %d, want 17", got)
	}
	for _, name := range []string{"Principal", "Interest", "Maintenance"} {
		if !strings.Contains(svg, name) {
			t.Errorf("legend missing %s", name)
		}
	}
}

func TestPaymentChart_Empty(t *testing.T) {
	if svg := PaymentChart(nil, ChartConfig{}); !strings.Contains(svg, "No schedule") {
		t.Error("empty schedule should render a placeholder")
	}
}

func TestHorizontalBarChart_WithNegative(t *testing.T) {
	items := []BarItem{{Label: "-1%", Value: -274.75}, {Label: "+2%", Value: 550.75}}
	svg := HorizontalBarChart(items, ChartConfig{Currency: "USD"})
	if !strings.Contains(svg, "#16a34a") || !strings.Contains(svg, "#dc2626") {
		t.Error("expected both savings and cost colors")
	}
	if !strings.Contains(svg, "-$274.75") || !strings.Contains(svg, "$550.75") {
		t.Error("bar values should be formatted as money")
	}
}

func TestHorizontalBarChart_Empty(t *testing.T) {
	if svg := HorizontalBarChart(nil, ChartConfig{}); !strings.Contains(svg, "No data") {
		t.Error("expected placeholder")
	}
}

func TestGaugeChart_Values(t *testing.T) {
	cases := []struct {
		value float64
		color string
	}{
		{10, "#16a34a"},
		{36, "#84cc16"},
		{60, "#f59e0b"},
		{90, "#dc2626"},
		{150, "#dc2626"},
	}
	for _, c := range cases {
		svg := GaugeChart(c.value, "Market percentile", 200)
		if !strings.Contains(svg, c.color) {
			t.Errorf("GaugeChart(%v) missing color %s", c.value, c.color)
		}
	}
	if svg := GaugeChart(-5, "x", 0); !strings.Contains(svg, ">0</text>") {
		t.Error("negative value should clamp to 0")
	}
}

func TestEscapeXML(t *testing.T) {
	got := escapeXML(`A&B <"C">`)
	want := "A&amp;B &lt;&quot;C&quot;&gt;"
	if got != want {
		t.Errorf("escapeXML = %q, want %q", got, want)
	}
}

func TestPlotArea(t *testing.T) {
	x, y, w, h := DefaultChartConfig().plotArea()
	if x != 90 || y != 40 || w != 670 || h != 270 {
		t.Errorf("plotArea = %d,%d,%d,%d", x, y, w, h)
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Tests
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML_Basic(t *testing.T) {
	html, err := GenerateHTML(sampleReport(), testConfig())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Loan Analysis: Acme Corp",
		"First Bank",
		"$100,000.00",
		"SOFR",
		"Amortization Schedule",
		"Rate Sensitivity",
		"+$550.75",
		"market-box good",
		"no jurisdiction found",
		"01 Mar 2025 10:30 UTC",
		"rep-123",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestGenerateHTML_NilReport(t *testing.T) {
	if _, err := GenerateHTML(nil, testConfig()); err != ErrNoReport {
		t.Errorf("err = %v, want ErrNoReport", err)
	}
}

func TestGenerateHTML_SelectedSections(t *testing.T) {
	cfg := testConfig()
	cfg.Sections = []Section{SectionCost}
	html, err := GenerateHTML(sampleReport(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "Cost of Credit") {
		t.Error("cost section missing")
	}
	for _, absent := range []string{"Contract Terms", "Amortization Schedule", "Rate Sensitivity", "Market Position"} {
		if strings.Contains(html, absent) {
			t.Errorf("section %q should be excluded", absent)
		}
	}
}

func TestGenerateHTML_EscapesContractText(t *testing.T) {
	rep := sampleReport()
	rep.Contract.Borrower = "<script>alert(1)</script>"
	html, err := GenerateHTML(rep, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("borrower name must be escaped")
	}
}

func TestGenerateHTML_FixedRateHasNoSensitivity(t *testing.T) {
	rep := sampleReport()
	rep.Result.Sensitivity = nil
	html, err := GenerateHTML(rep, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "Rate Sensitivity") {
		t.Error("fixed-rate report should not show sensitivity")
	}
}

func TestGenerateText_Basic(t *testing.T) {
	text, err := GenerateText(sampleReport(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"CONTRACT TERMS", "COST OF CREDIT", "MARKET POSITION", "RATE SENSITIVITY", "Source: acme.txt", "$2,728.98"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if strings.Contains(text, "<svg") {
		t.Error("text report should not contain SVG")
	}
}

func TestGenerate_Formats(t *testing.T) {
	rep := sampleReport()
	for _, f := range []Format{FormatHTML, FormatText} {
		if _, err := Generate(rep, f, testConfig()); err != nil {
			t.Errorf("Generate(%s): %v", f, err)
		}
	}
	if _, err := Generate(rep, "pdf", testConfig()); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatHTML, "HTML": FormatHTML, "txt": FormatText, "text": FormatText}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("expected error for docx")
	}
}

func TestHasSection(t *testing.T) {
	if !(Config{}).hasSection(SectionMarket) {
		t.Error("empty section list means all sections")
	}
	cfg := Config{Sections: []Section{SectionTerms}}
	if cfg.hasSection(SectionMarket) {
		t.Error("market should be excluded")
	}
}

func TestMarketClass(t *testing.T) {
	cases := map[models.MarketEvaluation]string{
		models.MarketVeryCompetitive: "good",
		models.MarketCompetitive:     "good",
		models.MarketSlightlyHigh:    "fair",
		models.MarketHigh:            "poor",
		models.MarketNoData:          "none",
	}
	for eval, want := range cases {
		if got := marketClass(models.MarketComparison{Evaluation: eval}); got != want {
			t.Errorf("marketClass(%s) = %s, want %s", eval, got, want)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Full Pipeline
// ════════════════════════════════════════════════════════════════════

const pipelineLoan = `LENDER: First Bank
BORROWER: Acme Corp
The Lender agrees to lend $100,000.00 to the Borrower.
Interest rate: 12% fixed annual.
Term: 12 months with monthly payments.`

func TestFullReportPipeline_WriteToDisk(t *testing.T) {
	a := analysis.New(nil, nil, analysis.Options{}, nil)
	rep, err := a.Analyze(context.Background(), pipelineLoan, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	html, err := GenerateHTML(rep, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "$8,884.88") {
		t.Error("report should show the first payment")
	}

	path := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("report not written: %v", err)
	}
}
