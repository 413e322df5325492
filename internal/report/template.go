package report

// htmlTemplate is the HTML template for the analysis report.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }

  .kv-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(260px, 1fr));
    gap: 8px;
    margin: 10px 0 16px;
  }
  .kv-card {
    background: var(--section-bg);
    padding: 8px 12px;
    border-radius: 6px;
    display: flex;
    justify-content: space-between;
  }
  .kv-card .label { color: var(--muted); font-size: 0.85rem; }
  .kv-card .value { font-weight: 600; }

  .market-box {
    display: flex;
    align-items: center;
    gap: 16px;
    padding: 16px;
    border-radius: 8px;
    margin: 12px 0;
  }
  .market-box.good { background: #dcfce7; border-left: 5px solid var(--green); }
  .market-box.fair { background: #fefce8; border-left: 5px solid #eab308; }
  .market-box.poor { background: #fef2f2; border-left: 5px solid var(--red); }
  .market-box.none { background: var(--section-bg); border-left: 5px solid var(--muted); }
  .market-label { font-size: 1.1rem; font-weight: 700; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.85rem; }
  th { background: var(--section-bg); text-align: right; padding: 6px 8px; font-weight: 600; }
  td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; font-variant-numeric: tabular-nums; }
  th:first-child, td:first-child { text-align: left; }
  .up { color: var(--red); }
  .down { color: var(--green); }
  .flat { color: var(--muted); }

  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .section { margin: 20px 0; }
  .warnings li { margin-left: 20px; color: var(--orange); }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p class="muted">Lender: {{.Lender}} · Borrower: {{.Borrower}} · Extraction confidence: {{.Confidence}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}}</p>
    {{if .Source}}<p class="muted">{{.Source}}</p>{{end}}
  </div>
</div>

<!-- ═══════ TERMS ═══════ -->
{{if .ShowTerms}}
<div class="section">
  <h2>Contract Terms</h2>
  <div class="kv-grid">
    {{range .Terms}}<div class="kv-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>
    {{end}}
  </div>
</div>
{{end}}

<!-- ═══════ COST ═══════ -->
{{if .ShowCost}}
<div class="section">
  <h2>Cost of Credit</h2>
  <div class="kv-grid">
    {{range .Cost}}<div class="kv-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>
    {{end}}
  </div>
</div>
{{end}}

<!-- ═══════ MARKET ═══════ -->
{{if .ShowMarket}}
<div class="section">
  <h2>Market Position</h2>
  <div class="market-box {{.MarketClass}}">
    {{if .HasMarket}}<div>{{.GaugeChart}}</div>{{end}}
    <div>
      <div class="market-label">{{.MarketEvaluation}}</div>
      {{range .MarketRows}}<div class="muted">{{.Label}}: {{.Value}}</div>{{end}}
    </div>
  </div>
</div>
{{end}}

<!-- ═══════ SCHEDULE ═══════ -->
{{if .ShowSchedule}}
<div class="section">
  <h2>Amortization Schedule</h2>
  <div class="chart-container">{{.BalanceChart}}</div>
  <div class="chart-container">{{.PaymentChart}}</div>
  {{if .Critical}}
  <ul class="warnings">
    {{range .Critical}}<li>{{.Label}}: {{.Value}}</li>{{end}}
  </ul>
  {{end}}
  <table>
    <thead><tr><th>Period</th><th>Date</th><th>Payment</th><th>Principal</th><th>Interest</th><th>Maintenance</th><th>Balance</th></tr></thead>
    <tbody>
    {{range .Schedule}}
    <tr><td>{{.Period}}</td><td>{{.Date}}</td><td>{{.Payment}}</td><td>{{.Principal}}</td><td>{{.Interest}}</td><td>{{.Maintenance}}</td><td>{{.Balance}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<!-- ═══════ SENSITIVITY ═══════ -->
{{if .ShowSensitivity}}
<div class="section">
  <h2>Rate Sensitivity</h2>
  <div class="chart-container">{{.SensitivityChart}}</div>
  <table>
    <thead><tr><th>Shift</th><th>Rate</th><th>Mean payment</th><th>Total interest</th><th>Change</th></tr></thead>
    <tbody>
    {{range .Sensitivity}}
    <tr><td>{{.Label}}</td><td>{{.Rate}}</td><td>{{.MeanPayment}}</td><td>{{.Interest}}</td><td class="{{.DeltaClass}}">{{.Delta}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<!-- ═══════ WARNINGS ═══════ -->
{{if .ShowWarnings}}
<div class="section">
  <h2>Extraction Warnings</h2>
  <ul class="warnings">
    {{range .Warnings}}<li>{{.}}</li>{{end}}
  </ul>
</div>
{{end}}

<div class="footer">
  Report {{.ReportID}} · Figures are estimates derived from the contract text. Verify against the executed agreement before relying on them.
</div>

</body>
</html>
`
