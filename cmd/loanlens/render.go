package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/internal/refdata"
	"github.com/seenimoa/loanlens/pkg/models"
	"github.com/seenimoa/loanlens/pkg/utils"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// renderFileReport prints the headline terms and metrics of one analyzed file.
func renderFileReport(w io.Writer, fr analysis.FileReport) {
	fmt.Fprintf(w, "═══ %s ═══\n", fr.Path)
	if fr.Error != "" {
		fmt.Fprintf(w, "  ❌ %s\n", fr.Error)
		return
	}
	rep := fr.Report
	ct := rep.Contract
	cur := ct.Currency
	fs := rep.FinancialSummary

	fmt.Fprintf(w, "  Report:        %s\n", rep.ID)
	fmt.Fprintf(w, "  Lender:        %s\n", orDash(ct.Lender))
	fmt.Fprintf(w, "  Borrower:      %s\n", orDash(ct.Borrower))
	fmt.Fprintf(w, "  Principal:     %s\n", utils.FormatMoney(ct.Principal, cur))
	fmt.Fprintf(w, "  Rate:          %s %s", utils.FormatRate(ct.NominalRate), ct.RateType)
	if ct.IsVariable() && ct.Index != "" {
		fmt.Fprintf(w, " (%s", ct.Index)
		if ct.SpreadBps != nil {
			fmt.Fprintf(w, " + %s", utils.FormatBps(*ct.SpreadBps))
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Term:          %d months, %s\n", ct.TermMonths, ct.Frequency)
	if ct.IsMultiTranche() {
		fmt.Fprintf(w, "  Tranches:      %d\n", len(ct.Tranches))
	}
	fmt.Fprintf(w, "  Guarantees:    %s\n", ct.GuaranteeCategory)
	fmt.Fprintf(w, "  Confidence:    %.0f%%\n", ct.Confidence*100)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  First payment: %s (%d installments)\n",
		utils.FormatMoney(fs.Payments.FirstPayment, cur), fs.Payments.Installments)
	fmt.Fprintf(w, "  Interest:      %s\n", utils.FormatMoney(fs.Payments.TotalInterest, cur))
	fmt.Fprintf(w, "  Fees:          %s\n", utils.FormatMoney(fs.Payments.TotalFees, cur))
	fmt.Fprintf(w, "  Total cost:    %s (%.2f per 100)\n",
		utils.FormatMoney(fs.Executive.TotalCost, cur), fs.Executive.CostPer100)
	fmt.Fprintf(w, "  EAR:           %s\n", utils.FormatRate(fs.Rates.EffectiveAnnual))
	fmt.Fprintf(w, "  CAT:           %s\n", utils.FormatRate(fs.Rates.TotalAnnualCost))
	irr := utils.FormatRate(fs.Advanced.IRR)
	if fs.Advanced.IRRFallback {
		irr += " (approximated by EAR)"
	}
	fmt.Fprintf(w, "  IRR:           %s\n", irr)
	fmt.Fprintf(w, "  NPV:           %s\n", utils.FormatMoney(fs.Advanced.NPV, cur))

	m := fs.Market
	if m.HasData {
		fmt.Fprintf(w, "  Market:        %s, %s vs avg %s (P%d)\n",
			m.Evaluation, utils.FormatPct(m.Delta), utils.FormatRate(m.MarketAverage), m.Percentile)
	} else {
		fmt.Fprintf(w, "  Market:        %s\n", m.Evaluation)
	}

	for _, cp := range fs.CriticalPeriods {
		fmt.Fprintf(w, "  ⚠️  Period %d (%s): %s, %s\n",
			cp.Period, cp.Date.Format("2006-01-02"), utils.FormatMoney(cp.Payment, cur), cp.Reason)
	}
	for _, warn := range ct.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warn)
	}
}

func renderSchedule(w io.Writer, currency string, rows []models.AmortizationRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "Period\tDate\tPayment\tPrincipal\tInterest\tMaintenance\tBalance\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Period,
			r.Date.Format("2006-01-02"),
			utils.FormatMoney(r.Payment, currency),
			utils.FormatMoney(r.Principal, currency),
			utils.FormatMoney(r.Interest, currency),
			utils.FormatMoney(r.Maintenance, currency),
			utils.FormatMoney(r.Balance, currency),
		)
	}
	_ = tw.Flush()
}

func renderSensitivity(w io.Writer, ct models.Contract, rep *models.SensitivityReport) {
	fmt.Fprintf(w, "Base rate %s", utils.FormatRate(ct.NominalRate))
	if rep.Index != "" {
		fmt.Fprintf(w, " on %s", rep.Index)
	}
	if rep.HasFloor {
		fmt.Fprintf(w, ", floor %s", utils.FormatRate(*rep.Floor))
	}
	if rep.HasCap {
		fmt.Fprintf(w, ", cap %s", utils.FormatRate(*rep.Cap))
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "Shift\tRate\tMean payment\tTotal interest\tΔ interest\t")
	for _, s := range rep.Scenarios {
		delta := utils.FormatMoney(s.DeltaInterest, ct.Currency)
		if s.DeltaInterest > 0 {
			delta = "+" + delta
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Label,
			utils.FormatRate(s.Rate),
			utils.FormatMoney(s.MeanPayment, ct.Currency),
			utils.FormatMoney(s.TotalInterest, ct.Currency),
			delta,
		)
	}
	_ = tw.Flush()
}

func renderPrepayment(w io.Writer, currency string, res models.PrepaymentResult) {
	fmt.Fprintf(w, "Prepayment of %s after period %d\n", utils.FormatMoney(res.Amount, currency), res.Period)
	if !res.Permitted {
		fmt.Fprintf(w, "  ❌ %s\n", res.Recommendation)
		return
	}
	fmt.Fprintf(w, "  Remaining balance: %s\n", utils.FormatMoney(res.ReducedBalance, currency))
	fmt.Fprintf(w, "  New payment:       %s\n", utils.FormatMoney(res.NewPayment, currency))
	fmt.Fprintf(w, "  Interest savings:  %s\n", utils.FormatMoney(res.InterestSavings, currency))
	fmt.Fprintf(w, "  Penalty:           %s\n", utils.FormatMoney(res.Penalty, currency))
	fmt.Fprintf(w, "  Net benefit:       %s\n", utils.FormatMoney(res.NetBenefit, currency))
	mark := "❌"
	if res.Recommended {
		mark = "✅"
	}
	fmt.Fprintf(w, "  %s %s\n", mark, res.Recommendation)
}

func renderRefData(w io.Writer, t *refdata.Tables) error {
	fmt.Fprintf(w, "Market rate bands (%s)\n", t.MarketFrom)
	tw := newTable(w)
	fmt.Fprintln(tw, "Size\tTerm\tMin\tAverage\tMax\t")
	for _, size := range sortedKeys(t.Market) {
		terms := t.Market[size]
		for _, term := range sortedKeys(terms) {
			b := terms[term]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
				size, term, utils.FormatRate(b.Min), utils.FormatRate(b.Average), utils.FormatRate(b.Max))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRisk factor weights (%s)\n", t.RiskFrom)
	tw = newTable(w)
	for _, name := range sortedKeys(t.RiskFactors) {
		fmt.Fprintf(tw, "%s\t%.2f\t\n", name, t.RiskFactors[name])
	}
	return tw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
