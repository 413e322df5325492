package finance

import (
	"time"

	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/pkg/models"
)

// criticalPaymentRatio flags periods whose payment exceeds this multiple of
// the mean payment.
const criticalPaymentRatio = 1.5

// FinancialSummary is a reader-oriented digest of a FinancialResult.
type FinancialSummary struct {
	Executive       ExecutiveSummary        `json:"executive_summary"`
	Rates           RateSummary             `json:"rates"`
	Payments        PaymentSummary          `json:"payment_structure"`
	Advanced        AdvancedMetrics         `json:"advanced_metrics"`
	Market          models.MarketComparison `json:"market"`
	CriticalPeriods []CriticalPeriod        `json:"critical_periods"`
}

type ExecutiveSummary struct {
	Financed   float64 `json:"financed_amount"`
	Currency   string  `json:"currency"`
	TotalCost  float64 `json:"total_cost"`
	CostPer100 float64 `json:"cost_per_100"`
}

type RateSummary struct {
	Nominal         float64 `json:"nominal_rate"`
	EffectiveAnnual float64 `json:"effective_annual_rate"`
	TotalAnnualCost float64 `json:"total_annual_cost"`
}

type PaymentSummary struct {
	FirstPayment  float64 `json:"first_payment"`
	Installments  int     `json:"installments"`
	TotalInterest float64 `json:"total_interest"`
	TotalFees     float64 `json:"total_fees"`
}

type AdvancedMetrics struct {
	NPV         float64 `json:"npv"`
	IRR         float64 `json:"irr"`
	IRRFallback bool    `json:"irr_fallback"`
}

// CriticalPeriod is a period whose payment is well above the mean.
type CriticalPeriod struct {
	Period  int       `json:"period"`
	Date    time.Time `json:"date"`
	Payment float64   `json:"payment"`
	Reason  string    `json:"reason"`
}

// Summarize builds the digest of r for contract ct.
func Summarize(ct models.Contract, r models.FinancialResult) FinancialSummary {
	s := FinancialSummary{
		Executive: ExecutiveSummary{
			Financed:  ct.Principal,
			Currency:  ct.Currency,
			TotalCost: r.TotalCost,
		},
		Rates: RateSummary{
			Nominal:         ct.NominalRate,
			EffectiveAnnual: r.EffectiveAnnualRate,
			TotalAnnualCost: r.TotalAnnualCost,
		},
		Payments: PaymentSummary{
			FirstPayment:  r.FirstPayment,
			Installments:  len(r.Schedule),
			TotalInterest: r.TotalInterest,
			TotalFees:     r.TotalFees,
		},
		Advanced: AdvancedMetrics{
			NPV:         r.NPV,
			IRR:         r.IRR,
			IRRFallback: r.IRRFallback,
		},
		Market:          r.Market,
		CriticalPeriods: CriticalPeriods(r.Schedule),
	}
	if ct.Principal > 0 {
		s.Executive.CostPer100 = amortization.Round2((r.TotalCost/ct.Principal - 1) * 100)
	}
	return s
}

// CriticalPeriods returns the rows whose payment exceeds 1.5 times the mean
// payment, such as a bullet maturity.
func CriticalPeriods(rows []models.AmortizationRow) []CriticalPeriod {
	out := []CriticalPeriod{}
	mean := meanPayment(rows)
	for _, r := range rows {
		if r.Payment > mean*criticalPaymentRatio {
			out = append(out, CriticalPeriod{
				Period:  r.Period,
				Date:    r.Date,
				Payment: r.Payment,
				Reason:  "payment well above the schedule average",
			})
		}
	}
	return out
}
