// Package finance derives financial metrics from a contract and its
// amortization schedule: effective rates, total cost, NPV, IRR, market
// position, rate sensitivity and prepayment impact.
package finance

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/pkg/models"
)

var (
	// ErrNotVariableRate is returned when sensitivity is requested for a fixed-rate contract.
	ErrNotVariableRate = errors.New("finance: contract does not have a variable rate")
	// ErrInvalidPeriod is returned when a prepayment targets a period outside the schedule.
	ErrInvalidPeriod = errors.New("finance: period outside the schedule")
	// ErrInvalidAmount is returned for a negative prepayment amount.
	ErrInvalidAmount = errors.New("finance: prepayment amount must not be negative")
)

// Calculator computes FinancialResults. The market table is shared
// read-only data; a Calculator is safe for concurrent use.
type Calculator struct {
	engine *amortization.Engine
	market models.MarketRateTable
	logger *zap.Logger
}

// New returns a Calculator. A nil engine uses a default one and a nil logger
// disables logging. A nil market table makes every comparison neutral.
func New(engine *amortization.Engine, market models.MarketRateTable, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = amortization.New(logger)
	}
	return &Calculator{engine: engine, market: market, logger: logger}
}

// Engine returns the amortization engine used by the calculator.
func (c *Calculator) Engine() *amortization.Engine {
	return c.engine
}

// Market returns the reference rate table.
func (c *Calculator) Market() models.MarketRateTable {
	return c.market
}

// Calculate builds the schedule for ct starting at start and derives every
// metric from it. Variable-rate contracts also get a sensitivity block.
func (c *Calculator) Calculate(ct models.Contract, start time.Time) models.FinancialResult {
	rows := c.engine.Schedule(ct, start)

	totalInterest := TotalInterest(rows)
	totalFees := TotalFees(ct, rows)
	ear := EffectiveAnnualRate(ct.NominalRate, ct.Frequency)

	r := models.FinancialResult{
		EffectiveAnnualRate: ear,
		TotalAnnualCost:     TotalAnnualCost(ct.Principal, totalInterest, totalFees, ct.TermMonths),
		TotalInterest:       totalInterest,
		TotalFees:           totalFees,
		TotalCost:           amortization.Round2(ct.Principal + totalInterest + totalFees),
		Schedule:            rows,
		NPV:                 NPV(ct, rows),
		Market:              Compare(c.market, ct.Principal, ct.TermMonths, ear),
	}
	if len(rows) > 0 {
		r.FirstPayment = rows[0].Payment
	}

	if irr, ok := IRR(ct, rows); ok {
		r.IRR = irr
	} else {
		r.IRR = ear
		r.IRRFallback = true
		c.logger.Warn("finance: IRR did not converge, reporting effective annual rate",
			zap.Float64("effective_annual_rate", ear),
			zap.Int("periods", len(rows)),
		)
	}

	if ct.IsVariable() {
		report, err := c.Sensitivity(ct, start, DefaultShifts...)
		if err == nil {
			r.Sensitivity = report
		}
	}
	return r
}

// EffectiveAnnualRate returns ((1 + nominal/100/k)^k - 1) * 100 rounded to
// two decimals, where k is the compounding count of the frequency.
func EffectiveAnnualRate(nominal float64, f models.PaymentFrequency) float64 {
	k := float64(f.CompoundingPerYear())
	return amortization.Round2((math.Pow(1+nominal/100/k, k) - 1) * 100)
}

// TotalAnnualCost returns the simplified annualized total cost, or 0 when
// principal or term is zero.
func TotalAnnualCost(principal, totalInterest, totalFees float64, termMonths int) float64 {
	years := float64(termMonths) / 12
	if years == 0 || principal == 0 {
		return 0
	}
	paid := principal + totalInterest + totalFees
	return amortization.Round2((paid/principal - 1) / years * 100)
}

// TotalInterest sums the interest column.
func TotalInterest(rows []models.AmortizationRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.Interest
	}
	return amortization.Round2(total)
}

// TotalFees adds the one-time fees charged at disbursement to the sum of the
// schedule's maintenance column.
func TotalFees(ct models.Contract, rows []models.AmortizationRow) float64 {
	total := ct.UpfrontFees()
	for _, r := range rows {
		total += r.Maintenance
	}
	return amortization.Round2(total)
}

// NPV discounts the borrower's cash flows at the contract's periodic nominal
// rate: the disbursement net of upfront fees at t0, then every installment
// plus maintenance as an outflow.
func NPV(ct models.Contract, rows []models.AmortizationRow) float64 {
	i := amortization.PeriodicRate(ct.NominalRate, ct.Frequency)
	npv := ct.Principal - ct.UpfrontFees()
	for t, r := range rows {
		npv -= r.CashOut() / math.Pow(1+i, float64(t+1))
	}
	return amortization.Round2(npv)
}

// lenderFlows returns the lender's cash flows: the net disbursement as an
// outflow followed by every payment received.
func lenderFlows(ct models.Contract, rows []models.AmortizationRow) []float64 {
	flows := make([]float64, 0, len(rows)+1)
	flows = append(flows, -(ct.Principal - ct.UpfrontFees()))
	for _, r := range rows {
		flows = append(flows, r.CashOut())
	}
	return flows
}

// IRR solves the lender's periodic internal rate of return and annualizes it
// with the schedule's periods per year, rounded to two decimals. The second
// result is false when no rate could be found.
func IRR(ct models.Contract, rows []models.AmortizationRow) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	guess := amortization.PeriodicRate(ct.NominalRate, ct.Frequency)
	periodic, ok := SolveIRR(lenderFlows(ct, rows), guess)
	if !ok {
		return 0, false
	}
	ppy := float64(ct.Frequency.PeriodsPerYear())
	annual := (math.Pow(1+periodic, ppy) - 1) * 100
	if math.IsNaN(annual) || math.IsInf(annual, 0) {
		return 0, false
	}
	return amortization.Round2(annual), true
}

const (
	irrTolerance     = 1e-10
	irrMaxIterations = 100
)

// SolveIRR finds the periodic rate at which the flows' NPV is zero. It runs
// Newton's method from guess and falls back to bisection over (-0.99, 1].
func SolveIRR(flows []float64, guess float64) (float64, bool) {
	if len(flows) < 2 || !hasSignChange(flows) {
		return 0, false
	}

	rate := guess
	for iter := 0; iter < irrMaxIterations; iter++ {
		v, d := npvAndDerivative(flows, rate)
		if math.Abs(v) < irrTolerance {
			return rate, true
		}
		if d == 0 || math.IsNaN(d) {
			break
		}
		next := rate - v/d
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < irrTolerance {
			return next, true
		}
		rate = next
	}
	return bisectIRR(flows)
}

func bisectIRR(flows []float64) (float64, bool) {
	lo, hi := -0.99, 1.0
	vlo, _ := npvAndDerivative(flows, lo)
	vhi, _ := npvAndDerivative(flows, hi)
	if math.IsNaN(vlo) || math.IsNaN(vhi) || vlo*vhi > 0 {
		return 0, false
	}
	for iter := 0; iter < 200; iter++ {
		mid := (lo + hi) / 2
		vmid, _ := npvAndDerivative(flows, mid)
		if math.Abs(vmid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, true
		}
		if vlo*vmid < 0 {
			hi = mid
		} else {
			lo, vlo = mid, vmid
		}
	}
	return 0, false
}

func npvAndDerivative(flows []float64, rate float64) (float64, float64) {
	var v, d float64
	for t, cf := range flows {
		denom := math.Pow(1+rate, float64(t))
		v += cf / denom
		if t > 0 {
			d -= float64(t) * cf / (denom * (1 + rate))
		}
	}
	return v, d
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, f := range flows {
		if f > 0 {
			pos = true
		} else if f < 0 {
			neg = true
		}
	}
	return pos && neg
}
