package finance

import (
	"math"

	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/pkg/models"
)

// Prepayment recommendation labels.
const (
	RecommendPrepay       = "prepayment recommended"
	RecommendEvaluate     = "evaluate whether prepayment is worthwhile"
	RecommendNotPermitted = "prepayment not permitted by the contract"
)

// remainingInterestFactor averages interest over the remaining periods as if
// the reduced balance amortized linearly.
const remainingInterestFactor = 0.5

// Prepay estimates the impact of paying amount of extra principal at period
// of an existing schedule. The original schedule is left untouched. The
// penalty applies while the elapsed months are within the clause's window.
func Prepay(ct models.Contract, rows []models.AmortizationRow, period int, amount float64) (models.PrepaymentResult, error) {
	if period < 1 || period > len(rows) {
		return models.PrepaymentResult{}, ErrInvalidPeriod
	}
	if amount < 0 {
		return models.PrepaymentResult{}, ErrInvalidAmount
	}

	res := models.PrepaymentResult{
		Period:    period,
		Amount:    amount,
		Permitted: true,
		Revised:   []models.RevisedPayment{},
	}
	clause := ct.Prepayment
	if clause != nil && !clause.Permitted {
		res.Permitted = false
		res.Recommendation = RecommendNotPermitted
		return res, nil
	}

	i := amortization.PeriodicRate(ct.NominalRate, ct.Frequency)
	remaining := len(rows) - period
	reduced := math.Max(0, rows[period-1].Balance-amount)

	newPayment := reduced
	if remaining > 0 {
		newPayment = amortization.Payment(reduced, i, remaining)
	}
	balance := reduced
	for p := period + 1; p <= len(rows); p++ {
		interest := balance * i
		principal := newPayment - interest
		balance = math.Max(0, balance-principal)
		res.Revised = append(res.Revised, models.RevisedPayment{
			Period:    p,
			Payment:   amortization.Round2(newPayment),
			Principal: amortization.Round2(principal),
			Interest:  amortization.Round2(interest),
			Balance:   amortization.Round2(balance),
		})
	}

	var penalty float64
	elapsedMonths := period * ct.Frequency.MonthsPerPeriod()
	if clause != nil && elapsedMonths <= clause.WindowMonths {
		penalty = amount * clause.PenaltyPct / 100
	}

	paidBefore := TotalInterest(rows[:period-1])
	estimatedRemaining := reduced * i * float64(remaining) * remainingInterestFactor
	savings := TotalInterest(rows) - paidBefore - estimatedRemaining

	res.ReducedBalance = amortization.Round2(reduced)
	res.NewPayment = amortization.Round2(newPayment)
	res.InterestSavings = amortization.Round2(savings)
	res.Penalty = amortization.Round2(penalty)
	res.NetBenefit = amortization.Round2(savings - penalty)
	res.Recommended = savings > penalty
	res.Recommendation = RecommendEvaluate
	if res.Recommended {
		res.Recommendation = RecommendPrepay
	}
	return res, nil
}
