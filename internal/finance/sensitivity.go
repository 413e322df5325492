package finance

import (
	"fmt"
	"math"
	"time"

	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/pkg/models"
)

// DefaultShifts are the rate shifts, in percentage points, reported for
// every variable-rate contract.
var DefaultShifts = []float64{-1.0, -0.5, 0, 0.5, 1.0, 2.0}

// ClampRate bounds rate by the floor and cap that are present.
func ClampRate(rate float64, floor, ceiling *float64) float64 {
	if ceiling != nil {
		rate = math.Min(rate, *ceiling)
	}
	if floor != nil {
		rate = math.Max(rate, *floor)
	}
	return rate
}

// Sensitivity reruns the schedule of a variable-rate contract once per rate
// shift, clamping each shifted rate to the contract's cap and floor. With no
// shifts it uses DefaultShifts. Interest deltas are measured against the
// zero-shift schedule.
func (c *Calculator) Sensitivity(ct models.Contract, start time.Time, shifts ...float64) (*models.SensitivityReport, error) {
	if !ct.IsVariable() {
		return nil, ErrNotVariableRate
	}
	if len(shifts) == 0 {
		shifts = DefaultShifts
	}

	baseRate := ClampRate(ct.NominalRate, ct.Floor, ct.Cap)
	baseline := TotalInterest(c.engine.Schedule(ct.WithNominalRate(baseRate), start))

	report := &models.SensitivityReport{
		Scenarios: make([]models.SensitivityScenario, 0, len(shifts)),
		HasCap:    ct.Cap != nil,
		HasFloor:  ct.Floor != nil,
		Cap:       ct.Cap,
		Floor:     ct.Floor,
		Index:     ct.Index,
	}
	for _, shift := range shifts {
		rate := ClampRate(ct.NominalRate+shift, ct.Floor, ct.Cap)
		rows := c.engine.Schedule(ct.WithNominalRate(rate), start)
		interest := TotalInterest(rows)
		report.Scenarios = append(report.Scenarios, models.SensitivityScenario{
			Shift:         shift,
			Label:         fmt.Sprintf("%+g%%", shift),
			Rate:          amortization.Round2(rate),
			MeanPayment:   amortization.Round2(meanPayment(rows)),
			TotalInterest: interest,
			DeltaInterest: amortization.Round2(interest - baseline),
		})
	}
	return report, nil
}

func meanPayment(rows []models.AmortizationRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var total float64
	for _, r := range rows {
		total += r.Payment
	}
	return total / float64(len(rows))
}
