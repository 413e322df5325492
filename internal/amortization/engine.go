// Package amortization builds period-by-period payment schedules for a
// contract under the annuity, bullet or grace policy.
package amortization

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/pkg/models"
)

// Policy is the amortization method applied to a contract.
type Policy string

const (
	PolicyAnnuity Policy = "annuity"
	PolicyBullet  Policy = "bullet"
	PolicyGrace   Policy = "grace"
)

// DaysPerMonth is the fixed month length used to stamp row dates.
const DaysPerMonth = 30

// SelectPolicy picks the schedule policy: the bullet flag wins, then a
// positive grace period, then the standard annuity.
func SelectPolicy(c models.Contract) Policy {
	switch {
	case c.Bullet:
		return PolicyBullet
	case c.GraceMonths > 0:
		return PolicyGrace
	default:
		return PolicyAnnuity
	}
}

// Engine computes amortization schedules. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used when a schedule has no explicit start date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine. A nil logger disables logging.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartOrToday returns start, or today's date at UTC midnight from the
// engine clock when start is zero.
func (e *Engine) StartOrToday(start time.Time) time.Time {
	if !start.IsZero() {
		return start
	}
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Schedule returns the payment schedule for c. Row dates step 30 days per
// month of period length from start. A contract with no principal or no
// term yields an empty schedule.
func (e *Engine) Schedule(c models.Contract, start time.Time) []models.AmortizationRow {
	n := Periods(c.TermMonths, c.Frequency)
	if n == 0 || c.Principal <= 0 {
		return []models.AmortizationRow{}
	}

	b := &builder{
		start:           e.StartOrToday(start),
		monthsPerPeriod: c.Frequency.MonthsPerPeriod(),
		maintenanceRate: c.MaintenanceRate(),
		rows:            make([]models.AmortizationRow, 0, n),
	}
	i := PeriodicRate(c.NominalRate, c.Frequency)

	policy := SelectPolicy(c)
	switch policy {
	case PolicyBullet:
		b.interestOnly(c.Principal, i, 1, n, true)
	case PolicyGrace:
		g := Periods(c.GraceMonths, c.Frequency)
		if g >= n {
			b.interestOnly(c.Principal, i, 1, n, true)
			break
		}
		balance := b.interestOnly(c.Principal, i, 1, g, false)
		b.annuity(balance, i, g+1, n)
	default:
		b.annuity(c.Principal, i, 1, n)
	}

	e.logger.Debug("amortization: schedule built",
		zap.String("policy", string(policy)),
		zap.Int("periods", n),
		zap.Float64("periodic_rate", i),
	)
	return b.rows
}

// Periods converts a duration in months to whole schedule periods, rounding up.
func Periods(months int, f models.PaymentFrequency) int {
	if months <= 0 {
		return 0
	}
	mpp := f.MonthsPerPeriod()
	return (months + mpp - 1) / mpp
}

// PeriodicRate converts a nominal annual percentage rate to the decimal rate
// of one schedule period.
func PeriodicRate(nominal float64, f models.PaymentFrequency) float64 {
	return nominal / 100 / float64(f.PeriodsPerYear())
}

// Payment returns the fixed annuity installment that repays balance over n
// periods at periodic rate i. A zero rate spreads the balance evenly.
func Payment(balance, i float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if i == 0 {
		return balance / float64(n)
	}
	growth := math.Pow(1+i, float64(n))
	return balance * i * growth / (growth - 1)
}

// Round2 rounds a money amount to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

type builder struct {
	start           time.Time
	monthsPerPeriod int
	maintenanceRate float64
	rows            []models.AmortizationRow
}

// add appends one row. The exact balance carries between periods; only the
// reported fields are rounded.
func (b *builder) add(period int, payment, principal, interest, opening, closing float64) {
	b.rows = append(b.rows, models.AmortizationRow{
		Period:      period,
		Date:        b.start.AddDate(0, 0, DaysPerMonth*b.monthsPerPeriod*period),
		Payment:     Round2(payment),
		Principal:   Round2(principal),
		Interest:    Round2(interest),
		Balance:     Round2(closing),
		Maintenance: Round2(opening * b.maintenanceRate),
	})
}

// interestOnly adds periods from..to paying interest only. When repay is
// set the last period also repays the whole balance. It returns the balance
// left after period to.
func (b *builder) interestOnly(balance, i float64, from, to int, repay bool) float64 {
	for p := from; p <= to; p++ {
		interest := balance * i
		if repay && p == to {
			b.add(p, balance+interest, balance, interest, balance, 0)
			return 0
		}
		b.add(p, interest, 0, interest, balance, balance)
	}
	return balance
}

// annuity adds periods from..to with a fixed installment recomputed against
// the current balance and the remaining period count.
func (b *builder) annuity(balance, i float64, from, to int) {
	payment := Payment(balance, i, to-from+1)
	for p := from; p <= to; p++ {
		interest := balance * i
		principal := payment - interest
		closing := math.Max(0, balance-principal)
		b.add(p, payment, principal, interest, balance, closing)
		balance = closing
	}
}
