package models

import "time"

// AmortizationRow is one period of a payment schedule. Monetary fields are
// rounded to cents independently per row.
type AmortizationRow struct {
	Period      int       `json:"period"`
	Date        time.Time `json:"date"`
	Payment     float64   `json:"payment"`
	Principal   float64   `json:"principal"`
	Interest    float64   `json:"interest"`
	Balance     float64   `json:"balance"`
	Maintenance float64   `json:"maintenance"`
}

// CashOut is the borrower's total outflow for the period.
func (r AmortizationRow) CashOut() float64 {
	return r.Payment + r.Maintenance
}

// MarketEvaluation labels a contract's position against its market band.
type MarketEvaluation string

const (
	MarketVeryCompetitive MarketEvaluation = "very competitive - favorable terms"
	MarketCompetitive     MarketEvaluation = "competitive - in line with market"
	MarketSlightlyHigh    MarketEvaluation = "slightly high - consider negotiating"
	MarketHigh            MarketEvaluation = "high - review financing alternatives"
	MarketNoData          MarketEvaluation = "no market data available"
	MarketNoProfileData   MarketEvaluation = "no market data for this profile"
)

// MarketComparison is the contract's position relative to a reference band.
type MarketComparison struct {
	SizeTier      string           `json:"size_tier,omitempty"`
	TermTier      string           `json:"term_tier,omitempty"`
	Delta         float64          `json:"delta"`
	Percentile    int              `json:"percentile"`
	Evaluation    MarketEvaluation `json:"evaluation"`
	MarketAverage float64          `json:"market_average,omitempty"`
	MarketRange   string           `json:"market_range,omitempty"`
	HasData       bool             `json:"has_data"`
}

// SensitivityScenario is the outcome of one rate-shift scenario.
type SensitivityScenario struct {
	Shift         float64 `json:"shift"`
	Label         string  `json:"label"`
	Rate          float64 `json:"rate"`
	MeanPayment   float64 `json:"mean_payment"`
	TotalInterest float64 `json:"total_interest"`
	DeltaInterest float64 `json:"delta_interest"`
}

// SensitivityReport collects rate-shift scenarios for a variable-rate contract.
type SensitivityReport struct {
	Scenarios []SensitivityScenario `json:"scenarios"`
	HasCap    bool                  `json:"has_cap"`
	HasFloor  bool                  `json:"has_floor"`
	Cap       *float64              `json:"cap,omitempty"`
	Floor     *float64              `json:"floor,omitempty"`
	Index     string                `json:"index,omitempty"`
}

// FinancialResult holds the metrics computed for one contract.
type FinancialResult struct {
	EffectiveAnnualRate float64           `json:"effective_annual_rate"`
	TotalAnnualCost     float64           `json:"total_annual_cost"`
	TotalInterest       float64           `json:"total_interest"`
	TotalFees           float64           `json:"total_fees"`
	TotalCost           float64           `json:"total_cost"`
	FirstPayment        float64           `json:"first_payment"`
	Schedule            []AmortizationRow `json:"schedule"`
	NPV                 float64           `json:"npv"`
	IRR                 float64           `json:"irr"`
	IRRFallback         bool              `json:"irr_fallback"`
	Market              MarketComparison  `json:"market"`
	Sensitivity         *SensitivityReport `json:"sensitivity,omitempty"`
}

// RevisedPayment is one period of a schedule recomputed after a prepayment.
type RevisedPayment struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// PrepaymentResult is the estimated impact of an early partial repayment.
type PrepaymentResult struct {
	Period          int              `json:"period"`
	Amount          float64          `json:"amount"`
	Permitted       bool             `json:"permitted"`
	ReducedBalance  float64          `json:"reduced_balance"`
	NewPayment      float64          `json:"new_payment"`
	Revised         []RevisedPayment `json:"revised"`
	InterestSavings float64          `json:"interest_savings"`
	Penalty         float64          `json:"penalty"`
	NetBenefit      float64          `json:"net_benefit"`
	Recommended     bool             `json:"recommended"`
	Recommendation  string           `json:"recommendation"`
}
