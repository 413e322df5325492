package models

// RateType is the interest-rate regime of a contract or tranche.
type RateType string

const (
	RateFixed    RateType = "fixed"
	RateVariable RateType = "variable"
)

// PaymentFrequency is how often installments fall due.
type PaymentFrequency string

const (
	FrequencyMonthly    PaymentFrequency = "monthly"
	FrequencyQuarterly  PaymentFrequency = "quarterly"
	FrequencySemiannual PaymentFrequency = "semiannual"
	FrequencyAnnual     PaymentFrequency = "annual"
	FrequencyBullet     PaymentFrequency = "bullet"
)

// MonthsPerPeriod returns the length of one schedule period in months.
// Bullet loans service interest monthly and repay principal at maturity.
func (f PaymentFrequency) MonthsPerPeriod() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencySemiannual:
		return 6
	case FrequencyAnnual:
		return 12
	default:
		return 1
	}
}

// PeriodsPerYear returns the number of schedule periods in a year.
func (f PaymentFrequency) PeriodsPerYear() int {
	return 12 / f.MonthsPerPeriod()
}

// CompoundingPerYear returns the compounding count used for the effective
// annual rate. Bullet loans compound once a year.
func (f PaymentFrequency) CompoundingPerYear() int {
	if f == FrequencyBullet {
		return 1
	}
	return f.PeriodsPerYear()
}

// FeeType tags a fee clause.
type FeeType string

const (
	FeeOrigination FeeType = "origination"
	FeeMaintenance FeeType = "maintenance"
	FeeInsurance   FeeType = "insurance"
	FeeOther       FeeType = "other"
)

// FeeBasis is the amount a percentage fee is charged against.
type FeeBasis string

const (
	BasisPrincipal   FeeBasis = "principal"
	BasisOutstanding FeeBasis = "outstanding_balance"
)

// Fee is a single fee or commission clause.
type Fee struct {
	Type         FeeType  `json:"type"`
	Value        float64  `json:"value"`
	IsPercentage bool     `json:"is_percentage"`
	Basis        FeeBasis `json:"basis"`
	Description  string   `json:"description"`
}

// Upfront reports whether the fee is a one-time charge at disbursement.
func (f Fee) Upfront() bool {
	return f.Type != FeeMaintenance
}

// Amount returns the one-time amount of an upfront fee for the given principal.
func (f Fee) Amount(principal float64) float64 {
	if f.IsPercentage {
		return principal * f.Value / 100
	}
	return f.Value
}

// GuaranteeType tags a guarantee clause.
type GuaranteeType string

const (
	GuaranteeMortgage GuaranteeType = "mortgage"
	GuaranteePledge   GuaranteeType = "pledge"
	GuaranteePersonal GuaranteeType = "personal_guarantee"
)

// GuaranteeCategory is the general class of a guarantee or of a whole contract's collateral.
type GuaranteeCategory string

const (
	CategoryReal     GuaranteeCategory = "real"
	CategoryPersonal GuaranteeCategory = "personal"
	CategoryMixed    GuaranteeCategory = "mixed"
	CategoryNone     GuaranteeCategory = "none"
)

// Guarantee is a single collateral or guarantee clause.
type Guarantee struct {
	Type        GuaranteeType     `json:"type"`
	Description string            `json:"description"`
	Category    GuaranteeCategory `json:"category"`
}

// CategoryOf rolls a set of guarantees up into one general category.
func CategoryOf(guarantees []Guarantee) GuaranteeCategory {
	var real, personal bool
	for _, g := range guarantees {
		switch g.Category {
		case CategoryReal:
			real = true
		case CategoryPersonal:
			personal = true
		case CategoryMixed:
			real, personal = true, true
		}
	}
	switch {
	case real && personal:
		return CategoryMixed
	case real:
		return CategoryReal
	case personal:
		return CategoryPersonal
	default:
		return CategoryNone
	}
}

// PrepaymentClause describes whether and at what cost the loan can be repaid early.
type PrepaymentClause struct {
	Permitted     bool    `json:"permitted"`
	PenaltyPct    float64 `json:"penalty_pct"`
	WindowMonths  int     `json:"window_months"`
	Description   string  `json:"description"`
}

// Covenant is a financial-condition threshold the borrower must maintain.
type Covenant struct {
	Type        string  `json:"type"`
	Threshold   float64 `json:"threshold"`
	Operator    string  `json:"operator"`
	Description string  `json:"description"`
}

// Covenant type tags.
const (
	CovenantDebtServiceCoverage = "debt_service_coverage"
	CovenantLeverage            = "leverage"
	CovenantNegativePledge      = "negative_pledge"
)

// DefaultClause is an event-of-default trigger.
type DefaultClause struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	Acceleration bool   `json:"acceleration"`
}

// Default clause type tags.
const (
	DefaultCross        = "cross_default"
	DefaultLatePayment  = "late_payment"
	DefaultAcceleration = "acceleration"
)

// Tranche is one named facility inside a multi-part credit contract.
type Tranche struct {
	Name          string            `json:"name"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	NominalRate   float64           `json:"nominal_rate"`
	RateType      RateType          `json:"rate_type"`
	TermMonths    int               `json:"term_months"`
	Frequency     PaymentFrequency  `json:"frequency"`
	Index         string            `json:"index,omitempty"`
	SpreadBps     *float64          `json:"spread_bps,omitempty"`
	Cap           *float64          `json:"cap,omitempty"`
	Floor         *float64          `json:"floor,omitempty"`
	GraceMonths   int               `json:"grace_months"`
	Bullet        bool              `json:"bullet"`
	Guarantees    []Guarantee       `json:"guarantees"`
	Fees          []Fee             `json:"fees"`
	Prepayment    *PrepaymentClause `json:"prepayment,omitempty"`
}

// Contract is the structured model assembled from one contract text.
// It is built once by the parser and treated as read-only afterwards.
type Contract struct {
	Lender   string    `json:"lender"`
	Borrower string    `json:"borrower"`
	Tranches []Tranche `json:"tranches"`

	Principal   float64          `json:"principal"`
	Currency    string           `json:"currency"`
	NominalRate float64          `json:"nominal_rate"`
	RateType    RateType         `json:"rate_type"`
	TermMonths  int              `json:"term_months"`
	Frequency   PaymentFrequency `json:"frequency"`

	Index     string   `json:"index,omitempty"`
	SpreadBps *float64 `json:"spread_bps,omitempty"`
	Cap       *float64 `json:"cap,omitempty"`
	Floor     *float64 `json:"floor,omitempty"`

	GraceMonths int  `json:"grace_months"`
	Bullet      bool `json:"bullet"`

	Guarantees        []Guarantee       `json:"guarantees"`
	GuaranteeCategory GuaranteeCategory `json:"guarantee_category"`
	Fees              []Fee             `json:"fees"`
	Prepayment        *PrepaymentClause `json:"prepayment,omitempty"`
	Covenants         []Covenant        `json:"covenants"`
	DefaultClauses    []DefaultClause   `json:"default_clauses"`
	CrossDefault      bool              `json:"cross_default"`
	Jurisdiction      string            `json:"jurisdiction"`

	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings"`
	RawText    string   `json:"-"`
}

// NewContract returns a contract holding the documented defaults, with its
// own empty collections.
func NewContract() Contract {
	return Contract{
		Tranches:          []Tranche{},
		Currency:          DefaultCurrency,
		RateType:          RateFixed,
		Frequency:         FrequencyMonthly,
		Guarantees:        []Guarantee{},
		GuaranteeCategory: CategoryNone,
		Fees:              []Fee{},
		Covenants:         []Covenant{},
		DefaultClauses:    []DefaultClause{},
		Warnings:          []string{},
	}
}

// DefaultCurrency is reported when no currency signal is found.
const DefaultCurrency = "USD"

// IsVariable reports whether the contract has a variable rate.
func (c Contract) IsVariable() bool {
	return c.RateType == RateVariable
}

// IsMultiTranche reports whether the contract was split into tranches.
func (c Contract) IsMultiTranche() bool {
	return len(c.Tranches) > 1
}

// WithNominalRate returns a copy of the contract differing only in nominal rate.
func (c Contract) WithNominalRate(rate float64) Contract {
	c.NominalRate = rate
	return c
}

// FeeOf returns the first fee of the given type, if any.
func (c Contract) FeeOf(t FeeType) (Fee, bool) {
	for _, f := range c.Fees {
		if f.Type == t {
			return f, true
		}
	}
	return Fee{}, false
}

// MaintenanceRate returns the per-period maintenance fee as a fraction of the
// outstanding balance, or 0 when the contract has none.
func (c Contract) MaintenanceRate() float64 {
	var rate float64
	for _, f := range c.Fees {
		if f.Type == FeeMaintenance && f.IsPercentage {
			rate = f.Value / 100
		}
	}
	return rate
}

// UpfrontFees returns the total one-time fees charged at disbursement.
func (c Contract) UpfrontFees() float64 {
	var total float64
	for _, f := range c.Fees {
		if f.Upfront() {
			total += f.Amount(c.Principal)
		}
	}
	return total
}
