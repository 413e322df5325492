package parser

import "github.com/seenimoa/loanlens/pkg/models"

// ContractSummary is a structured digest of an assembled contract.
type ContractSummary struct {
	Parties    PartiesSummary    `json:"parties"`
	MainTerms  MainTerms         `json:"main_terms"`
	Structure  StructureSummary  `json:"special_structure"`
	Guarantees GuaranteeSummary  `json:"guarantees"`
	Fees       []FeeSummary      `json:"fees"`
	Prepayment PrepaymentSummary `json:"prepayment"`
	Covenants  []CovenantSummary `json:"covenants"`
	Risk       RiskIndicators    `json:"risk_indicators"`
	Metadata   SummaryMetadata   `json:"metadata"`
	Tranches   []TrancheSummary  `json:"tranches,omitempty"`
}

type PartiesSummary struct {
	Lender   string `json:"lender"`
	Borrower string `json:"borrower"`
}

type MainTerms struct {
	Principal   float64                 `json:"principal"`
	Currency    string                  `json:"currency"`
	NominalRate float64                 `json:"nominal_rate"`
	RateType    models.RateType         `json:"rate_type"`
	TermMonths  int                     `json:"term_months"`
	Frequency   models.PaymentFrequency `json:"frequency"`
	Variable    *VariableTerms          `json:"variable_rate,omitempty"`
}

// VariableTerms is present only for variable-rate contracts.
type VariableTerms struct {
	Index     string   `json:"index"`
	SpreadBps *float64 `json:"spread_bps"`
	Cap       *float64 `json:"cap"`
	Floor     *float64 `json:"floor"`
}

type StructureSummary struct {
	GraceMonths int  `json:"grace_months"`
	Bullet      bool `json:"bullet"`
}

type GuaranteeSummary struct {
	Category models.GuaranteeCategory `json:"category"`
	Detail   []models.Guarantee       `json:"detail"`
}

type FeeSummary struct {
	Type         models.FeeType `json:"type"`
	Value        float64        `json:"value"`
	IsPercentage bool           `json:"is_percentage"`
}

type PrepaymentSummary struct {
	Permitted    bool    `json:"permitted"`
	PenaltyPct   float64 `json:"penalty_pct"`
	WindowMonths int     `json:"window_months"`
}

type CovenantSummary struct {
	Type      string  `json:"type"`
	Threshold float64 `json:"threshold"`
	Operator  string  `json:"operator"`
}

type RiskIndicators struct {
	CrossDefault   bool `json:"cross_default"`
	DefaultClauses int  `json:"default_clauses"`
}

type SummaryMetadata struct {
	Confidence   float64  `json:"confidence"`
	Warnings     []string `json:"warnings"`
	TrancheCount int      `json:"tranche_count"`
}

type TrancheSummary struct {
	Name        string                  `json:"name"`
	Amount      float64                 `json:"amount"`
	Currency    string                  `json:"currency"`
	NominalRate float64                 `json:"nominal_rate"`
	RateType    models.RateType         `json:"rate_type"`
	TermMonths  int                     `json:"term_months"`
	Frequency   models.PaymentFrequency `json:"frequency"`
}

// Summarize builds the digest of c. A missing prepayment clause is reported
// as permitted without penalty, and a contract without tranches counts as one.
func Summarize(c models.Contract) ContractSummary {
	s := ContractSummary{
		Parties: PartiesSummary{Lender: c.Lender, Borrower: c.Borrower},
		MainTerms: MainTerms{
			Principal:   c.Principal,
			Currency:    c.Currency,
			NominalRate: c.NominalRate,
			RateType:    c.RateType,
			TermMonths:  c.TermMonths,
			Frequency:   c.Frequency,
		},
		Structure: StructureSummary{GraceMonths: c.GraceMonths, Bullet: c.Bullet},
		Guarantees: GuaranteeSummary{
			Category: c.GuaranteeCategory,
			Detail:   append([]models.Guarantee{}, c.Guarantees...),
		},
		Fees:       make([]FeeSummary, 0, len(c.Fees)),
		Prepayment: PrepaymentSummary{Permitted: true},
		Covenants:  make([]CovenantSummary, 0, len(c.Covenants)),
		Risk: RiskIndicators{
			CrossDefault:   c.CrossDefault,
			DefaultClauses: len(c.DefaultClauses),
		},
		Metadata: SummaryMetadata{
			Confidence:   c.Confidence,
			Warnings:     append([]string{}, c.Warnings...),
			TrancheCount: 1,
		},
	}

	if c.IsVariable() {
		s.MainTerms.Variable = &VariableTerms{
			Index:     c.Index,
			SpreadBps: c.SpreadBps,
			Cap:       c.Cap,
			Floor:     c.Floor,
		}
	}
	for _, f := range c.Fees {
		s.Fees = append(s.Fees, FeeSummary{Type: f.Type, Value: f.Value, IsPercentage: f.IsPercentage})
	}
	if c.Prepayment != nil {
		s.Prepayment = PrepaymentSummary{
			Permitted:    c.Prepayment.Permitted,
			PenaltyPct:   c.Prepayment.PenaltyPct,
			WindowMonths: c.Prepayment.WindowMonths,
		}
	}
	for _, cv := range c.Covenants {
		s.Covenants = append(s.Covenants, CovenantSummary{Type: cv.Type, Threshold: cv.Threshold, Operator: cv.Operator})
	}
	if len(c.Tranches) > 0 {
		s.Metadata.TrancheCount = len(c.Tranches)
		for _, t := range c.Tranches {
			s.Tranches = append(s.Tranches, TrancheSummary{
				Name:        t.Name,
				Amount:      t.Amount,
				Currency:    t.Currency,
				NominalRate: t.NominalRate,
				RateType:    t.RateType,
				TermMonths:  t.TermMonths,
				Frequency:   t.Frequency,
			})
		}
	}
	return s
}
