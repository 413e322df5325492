package parser

import "github.com/seenimoa/loanlens/pkg/models"

// Warning messages attached to a contract by the assembler and scorer.
const (
	WarnNoText        = "no text extracted"
	WarnNoPrincipal   = "principal amount not found"
	WarnNoRate        = "interest rate not found"
	WarnNoTerm        = "loan term not found"
	WarnNoGuarantees  = "no explicit guarantees identified"
	WarnNoFees        = "no fees identified"
	WarnNoLender      = "lender name not found"
	WarnNoBorrower    = "borrower name not found"
	WarnCapBelowFloor = "rate cap is below the rate floor; both were ignored"
)

type deduction struct {
	points  float64
	warning string
	applies func(c models.Contract) bool
}

var deductions = []deduction{
	{20, WarnNoPrincipal, func(c models.Contract) bool { return c.Principal == 0 }},
	{15, WarnNoRate, func(c models.Contract) bool { return c.NominalRate == 0 && c.RateType == models.RateFixed }},
	{15, WarnNoTerm, func(c models.Contract) bool { return c.TermMonths == 0 }},
	{5, WarnNoGuarantees, func(c models.Contract) bool { return len(c.Guarantees) == 0 }},
	{5, WarnNoFees, func(c models.Contract) bool { return len(c.Fees) == 0 }},
	{5, WarnNoLender, func(c models.Contract) bool { return c.Lender == "" }},
	{5, WarnNoBorrower, func(c models.Contract) bool { return c.Borrower == "" }},
}

// Score returns the extraction confidence for c, in [0, 100], and one
// warning per deduction applied. It never blocks further computation.
func Score(c models.Contract) (float64, []string) {
	score := 100.0
	warnings := []string{}
	for _, d := range deductions {
		if d.applies(c) {
			score -= d.points
			warnings = append(warnings, d.warning)
		}
	}
	return clamp(score, 0, 100), warnings
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
