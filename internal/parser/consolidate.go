package parser

import "github.com/seenimoa/loanlens/pkg/models"

// GlobalClauses are clauses extracted over the entire contract text of a
// multi-tranche contract.
type GlobalClauses struct {
	Guarantees []models.Guarantee
	Fees       []models.Fee
	Prepayment *models.PrepaymentClause
}

// Consolidate builds the contract's primary view from its tranches in two
// stages. First, the first tranche supplies the top-line financial fields.
// Second, guarantees, fees and the prepayment clause come from the
// full-text pass; empty full-text guarantees fall back to the union of
// tranche guarantees (de-duplicated by description) and empty full-text
// fees fall back to the concatenation of tranche fees.
func Consolidate(c models.Contract, tranches []models.Tranche, global GlobalClauses) models.Contract {
	c.Tranches = append([]models.Tranche{}, tranches...)
	if len(tranches) == 0 {
		return c
	}

	primary := tranches[0]
	c.Principal = primary.Amount
	c.Currency = primary.Currency
	c.NominalRate = primary.NominalRate
	c.RateType = primary.RateType
	c.TermMonths = primary.TermMonths
	c.Frequency = primary.Frequency
	c.Index = primary.Index
	c.SpreadBps = primary.SpreadBps
	c.Cap = primary.Cap
	c.Floor = primary.Floor
	c.GraceMonths = primary.GraceMonths
	c.Bullet = primary.Bullet

	c.Guarantees = global.Guarantees
	if len(c.Guarantees) == 0 {
		c.Guarantees = unionGuarantees(tranches)
	}

	c.Fees = global.Fees
	if len(c.Fees) == 0 {
		c.Fees = []models.Fee{}
		for _, t := range tranches {
			c.Fees = append(c.Fees, t.Fees...)
		}
	}

	c.Prepayment = global.Prepayment
	if c.Prepayment == nil {
		c.Prepayment = primary.Prepayment
	}
	return c
}

func unionGuarantees(tranches []models.Tranche) []models.Guarantee {
	seen := make(map[string]bool)
	out := []models.Guarantee{}
	for _, t := range tranches {
		for _, g := range t.Guarantees {
			if seen[g.Description] {
				continue
			}
			seen[g.Description] = true
			out = append(out, g)
		}
	}
	return out
}
