package extract

import (
	"fmt"
	"strings"

	"github.com/seenimoa/loanlens/pkg/models"
)

// Guarantees detects mortgage, pledge and personal-guarantee clauses
// independently. Any subset may be returned.
func (r *Registry) Guarantees(text string) []models.Guarantee {
	out := []models.Guarantee{}

	if m := r.mortgage.FindStringSubmatch(text); m != nil {
		desc := "Mortgage"
		if rank := strings.TrimSpace(m[1] + m[2]); rank != "" {
			desc += " (" + strings.ToLower(rank) + ")"
		}
		out = append(out, models.Guarantee{
			Type:        models.GuaranteeMortgage,
			Description: desc,
			Category:    models.CategoryReal,
		})
	}

	for _, loc := range r.pledge.FindAllStringSubmatchIndex(text, -1) {
		if precededByNegative(text, loc[0]) {
			continue
		}
		object := strings.TrimSpace(text[loc[2]:loc[3]])
		out = append(out, models.Guarantee{
			Type:        models.GuaranteePledge,
			Description: "Pledge over " + object,
			Category:    models.CategoryReal,
		})
		break
	}

	if r.personal.MatchString(text) {
		out = append(out, models.Guarantee{
			Type:        models.GuaranteePersonal,
			Description: "Personal joint and several guarantee",
			Category:    models.CategoryPersonal,
		})
	}
	return out
}

// precededByNegative reports whether the word before offset is "negative",
// which turns a pledge into a negative-pledge covenant.
func precededByNegative(text string, offset int) bool {
	before := strings.ToLower(strings.TrimRight(text[:offset], " \t\r\n-"))
	return strings.HasSuffix(before, "negative")
}

// Fees detects origination, maintenance and insurance fees. Origination and
// maintenance are percentages; insurance is a fixed amount.
func (r *Registry) Fees(text string) []models.Fee {
	out := []models.Fee{}

	if v, ok := firstGroup(r.feeOrigination, text); ok {
		out = append(out, models.Fee{
			Type:         models.FeeOrigination,
			Value:        parseRatio(v),
			IsPercentage: true,
			Basis:        models.BasisPrincipal,
			Description:  "Origination fee",
		})
	}
	if v, ok := firstGroup(r.feeMaintenance, text); ok {
		out = append(out, models.Fee{
			Type:         models.FeeMaintenance,
			Value:        parseRatio(v),
			IsPercentage: true,
			Basis:        models.BasisOutstanding,
			Description:  "Periodic maintenance fee on outstanding balance",
		})
	}
	for _, m := range r.feeInsurance.FindAllStringSubmatch(text, -1) {
		if strings.TrimSpace(m[2]) != "" {
			continue
		}
		out = append(out, models.Fee{
			Type:        models.FeeInsurance,
			Value:       parseNumber(m[1]),
			Basis:       models.BasisPrincipal,
			Description: "Mandatory insurance",
		})
		break
	}
	return out
}

// Prepayment returns the prepayment clause. An explicit prohibition yields a
// not-permitted clause; otherwise the clause is permitted with whatever
// penalty and window could be found.
func (r *Registry) Prepayment(text string) *models.PrepaymentClause {
	if r.prepayForbidden.MatchString(text) {
		return &models.PrepaymentClause{
			Permitted:   false,
			Description: "Prepayment not permitted",
		}
	}

	clause := &models.PrepaymentClause{Permitted: true}
	if v, ok := firstGroup(r.prepayPenalty, text); ok {
		clause.PenaltyPct = parseRatio(v)
	}
	if v, ok := firstGroup(r.prepayWindow, text); ok {
		clause.WindowMonths = atoi(v)
	}
	clause.Description = fmt.Sprintf("Penalty %g%% within the first %d months", clause.PenaltyPct, clause.WindowMonths)
	return clause
}

// Covenants detects the debt-service-coverage, leverage and negative-pledge covenants.
func (r *Registry) Covenants(text string) []models.Covenant {
	out := []models.Covenant{}
	if v, ok := firstGroup(r.dscr, text); ok {
		out = append(out, models.Covenant{
			Type:        models.CovenantDebtServiceCoverage,
			Threshold:   parseRatio(v),
			Operator:    ">=",
			Description: "Debt service coverage ratio",
		})
	}
	if v, ok := firstGroup(r.leverage, text); ok {
		out = append(out, models.Covenant{
			Type:        models.CovenantLeverage,
			Threshold:   parseRatio(v),
			Operator:    "<=",
			Description: "Net debt / EBITDA leverage ratio",
		})
	}
	if r.negativePledge.MatchString(text) {
		out = append(out, models.Covenant{
			Type:        models.CovenantNegativePledge,
			Description: "No new liens over key assets",
		})
	}
	return out
}

// DefaultClauses detects cross-default, late-payment and acceleration
// triggers. The second return value reports whether cross-default applies.
func (r *Registry) DefaultClauses(text string) ([]models.DefaultClause, bool) {
	out := []models.DefaultClause{}
	cross := r.crossDefault.MatchString(text)
	if cross {
		out = append(out, models.DefaultClause{
			Type:         models.DefaultCross,
			Description:  "Cross-default with other obligations",
			Acceleration: true,
		})
	}
	if v, ok := firstGroup(r.latePayment, text); ok {
		out = append(out, models.DefaultClause{
			Type:         models.DefaultLatePayment,
			Description:  fmt.Sprintf("Late payment over %s days", v),
			Acceleration: true,
		})
	}
	if r.acceleration.MatchString(text) {
		if n := len(r.triggers.FindAllStringIndex(text, -1)); n > 0 {
			out = append(out, models.DefaultClause{
				Type:         models.DefaultAcceleration,
				Description:  fmt.Sprintf("Acceleration clause (%d triggers)", n),
				Acceleration: true,
			})
		}
	}
	return out, cross
}

// Parties returns the labelled lender and borrower names.
func (r *Registry) Parties(text string) (lender, borrower string) {
	if v, ok := firstGroup(r.lender, text); ok {
		lender = cleanName(v)
	}
	if v, ok := firstGroup(r.borrower, text); ok {
		borrower = cleanName(v)
	}
	return lender, borrower
}

// Jurisdiction returns the place named in a "courts of ..." clause.
func (r *Registry) Jurisdiction(text string) string {
	if v, ok := firstGroup(r.jurisdiction, text); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func cleanName(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",;")
}
