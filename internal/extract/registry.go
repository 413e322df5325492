// Package extract holds the heuristic field detectors that read loan-contract
// text. Every detector is a pure function of the text; all patterns are
// compiled once into a Registry that is safe for concurrent use.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// number matches a decimal amount with optional thousands separators.
const number = `(\d[\d,]*(?:\.\d+)?)`

// ratio matches a small decimal written with a dot or comma.
const ratio = `(\d+(?:[.,]\d+)?)`

// Registry is the immutable table of compiled extraction patterns.
// Build one with NewRegistry and share it; it holds no mutable state.
type Registry struct {
	amounts []currencyPattern

	rateLabelled *regexp.Regexp
	rateAny      *regexp.Regexp
	signals      []SignalRule
	indexSpread  *regexp.Regexp
	spreadBps    *regexp.Regexp
	cap          *regexp.Regexp
	floor        *regexp.Regexp

	termLabelledMonths *regexp.Regexp
	termLabelledYears  *regexp.Regexp
	termMonths         *regexp.Regexp
	termYears          *regexp.Regexp

	freqAfter  *regexp.Regexp
	freqBefore *regexp.Regexp
	bullet     *regexp.Regexp
	grace      *regexp.Regexp
	graceAfter *regexp.Regexp

	mortgage *regexp.Regexp
	pledge   *regexp.Regexp
	personal *regexp.Regexp

	feeOrigination *regexp.Regexp
	feeMaintenance *regexp.Regexp
	feeInsurance   *regexp.Regexp

	prepayForbidden *regexp.Regexp
	prepayPenalty   *regexp.Regexp
	prepayWindow    *regexp.Regexp

	dscr           *regexp.Regexp
	leverage       *regexp.Regexp
	negativePledge *regexp.Regexp

	crossDefault *regexp.Regexp
	latePayment  *regexp.Regexp
	acceleration *regexp.Regexp
	triggers     *regexp.Regexp

	lender       *regexp.Regexp
	borrower     *regexp.Regexp
	jurisdiction *regexp.Regexp

	tranche *regexp.Regexp
}

// currencyPattern pairs a currency code with the pattern that detects an
// amount in it. Either capture group may hold the number.
type currencyPattern struct {
	code    string
	pattern *regexp.Regexp
}

func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

// NewRegistry compiles every extraction pattern.
func NewRegistry() *Registry {
	return &Registry{
		amounts: []currencyPattern{
			{"USD", ci(`(?:\$|\bUS\$|\bUSD)\s*` + number + `|` + number + `\s*(?:USD|US\s+dollars?|dollars?|d[oó]lares?)\b`)},
			{"EUR", ci(`(?:€|\bEUR)\s*` + number + `|` + number + `\s*(?:€|EUR\b|euros?\b)`)},
			{"MXN", ci(`\bMXN\s*` + number + `|` + number + `\s*(?:MXN\b|pesos?\b)`)},
		},

		rateLabelled: ci(`\b(?:interest\s+rate|rate|tasa(?:\s+de\s+inter[eé]s)?|inter[eé]st?)\b[^.%\d]{0,40}?` + ratio + `\s*%`),
		rateAny:      ci(ratio + `\s*%`),
		signals:      defaultSignalRules(),
		indexSpread:  ci(`\b(SOFR|EURIBOR|TIIE|LIBOR|PRIME|SONIA)\b(\s*\d+\s*[MD]?)?\s*\+\s*` + ratio + `\s*(%|bps\b|pb\b|basis\s+points|puntos?\s+base)?`),
		spreadBps:    ci(ratio + `\s*(?:bps|pb|basis\s+points|puntos?\s+base)\b`),
		cap:          ci(`\b(?:cap|ceiling|techo)\b(?:\s*\([^)]*\))?\s*(?:of\s+|at\s+|de\s+|del\s+)?` + ratio + `\s*%`),
		floor:        ci(`\b(?:floor|piso)\b(?:\s*\([^)]*\))?\s*(?:of\s+|at\s+|de\s+|del\s+)?` + ratio + `\s*%`),

		termLabelledMonths: ci(`\b(?:term|tenor|maturity|plazo)\b[^.\d]{0,40}?(\d+)\s*(?:months?|meses|mes)\b`),
		termLabelledYears:  ci(`\b(?:term|tenor|maturity|plazo)\b[^.\d]{0,40}?(\d+)\s*(?:years?|años?|anos?)\b`),
		termMonths:         ci(`(\d+)\s*(?:months?|meses|mes)\b`),
		termYears:          ci(`(\d+)\s*(?:years?|años?|anos?)\b`),

		freqAfter:  ci(`\b(?:payments?|installments?|instalments?|pagos?|cuotas?|payable|repaid|amortized)\s+(?:\w+\s+){0,3}?(monthly|quarterly|semi-?annual(?:ly)?|annual(?:ly)?|mensual(?:es|mente)?|trimestral(?:es|mente)?|semestral(?:es|mente)?|anual(?:es|mente)?)\b`),
		freqBefore: ci(`\b(monthly|quarterly|semi-?annual|annual|mensual|trimestral|semestral|anual)\s+(?:payments?|installments?|instalments?|pagos?|cuotas?)\b`),
		bullet:     ci(`\bbullet\b|\bballoon\b|\bsingle\s+(?:principal\s+)?(?:payment|repayment)\s+(?:of\s+principal\s+)?at\s+maturity\b|\bpago\s+[uú]nico\b`),
		grace:      ci(`(?:\bgrace\s+period|\bper[ií]odo\s+de\s+gracia)\b[^.\d]{0,40}?(\d+)\s*(?:months?|meses)\b`),
		graceAfter: ci(`(\d+)[\s-]*(?:months?|meses)\s+(?:of\s+)?(?:principal\s+)?(?:grace|de\s+gracia)\b`),

		mortgage: ci(`(?:\b((?:first|second|third|\d+(?:st|nd|rd|th|º|°)?)[\s-]*(?:rank|lien|degree|grado))\s+)?\b(?:mortgage|hipoteca)\b(?:\s+(?:of\s+|de\s+)?((?:first|second|third|\d+(?:st|nd|rd|th|º|°)?)[\s-]*(?:rank|lien|degree|grado)))?`),
		pledge:   ci(`\b(?:pledge|prenda)\s+(?:over|on|of|sobre)\s+([^.,;]+?)(?:[.,;]|\s+and\s+|\s+y\s+|$)`),
		personal: ci(`\bpersonal\s+guarantee\b|\bjoint\s+and\s+several\s+guarantee\b|\bguarantor\b|\baval\b`),

		feeOrigination: ci(`\b(?:origination|opening|arrangement|upfront|apertura)\b[^.%\d]{0,30}?` + ratio + `\s*%`),
		feeMaintenance: ci(`\b(?:maintenance|servicing|mantenimiento)\b[^.%\d]{0,30}?` + ratio + `\s*%`),
		feeInsurance:   ci(`\b(?:insurance|seguro)\b[^.\d$€]{0,40}?[$€]?\s*` + number + `(\s*%)?`),

		prepayForbidden: ci(`\b(?:prepayments?|early\s+repayments?|prepagos?)\b[^.]{0,60}?(?:\bnot\s+(?:be\s+)?(?:permitted|allowed)\b|\bprohibited\b)|\bno\s+(?:prepayments?|early\s+repayments?)\s+(?:is\s+|are\s+|shall\s+be\s+)?(?:permitted|allowed)\b|\bno\s+se\s+permiten?\b[^.]{0,40}?\bprepagos?\b`),
		prepayPenalty:   ci(`\b(?:penalty|penalizaci[oó]n|prepayment\s+fee|break\s+fee)\b[^.%\d]{0,30}?` + ratio + `\s*%`),
		prepayWindow:    ci(`\b(?:first|within(?:\s+the)?|primeros?|dentro\s+de(?:\s+los)?)\s+(\d+)\s*(?:months?|meses)\b`),

		dscr:           ci(`\b(?:DSCR|debt\s+service\s+coverage(?:\s+ratio)?)\s*(?:\([^)]*\)\s*)?(?:≥|>=|>|of\s+at\s+least|at\s+least|not\s+less\s+than|no\s+menor\s+a)\s*(\d+(?:\.\d+)?)`),
		leverage:       ci(`(?:\b(?:net\s+debt|debt|deuda(?:\s+neta)?)\s*/\s*EBITDA|\bleverage\s+ratio)\s*(?:\([^)]*\)\s*)?(?:≤|<=|<|of\s+at\s+most|at\s+most|not\s+(?:more|greater)\s+than|no\s+mayor\s+a)\s*(\d+(?:\.\d+)?)`),
		negativePledge: ci(`\bnegative\s+pledge\b`),

		crossDefault: ci(`\bcross[\s-]*default\b|\bincumplimiento\s+cruzado\b`),
		latePayment:  ci(`\b(?:late\s+payment|payment\s+delay|arrears|overdue|mora)\b[^.\d]{0,40}?(\d+)\s*(?:days?|d[ií]as?)`),
		acceleration: ci(`\baccelerat(?:ion|ed|e)\b|\bvencimiento\s+anticipado\b|\baceleraci[oó]n\b`),
		triggers:     ci(`\b(?:default|insolvency|bankruptcy|incumplimiento|insolvencia)\b`),

		lender:       ci(`\b(?:LENDER|PRESTAMISTA)\s*:\s*([^,\n]+)`),
		borrower:     ci(`\b(?:BORROWER|PRESTATARIO)\s*:\s*([^,\n]+)`),
		jurisdiction: ci(`\b(?:courts\s+of|tribunales\s+de)\s+([^,.;\n]+)`),

		tranche: ci(`\b(?:Tranche|Tramo)\s+([A-Z])\s*[:(\-]`),
	}
}

// parseNumber reads a captured amount, treating commas as thousands separators.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRatio reads a captured rate or ratio, treating a comma as the decimal mark.
func parseRatio(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// firstGroup returns the first non-empty capture group of the first match.
func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	for _, g := range m[1:] {
		if g != "" {
			return g, true
		}
	}
	return "", false
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
