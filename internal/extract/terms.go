package extract

import (
	"strings"

	"github.com/seenimoa/loanlens/pkg/models"
)

// Amount returns the first principal amount found, trying currencies in
// priority order (USD, EUR, MXN). It returns (0, USD) when nothing matches.
func (r *Registry) Amount(text string) (float64, string) {
	for _, cp := range r.amounts {
		if v, ok := firstGroup(cp.pattern, text); ok {
			return parseNumber(v), cp.code
		}
	}
	return 0, models.DefaultCurrency
}

// Term returns the loan term in months. Term-labelled matches win over bare
// durations, and within each tier months win over years. Returns 0 if absent.
func (r *Registry) Term(text string) int {
	if v, ok := firstGroup(r.termLabelledMonths, text); ok {
		return atoi(v)
	}
	if v, ok := firstGroup(r.termLabelledYears, text); ok {
		return atoi(v) * 12
	}
	if v, ok := firstGroup(r.termMonths, text); ok {
		return atoi(v)
	}
	if v, ok := firstGroup(r.termYears, text); ok {
		return atoi(v) * 12
	}
	return 0
}

// Frequency maps payment-frequency wording to a PaymentFrequency. Without a
// frequency word it falls back to the bullet signal, then to monthly.
func (r *Registry) Frequency(text string) models.PaymentFrequency {
	word, ok := firstGroup(r.freqAfter, text)
	if !ok {
		word, ok = firstGroup(r.freqBefore, text)
	}
	if ok {
		if f, known := frequencyWord(word); known {
			return f
		}
	}
	if r.IsBullet(text) {
		return models.FrequencyBullet
	}
	return models.FrequencyMonthly
}

func frequencyWord(word string) (models.PaymentFrequency, bool) {
	w := strings.ToLower(word)
	switch {
	case strings.HasPrefix(w, "semi"), strings.HasPrefix(w, "semestral"):
		return models.FrequencySemiannual, true
	case strings.HasPrefix(w, "month"), strings.HasPrefix(w, "mensual"):
		return models.FrequencyMonthly, true
	case strings.HasPrefix(w, "quarter"), strings.HasPrefix(w, "trimestral"):
		return models.FrequencyQuarterly, true
	case strings.HasPrefix(w, "annual"), strings.HasPrefix(w, "anual"):
		return models.FrequencyAnnual, true
	}
	return "", false
}

// IsBullet reports whether the text describes principal repaid at maturity.
func (r *Registry) IsBullet(text string) bool {
	return r.bullet.MatchString(text)
}

// GraceMonths returns the principal grace period in months, or 0.
func (r *Registry) GraceMonths(text string) int {
	if v, ok := firstGroup(r.grace, text); ok {
		return atoi(v)
	}
	if v, ok := firstGroup(r.graceAfter, text); ok {
		return atoi(v)
	}
	return 0
}
