package extract

import (
	"regexp"
	"strings"

	"github.com/seenimoa/loanlens/pkg/models"
)

// SignalRule is a named boolean test that classifies a contract's rate regime.
type SignalRule struct {
	Name    string
	Class   models.RateType
	pattern *regexp.Regexp
}

// Match reports whether the rule fires on text.
func (r SignalRule) Match(text string) bool {
	return r.pattern.MatchString(text)
}

// defaultSignalRules returns the classification rules in priority order.
// Fixed-rate signals are checked before variable-rate ones.
func defaultSignalRules() []SignalRule {
	return []SignalRule{
		{"fixed-rate-phrase", models.RateFixed, ci(`\bfixed\s+(?:interest\s+)?rate\b|\btasa\s+(?:de\s+inter[eé]s\s+)?fija\b`)},
		{"percent-fixed", models.RateFixed, ci(`\d+(?:[.,]\d+)?\s*%\s*(?:fixed|fija|fijo)\b`)},
		{"rate-is-fixed", models.RateFixed, ci(`\brate\s+(?:is\s+|shall\s+be\s+|will\s+be\s+)?fixed\b|\binter[eé]s\s+(?:ser[aá]\s+)?\d+(?:[.,]\d+)?\s*%\s*fij[ao]\b`)},
		{"variable-rate-phrase", models.RateVariable, ci(`\b(?:variable|floating)\s+(?:interest\s+)?rate\b|\btasa\s+(?:de\s+inter[eé]s\s+)?(?:ser[aá]\s+)?variable\b`)},
		{"rate-is-variable", models.RateVariable, ci(`\brate\s+(?:is\s+|shall\s+be\s+|will\s+be\s+)?(?:variable|floating)\b`)},
		{"index-plus-spread", models.RateVariable, ci(`\b(?:SOFR|EURIBOR|TIIE|LIBOR|PRIME|SONIA)\b(?:\s*\d+\s*[MD]?)?\s*\+\s*\d`)},
	}
}

// Rules returns a copy of the registry's rate classification rules.
func (r *Registry) Rules() []SignalRule {
	out := make([]SignalRule, len(r.signals))
	copy(out, r.signals)
	return out
}

// ClassifyRate returns the rate regime of the first matching rule and the
// rule's name. Text matching no rule is fixed with an empty rule name.
func (r *Registry) ClassifyRate(text string) (models.RateType, string) {
	for _, rule := range r.signals {
		if rule.Match(text) {
			return rule.Class, rule.Name
		}
	}
	return models.RateFixed, ""
}

// RateInfo is the result of rate extraction. Variable-rate attributes are
// only populated when Type is variable.
type RateInfo struct {
	Type      models.RateType
	Rule      string
	Nominal   float64
	Index     string
	SpreadBps *float64
	Cap       *float64
	Floor     *float64
}

// Rate classifies the rate regime and extracts the nominal annual rate. For
// variable contracts it also extracts the reference index, spread, cap and floor.
func (r *Registry) Rate(text string) RateInfo {
	info := RateInfo{Type: models.RateFixed}
	info.Type, info.Rule = r.ClassifyRate(text)

	if v, ok := firstGroup(r.rateLabelled, text); ok {
		info.Nominal = parseRatio(v)
	} else if v, ok := firstGroup(r.rateAny, text); ok {
		info.Nominal = parseRatio(v)
	}

	if info.Type != models.RateVariable {
		return info
	}

	if m := r.indexSpread.FindStringSubmatch(text); m != nil {
		info.Index = strings.ToUpper(m[1])
		if tenor := strings.Join(strings.Fields(m[2]), ""); tenor != "" {
			info.Index += " " + strings.ToUpper(tenor)
		}
		spread := parseRatio(m[3])
		if !isBasisPointUnit(m[4]) && spread < 10 {
			spread *= 100
		}
		info.SpreadBps = &spread
	} else if v, ok := firstGroup(r.spreadBps, text); ok {
		spread := parseRatio(v)
		info.SpreadBps = &spread
	}

	if v, ok := firstGroup(r.cap, text); ok {
		c := parseRatio(v)
		info.Cap = &c
	}
	if v, ok := firstGroup(r.floor, text); ok {
		f := parseRatio(v)
		info.Floor = &f
	}
	return info
}

func isBasisPointUnit(unit string) bool {
	unit = strings.ToLower(strings.TrimSpace(unit))
	return unit != "" && unit != "%"
}
