package models

// RateBand is the reference {average, min, max} rate for one market segment.
type RateBand struct {
	Average float64 `json:"average" mapstructure:"average" yaml:"average"`
	Min     float64 `json:"min"     mapstructure:"min"     yaml:"min"`
	Max     float64 `json:"max"     mapstructure:"max"     yaml:"max"`
}

// MarketRateTable maps company-size tier → term tier → reference band.
type MarketRateTable map[string]map[string]RateBand

// Size and term tiers used as MarketRateTable keys.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"

	TermShort  = "short_term"
	TermMedium = "medium_term"
	TermLong   = "long_term"
)

// Band looks up the band for a (size, term) pair.
func (t MarketRateTable) Band(size, term string) (RateBand, bool) {
	if t == nil {
		return RateBand{}, false
	}
	terms, ok := t[size]
	if !ok {
		return RateBand{}, false
	}
	band, ok := terms[term]
	return band, ok
}

// RiskFactorWeights maps a risk category to its weight. It is loaded with
// the market table but consumed only by risk-assessment collaborators.
type RiskFactorWeights map[string]float64
