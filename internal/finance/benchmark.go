package finance

import (
	"fmt"

	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/pkg/models"
)

// Size and term thresholds for market segmentation.
const (
	smallCompanyLimit  = 500_000
	mediumCompanyLimit = 5_000_000
	shortTermMonths    = 12
	mediumTermMonths   = 36
)

// SizeTier classifies a principal into a company-size tier.
func SizeTier(principal float64) string {
	switch {
	case principal < smallCompanyLimit:
		return models.SizeSmall
	case principal < mediumCompanyLimit:
		return models.SizeMedium
	default:
		return models.SizeLarge
	}
}

// TermTier classifies a term into a term tier.
func TermTier(months int) string {
	switch {
	case months <= shortTermMonths:
		return models.TermShort
	case months <= mediumTermMonths:
		return models.TermMedium
	default:
		return models.TermLong
	}
}

// Compare positions an effective annual rate within the reference band for
// the contract's size and term. A missing table or band yields a neutral
// comparison: zero delta, 50th percentile and a "no data" label.
func Compare(table models.MarketRateTable, principal float64, termMonths int, ear float64) models.MarketComparison {
	if len(table) == 0 {
		return models.MarketComparison{Percentile: 50, Evaluation: models.MarketNoData}
	}

	size, term := SizeTier(principal), TermTier(termMonths)
	band, ok := table.Band(size, term)
	if !ok {
		return models.MarketComparison{
			SizeTier:   size,
			TermTier:   term,
			Percentile: 50,
			Evaluation: models.MarketNoProfileData,
		}
	}

	delta := ear - band.Average
	return models.MarketComparison{
		SizeTier:      size,
		TermTier:      term,
		Delta:         amortization.Round2(delta),
		Percentile:    Percentile(ear, band),
		Evaluation:    Evaluate(delta),
		MarketAverage: band.Average,
		MarketRange:   fmt.Sprintf("%g%% - %g%%", band.Min, band.Max),
		HasData:       true,
	}
}

// Percentile maps a rate into [10, 90] by linear interpolation over the
// band's [min, max], clamped at both ends.
func Percentile(rate float64, band models.RateBand) int {
	switch {
	case rate <= band.Min:
		return 10
	case rate >= band.Max:
		return 90
	}
	return int(10 + (rate-band.Min)/(band.Max-band.Min)*80)
}

// Evaluate labels a delta against the market average.
func Evaluate(delta float64) models.MarketEvaluation {
	switch {
	case delta < -1:
		return models.MarketVeryCompetitive
	case delta < 0.5:
		return models.MarketCompetitive
	case delta < 2:
		return models.MarketSlightlyHigh
	default:
		return models.MarketHigh
	}
}
