// Package refdata loads the read-only reference tables used by the analysis
// pipeline: market-rate bands per company size and term, and risk-factor
// weights. Tables are read once from YAML or JSON files; an unset path falls
// back to the built-in defaults.
package refdata

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/internal/config"
	"github.com/seenimoa/loanlens/pkg/models"
)

// ErrNoTable is returned when a reference file was configured but cannot be found.
var ErrNoTable = errors.New("refdata: reference table not found")

// Top-level keys holding each table inside its file.
const (
	marketRatesKey = "market_rates"
	riskFactorsKey = "risk_factors"
)

// Tables bundles the loaded reference data.
type Tables struct {
	Market      models.MarketRateTable   `json:"market_rates"`
	RiskFactors models.RiskFactorWeights `json:"risk_factors"`
	MarketFrom  string                   `json:"market_source"`
	RiskFrom    string                   `json:"risk_source"`
}

// BuiltinSource marks a table that came from the compiled-in defaults.
const BuiltinSource = "builtin"

// Load reads both tables from the paths in cfg. Empty paths use the defaults.
func Load(cfg config.EngineConfig, logger *zap.Logger) (*Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tables{
		Market:      DefaultMarketRates(),
		RiskFactors: DefaultRiskFactors(),
		MarketFrom:  BuiltinSource,
		RiskFrom:    BuiltinSource,
	}

	if cfg.MarketRatesFile != "" {
		market, err := LoadMarketRates(cfg.MarketRatesFile)
		if err != nil {
			return nil, err
		}
		t.Market, t.MarketFrom = market, cfg.MarketRatesFile
	}
	if cfg.RiskFactorsFile != "" {
		risk, err := LoadRiskFactors(cfg.RiskFactorsFile)
		if err != nil {
			return nil, err
		}
		t.RiskFactors, t.RiskFrom = risk, cfg.RiskFactorsFile
	}

	logger.Debug("reference data loaded",
		zap.String("market_source", t.MarketFrom),
		zap.Int("size_tiers", len(t.Market)),
		zap.String("risk_source", t.RiskFrom),
		zap.Int("risk_factors", len(t.RiskFactors)),
	)
	return t, nil
}

// LoadMarketRates reads a market-rate table from path. The file holds a
// market_rates map of size tier to term tier to {average, min, max}.
func LoadMarketRates(path string) (models.MarketRateTable, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}
	var table models.MarketRateTable
	if err := v.UnmarshalKey(marketRatesKey, &table); err != nil {
		return nil, fmt.Errorf("refdata: decode %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("refdata: %s has no %s entries", path, marketRatesKey)
	}
	if err := Validate(table); err != nil {
		return nil, fmt.Errorf("refdata: %s: %w", path, err)
	}
	return table, nil
}

// LoadRiskFactors reads risk-factor weights from path. The file holds a
// risk_factors map of category to weight.
func LoadRiskFactors(path string) (models.RiskFactorWeights, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}
	var weights models.RiskFactorWeights
	if err := v.UnmarshalKey(riskFactorsKey, &weights); err != nil {
		return nil, fmt.Errorf("refdata: decode %s: %w", path, err)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("refdata: %s has no %s entries", path, riskFactorsKey)
	}
	return weights, nil
}

func read(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTable, path)
		}
		return nil, fmt.Errorf("refdata: stat %s: %w", path, err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("refdata: read %s: %w", path, err)
	}
	return v, nil
}

// Validate checks that every band satisfies min <= average <= max.
func Validate(table models.MarketRateTable) error {
	for size, terms := range table {
		for term, band := range terms {
			if band.Min > band.Max || band.Average < band.Min || band.Average > band.Max {
				return fmt.Errorf("band %s/%s is inconsistent: min %g, average %g, max %g",
					size, term, band.Min, band.Average, band.Max)
			}
		}
	}
	return nil
}

// DefaultMarketRates returns a fresh copy of the built-in market bands, in
// annual percent.
func DefaultMarketRates() models.MarketRateTable {
	return models.MarketRateTable{
		models.SizeSmall: {
			models.TermShort:  {Average: 18.5, Min: 14.0, Max: 24.0},
			models.TermMedium: {Average: 17.0, Min: 13.0, Max: 22.0},
			models.TermLong:   {Average: 16.0, Min: 12.5, Max: 21.0},
		},
		models.SizeMedium: {
			models.TermShort:  {Average: 14.5, Min: 11.0, Max: 18.5},
			models.TermMedium: {Average: 13.5, Min: 10.5, Max: 17.0},
			models.TermLong:   {Average: 13.0, Min: 10.0, Max: 16.5},
		},
		models.SizeLarge: {
			models.TermShort:  {Average: 11.5, Min: 9.0, Max: 14.5},
			models.TermMedium: {Average: 11.0, Min: 8.5, Max: 14.0},
			models.TermLong:   {Average: 10.5, Min: 8.0, Max: 13.5},
		},
	}
}

// DefaultRiskFactors returns a fresh copy of the built-in risk weights.
func DefaultRiskFactors() models.RiskFactorWeights {
	return models.RiskFactorWeights{
		"liquidity":   0.25,
		"rate":        0.25,
		"operational": 0.20,
		"legal":       0.15,
		"prepayment":  0.15,
	}
}
