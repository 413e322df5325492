// Package analysis runs the full contract pipeline: text in, parsed
// contract and financial result out. It memoizes identical requests and
// fans batches of files out across a bounded worker group.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/loanlens/internal/finance"
	"github.com/seenimoa/loanlens/internal/infra"
	"github.com/seenimoa/loanlens/internal/parser"
	"github.com/seenimoa/loanlens/internal/textsource"
	"github.com/seenimoa/loanlens/pkg/models"
)

// Report is the outcome of analyzing one contract.
type Report struct {
	ID               string                   `json:"id"`
	Source           string                   `json:"source,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	Contract         models.Contract          `json:"contract"`
	Summary          parser.ContractSummary   `json:"contract_summary"`
	Result           models.FinancialResult   `json:"financial_result"`
	FinancialSummary finance.FinancialSummary `json:"financial_summary"`
}

// FileReport pairs a file with its report or the error that stopped it.
type FileReport struct {
	Path   string  `json:"path"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Options configures an Analyzer.
type Options struct {
	// DefaultCurrency replaces the built-in currency when no amount is found.
	DefaultCurrency string
	// CacheTTL memoizes reports of identical text; zero disables caching.
	CacheTTL time.Duration
	// Concurrency bounds AnalyzeFiles; values below 1 mean 1.
	Concurrency int
}

// Analyzer ties the parser and calculator together. It is safe for
// concurrent use.
type Analyzer struct {
	parser *parser.Parser
	calc   *finance.Calculator
	cache  *infra.Cache[*Report]
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Analyzer. Nil parser or calculator use defaults.
func New(p *parser.Parser, calc *finance.Calculator, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = parser.New(nil, logger)
	}
	if calc == nil {
		calc = finance.New(nil, nil, logger)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Analyzer{
		parser: p,
		calc:   calc,
		cache:  infra.NewCache[*Report](opts.CacheTTL),
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Parser returns the contract parser.
func (a *Analyzer) Parser() *parser.Parser { return a.parser }

// Calculator returns the financial calculator.
func (a *Analyzer) Calculator() *finance.Calculator { return a.calc }

// Cache returns the report cache.
func (a *Analyzer) Cache() *infra.Cache[*Report] { return a.cache }

// Parse extracts the contract from text and applies the configured defaults.
func (a *Analyzer) Parse(text string) models.Contract {
	c := a.parser.Parse(text)
	if c.Principal == 0 && a.opts.DefaultCurrency != "" {
		c.Currency = a.opts.DefaultCurrency
	}
	return c
}

// Analyze parses text and computes every financial metric, starting the
// schedule at start (zero means today). Identical requests within the cache
// TTL return the same report.
func (a *Analyzer) Analyze(ctx context.Context, text string, start time.Time) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := infra.Key(text, start.Format(time.DateOnly))
	report, hit, err := a.cache.GetOrCompute(key, func() (*Report, error) {
		return a.analyze(text, start), nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		a.logger.Debug("analysis: cache hit", zap.String("id", report.ID))
	}
	return report, nil
}

func (a *Analyzer) analyze(text string, start time.Time) *Report {
	contract := a.Parse(text)
	result := a.calc.Calculate(contract, start)
	report := &Report{
		ID:               uuid.NewString(),
		CreatedAt:        a.now().UTC(),
		Contract:         contract,
		Summary:          parser.Summarize(contract),
		Result:           result,
		FinancialSummary: finance.Summarize(contract, result),
	}
	a.logger.Info("analysis: contract analyzed",
		zap.String("id", report.ID),
		zap.Float64("confidence", contract.Confidence),
		zap.Float64("effective_annual_rate", result.EffectiveAnnualRate),
		zap.Bool("irr_fallback", result.IRRFallback),
	)
	return report
}

// AnalyzeFile reads path and analyzes its text.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, start time.Time) (*Report, error) {
	text, err := textsource.ReadFile(path)
	if err != nil {
		return nil, err
	}
	report, err := a.Analyze(ctx, text, start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := *report
	out.Source = path
	return &out, nil
}

// AnalyzeFiles analyzes every path concurrently, bounded by the configured
// concurrency. A failing file is reported in its FileReport and does not
// stop the others; only context cancellation aborts the batch. Results keep
// the order of paths.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, start time.Time) ([]FileReport, error) {
	out := make([]FileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := a.AnalyzeFile(gctx, path, start)
			fr := FileReport{Path: path, Report: report}
			if err != nil {
				a.logger.Warn("analysis: file failed", zap.String("path", path), zap.Error(err))
				fr.Error = err.Error()
			}
			out[i] = fr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// Sensitivity parses text and runs the rate sensitivity analysis.
func (a *Analyzer) Sensitivity(text string, start time.Time, shifts ...float64) (models.Contract, *models.SensitivityReport, error) {
	contract := a.Parse(text)
	report, err := a.calc.Sensitivity(contract, start, shifts...)
	return contract, report, err
}

// Prepay parses text, builds its schedule and simulates a prepayment of
// amount at period.
func (a *Analyzer) Prepay(text string, start time.Time, period int, amount float64) (models.Contract, models.PrepaymentResult, error) {
	contract := a.Parse(text)
	rows := a.calc.Engine().Schedule(contract, start)
	res, err := finance.Prepay(contract, rows, period, amount)
	return contract, res, err
}
