// Package parser assembles a structured Contract from raw contract text by
// running the field extractors once per facility, consolidating tranches
// and scoring extraction confidence.
package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/internal/extract"
	"github.com/seenimoa/loanlens/pkg/models"
)

// Parser turns contract text into a Contract. It is safe for concurrent use.
type Parser struct {
	reg    *extract.Registry
	logger *zap.Logger
}

// New returns a Parser using reg. A nil reg builds a fresh registry and a
// nil logger disables logging.
func New(reg *extract.Registry, logger *zap.Logger) *Parser {
	if reg == nil {
		reg = extract.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{reg: reg, logger: logger}
}

// Registry returns the parser's extraction registry.
func (p *Parser) Registry() *extract.Registry {
	return p.reg
}

// Parse extracts a Contract from text. It never fails: missing signals
// degrade to defaults and warnings. Empty text yields a contract with
// confidence 0 and a single "no text extracted" warning.
func (p *Parser) Parse(text string) models.Contract {
	c := models.NewContract()
	c.RawText = text

	if strings.TrimSpace(text) == "" {
		c.Warnings = append(c.Warnings, WarnNoText)
		p.logger.Warn("parser: no text extracted")
		return c
	}

	sections := Split(p.reg, text)
	if len(sections) > 1 {
		tranches := make([]models.Tranche, 0, len(sections))
		for _, s := range sections {
			t := p.extractTranche(s)
			if invertedBounds(t.Cap, t.Floor) {
				t.Cap, t.Floor = nil, nil
				c.Warnings = append(c.Warnings, t.Name+": "+WarnCapBelowFloor)
			}
			tranches = append(tranches, t)
		}
		p.logger.Debug("parser: multi-tranche contract", zap.Int("tranches", len(tranches)))
		c = Consolidate(c, tranches, GlobalClauses{
			Guarantees: p.reg.Guarantees(text),
			Fees:       p.reg.Fees(text),
			Prepayment: p.reg.Prepayment(text),
		})
	} else {
		p.extractSingle(&c, text)
	}

	c.Lender, c.Borrower = p.reg.Parties(text)
	c.Covenants = p.reg.Covenants(text)
	c.DefaultClauses, c.CrossDefault = p.reg.DefaultClauses(text)
	c.Jurisdiction = p.reg.Jurisdiction(text)
	c.GuaranteeCategory = models.CategoryOf(c.Guarantees)

	if invertedBounds(c.Cap, c.Floor) {
		c.Cap, c.Floor = nil, nil
		c.Warnings = append(c.Warnings, WarnCapBelowFloor)
	}

	score, warnings := Score(c)
	c.Confidence = score
	c.Warnings = append(c.Warnings, warnings...)

	p.logger.Debug("parser: contract assembled",
		zap.Float64("principal", c.Principal),
		zap.String("currency", c.Currency),
		zap.String("rate_type", string(c.RateType)),
		zap.Float64("confidence", c.Confidence),
		zap.Int("warnings", len(c.Warnings)),
	)
	return c
}

func (p *Parser) extractSingle(c *models.Contract, text string) {
	c.Principal, c.Currency = p.reg.Amount(text)

	rate := p.reg.Rate(text)
	c.NominalRate = rate.Nominal
	c.RateType = rate.Type
	c.Index = rate.Index
	c.SpreadBps = rate.SpreadBps
	c.Cap = rate.Cap
	c.Floor = rate.Floor

	c.TermMonths = p.reg.Term(text)
	c.Frequency = p.reg.Frequency(text)
	c.GraceMonths = p.reg.GraceMonths(text)
	c.Bullet = p.reg.IsBullet(text)

	c.Guarantees = p.reg.Guarantees(text)
	c.Fees = p.reg.Fees(text)
	c.Prepayment = p.reg.Prepayment(text)
}

func (p *Parser) extractTranche(s Section) models.Tranche {
	amount, currency := p.reg.Amount(s.Text)
	rate := p.reg.Rate(s.Text)
	return models.Tranche{
		Name:        s.Name,
		Amount:      amount,
		Currency:    currency,
		NominalRate: rate.Nominal,
		RateType:    rate.Type,
		TermMonths:  p.reg.Term(s.Text),
		Frequency:   p.reg.Frequency(s.Text),
		Index:       rate.Index,
		SpreadBps:   rate.SpreadBps,
		Cap:         rate.Cap,
		Floor:       rate.Floor,
		GraceMonths: p.reg.GraceMonths(s.Text),
		Bullet:      p.reg.IsBullet(s.Text),
		Guarantees:  p.reg.Guarantees(s.Text),
		Fees:        p.reg.Fees(s.Text),
		Prepayment:  p.reg.Prepayment(s.Text),
	}
}

func invertedBounds(ceiling, floor *float64) bool {
	return ceiling != nil && floor != nil && *ceiling < *floor
}
