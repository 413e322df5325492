package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/loanlens/internal/finance"
	"github.com/seenimoa/loanlens/internal/textsource"
)

const simpleLoan = `LENDER: First Bank
BORROWER: Acme Corp
The Lender agrees to lend $100,000.00 to the Borrower.
Interest rate: 12% fixed annual.
Term: 12 months with monthly payments.`

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAnalyze(t *testing.T) {
	a := New(nil, nil, Options{}, nil)
	report, err := a.Analyze(context.Background(), simpleLoan, start)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "First Bank", report.Contract.Lender)
	assert.Equal(t, 100000.0, report.Contract.Principal)
	assert.Equal(t, 12, report.Contract.TermMonths)
	require.Len(t, report.Result.Schedule, 12)
	assert.Equal(t, 8884.88, report.Result.FirstPayment)
	assert.Equal(t, 12.68, report.Result.EffectiveAnnualRate)
	assert.Equal(t, 12, report.FinancialSummary.Payments.Installments)
	assert.Equal(t, 1, report.Summary.Metadata.TrancheCount)
}

func TestAnalyzeCachesIdenticalText(t *testing.T) {
	a := New(nil, nil, Options{CacheTTL: time.Minute}, nil)
	first, err := a.Analyze(context.Background(), simpleLoan, start)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), simpleLoan, start)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := a.Analyze(context.Background(), simpleLoan, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestAnalyzeWithoutCache(t *testing.T) {
	a := New(nil, nil, Options{}, nil)
	first, err := a.Analyze(context.Background(), simpleLoan, start)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), simpleLoan, start)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, nil, Options{}, nil).Analyze(ctx, simpleLoan, start)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAppliesDefaultCurrency(t *testing.T) {
	a := New(nil, nil, Options{DefaultCurrency: "MXN"}, nil)
	assert.Equal(t, "MXN", a.Parse("Interest rate: 10%").Currency)
	assert.Equal(t, "USD", a.Parse(simpleLoan).Currency)
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "loan.txt")
	require.NoError(t, os.WriteFile(good, []byte(simpleLoan), 0644))
	html := filepath.Join(dir, "loan.html")
	require.NoError(t, os.WriteFile(html, []byte("<p>"+simpleLoan+"</p>"), 0644))
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	unsupported := filepath.Join(dir, "loan.pdf")

	a := New(nil, nil, Options{Concurrency: 2}, nil)
	reports, err := a.AnalyzeFiles(context.Background(), []string{good, empty, html, unsupported}, start)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, good, reports[0].Path)
	require.NotNil(t, reports[0].Report)
	assert.Equal(t, good, reports[0].Report.Source)
	assert.Empty(t, reports[0].Error)

	assert.Nil(t, reports[1].Report)
	assert.Contains(t, reports[1].Error, textsource.ErrNoText.Error())

	require.NotNil(t, reports[2].Report)
	assert.Equal(t, 100000.0, reports[2].Report.Contract.Principal)

	assert.Contains(t, reports[3].Error, "unsupported format")
}

func TestSensitivityRequiresVariableRate(t *testing.T) {
	_, _, err := New(nil, nil, Options{}, nil).Sensitivity(simpleLoan, start)
	assert.ErrorIs(t, err, finance.ErrNotVariableRate)
}

func TestPrepay(t *testing.T) {
	contract, res, err := New(nil, nil, Options{}, nil).Prepay(simpleLoan, start, 6, 10000)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, contract.Principal)
	assert.True(t, res.Permitted)
	assert.Equal(t, 41492.11, res.ReducedBalance)
	assert.Len(t, res.Revised, 6)

	_, _, err = New(nil, nil, Options{}, nil).Prepay(simpleLoan, start, 20, 10000)
	assert.ErrorIs(t, err, finance.ErrInvalidPeriod)
}
