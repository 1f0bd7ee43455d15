package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/aggregator"
	"mmradar/internal/analyzers/composite"
	"mmradar/internal/analyzers/positioning"
	"mmradar/internal/analyzers/technical"
	"mmradar/internal/analyzers/volatility"
	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
)

type stubQuoteSource struct {
	prices map[string]float64
}

func (s *stubQuoteSource) Name() string { return "stub-quotes" }

func (s *stubQuoteSource) Quote(_ context.Context, symbol string) (*marketdata.Quote, error) {
	price, ok := s.prices[symbol]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoData, "no quote for %s", symbol)
	}
	return &marketdata.Quote{Symbol: symbol, Price: price}, nil
}

type stubChainSource struct {
	chain marketdata.Chain
}

func (s *stubChainSource) Name() string { return "stub-chains" }

func (s *stubChainSource) Chain(_ context.Context, _ string, _ time.Time) (marketdata.Chain, error) {
	return s.chain, nil
}

type failingHistorySource struct{}

func (s *failingHistorySource) Name() string { return "stub-history" }

func (s *failingHistorySource) History(_ context.Context, _ string, _ int) (marketdata.History, error) {
	return nil, errors.ErrSourceUnavailable
}

type stubDisclosureSource struct {
	records []disclosure.Record
}

func (s *stubDisclosureSource) Name() string { return "stub-filings" }

func (s *stubDisclosureSource) Disclosures(_ context.Context, _ string) ([]disclosure.Record, error) {
	return s.records, nil
}

// twoStrikeChain builds the pinning scenario where put holders dominate
// the 240 strike and call holders the 250 strike.
func twoStrikeChain(expiry time.Time) marketdata.Chain {
	return marketdata.Chain{
		{Strike: 240, Kind: marketdata.KindCall, OpenInterest: 5_000, Expiry: expiry},
		{Strike: 240, Kind: marketdata.KindPut, OpenInterest: 20_000, Expiry: expiry},
		{Strike: 250, Kind: marketdata.KindCall, OpenInterest: 20_000, Expiry: expiry},
		{Strike: 250, Kind: marketdata.KindPut, OpenInterest: 5_000, Expiry: expiry},
	}
}

func newTestService(chain marketdata.Chain) *Service {
	agg := aggregator.New(
		[]aggregator.QuoteSource{&stubQuoteSource{prices: map[string]float64{
			"TSLA":    246.97,
			vixSymbol: 18.5,
		}}},
		[]aggregator.ChainSource{&stubChainSource{chain: chain}},
		[]aggregator.HistorySource{&failingHistorySource{}},
		[]aggregator.DisclosureSource{&stubDisclosureSource{records: []disclosure.Record{{
			Actor:           "Nancy Pelosi",
			Ticker:          "TSLA",
			Transaction:     disclosure.TxPurchase,
			AmountBracket:   "$1,001 - $15,000",
			TransactionDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		}}}},
	)

	return New(
		agg,
		positioning.New(positioning.DefaultConfig()),
		volatility.New(volatility.DefaultConfig()),
		technical.New(),
		composite.New(composite.DefaultConfig()),
		Config{},
	)
}

func TestRun_FullCycle(t *testing.T) {
	expiry := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	svc := newTestService(twoStrikeChain(expiry))

	view, err := svc.Run(context.Background(), "TSLA", "command")
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.Equal(t, "TSLA", view.Symbol)
	assert.Equal(t, 246.97, view.Quote.Price)
	assert.Equal(t, "stub-quotes", view.QuoteSource)
	assert.True(t, view.Session.Valid())

	// Call-heavy 250 outweighs put-heavy 240 as the pinning target
	require.NotNil(t, view.Positioning)
	assert.Equal(t, 250.0, view.Positioning.MaxPain)
	assert.Equal(t, advisory.ConfidenceMedium, view.Positioning.Confidence)

	require.NotNil(t, view.Volatility)
	require.NotNil(t, view.Technical)

	// Balanced open interest reads neutral with no extreme flags
	require.NotNil(t, view.Technical.PCR)
	assert.InDelta(t, 1.0, view.Technical.PCR.RatioOI, 1e-9)
	assert.Equal(t, advisory.SentimentNeutral, view.Technical.PCR.Sentiment)
	assert.Empty(t, view.Technical.PCR.Warnings)

	// History source is down, trend and volume degrade to nil
	assert.Nil(t, view.Technical.Trend)
	assert.Nil(t, view.Technical.Volume)

	require.NotNil(t, view.Technical.VIX)
	assert.Equal(t, advisory.VIXMildAnxiety, view.Technical.VIX.Regime)

	require.NotNil(t, view.Advisory)
	assert.NotEqual(t, "", view.Advisory.Tier.String())
	assert.NotEmpty(t, view.Advisory.Recommendation)

	require.Len(t, view.Disclosures, 1)
	assert.False(t, view.DisclosureProvenance.Synthetic())
}

func TestRun_QuoteFailureAborts(t *testing.T) {
	agg := aggregator.New(
		[]aggregator.QuoteSource{&stubQuoteSource{prices: map[string]float64{}}},
		nil, nil, nil,
	)
	svc := New(
		agg,
		positioning.New(positioning.DefaultConfig()),
		volatility.New(volatility.DefaultConfig()),
		technical.New(),
		composite.New(composite.DefaultConfig()),
		Config{},
	)

	_, err := svc.Run(context.Background(), "TSLA", "command")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestRun_CancelledContext(t *testing.T) {
	expiry := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	svc := newTestService(twoStrikeChain(expiry))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, "TSLA", "command")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNextWeeklyExpiry(t *testing.T) {
	monday := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), nextWeeklyExpiry(monday))
	// A Friday resolves to itself
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), nextWeeklyExpiry(friday))
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), nextWeeklyExpiry(saturday))
}
