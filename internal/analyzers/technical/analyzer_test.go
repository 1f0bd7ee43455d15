package technical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/marketdata"
)

func flatHistory(bars int, close, volume float64) marketdata.History {
	history := make(marketdata.History, bars)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range history {
		history[i] = marketdata.Candle{Date: day.AddDate(0, 0, i), Close: close, Volume: volume}
	}
	return history
}

func TestClassifyVIX_Buckets(t *testing.T) {
	cases := []struct {
		level  float64
		regime advisory.VIXRegime
	}{
		{35, advisory.VIXExtremeFear},
		{25, advisory.VIXFear},
		{18, advisory.VIXMildAnxiety},
		{12, advisory.VIXComplacent},
	}

	for _, tc := range cases {
		reading := classifyVIX(tc.level)
		assert.Equal(t, tc.regime, reading.Regime, "level %.0f", tc.level)
		assert.NotEmpty(t, reading.Signal)
	}
}

func TestClassifyTrend_FiveStates(t *testing.T) {
	assert.Equal(t, advisory.TrendStrongBull, classifyTrend(110, 105, 100))
	assert.Equal(t, advisory.TrendConsolidatingUp, classifyTrend(110, 100, 105))
	assert.Equal(t, advisory.TrendStrongBear, classifyTrend(90, 95, 100))
	assert.Equal(t, advisory.TrendConsolidatingDn, classifyTrend(90, 100, 95))
	assert.Equal(t, advisory.TrendSideways, classifyTrend(100, 100, 100))
}

func TestTrend_InsufficientHistory(t *testing.T) {
	a := New()

	_, err := a.trend(100, flatHistory(150, 100, 1000))
	require.Error(t, err)
}

func TestTrend_CrossBelowWarnings(t *testing.T) {
	a := New()

	// Flat tape, then the quote gaps under both means on the current bar
	reading, err := a.trend(90, flatHistory(201, 100, 1000))
	require.NoError(t, err)

	// Equal means with price below both reads as sideways, not bear
	assert.Equal(t, advisory.TrendSideways, reading.State)
	require.Len(t, reading.Warnings, 2)
	assert.Contains(t, reading.Warnings[0], "MA50")
	assert.Contains(t, reading.Warnings[1], "MA200")
}

func TestTrend_DeathCrossForming(t *testing.T) {
	a := New()

	// One sharp down bar drags MA50 under MA200 while the prior-bar means
	// were still equal
	history := flatHistory(201, 100, 1000)
	history[200].Close = 90

	reading, err := a.trend(101, history)
	require.NoError(t, err)

	require.Len(t, reading.Warnings, 1)
	assert.Contains(t, reading.Warnings[0], "Death cross")
}

func TestTrend_NoCrossDetectionAtMinimumHistory(t *testing.T) {
	a := New()

	reading, err := a.trend(90, flatHistory(200, 100, 1000))
	require.NoError(t, err)
	assert.Empty(t, reading.Warnings)
}

func TestVolume_Surge(t *testing.T) {
	a := New()

	history := flatHistory(21, 100, 0)
	for i := range history {
		history[i].Volume = 900 + float64(i%2)*200 // alternating 900/1100
	}
	history[20].Volume = 5000

	reading, err := a.volume(history)
	require.NoError(t, err)

	assert.Equal(t, advisory.VolumeSurge, reading.State)
	assert.Greater(t, reading.ZScore, 2.0)
	require.Len(t, reading.Warnings, 1)
	assert.Contains(t, reading.Warnings[0], "surge")
}

func TestVolume_Quiet(t *testing.T) {
	a := New()

	history := flatHistory(21, 100, 0)
	for i := range history {
		history[i].Volume = 900 + float64(i%2)*200
	}
	history[20].Volume = 100

	reading, err := a.volume(history)
	require.NoError(t, err)

	assert.Equal(t, advisory.VolumeQuiet, reading.State)
	assert.Less(t, reading.ZScore, -1.0)
}

func TestVolume_ZeroVarianceIsNormal(t *testing.T) {
	a := New()

	reading, err := a.volume(flatHistory(25, 100, 1000))
	require.NoError(t, err)

	assert.Equal(t, advisory.VolumeNormal, reading.State)
	assert.Zero(t, reading.ZScore)
}

func TestVolume_InsufficientHistory(t *testing.T) {
	a := New()

	_, err := a.volume(flatHistory(10, 100, 1000))
	require.Error(t, err)
}

func TestPCR_NeutralAtParity(t *testing.T) {
	a := New()

	chain := marketdata.Chain{
		{Strike: 240, Kind: marketdata.KindCall, OpenInterest: 5000},
		{Strike: 240, Kind: marketdata.KindPut, OpenInterest: 20000},
		{Strike: 250, Kind: marketdata.KindCall, OpenInterest: 20000},
		{Strike: 250, Kind: marketdata.KindPut, OpenInterest: 5000},
	}

	reading, err := a.putCallRatio(chain)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, reading.RatioOI, 1e-9)
	assert.Equal(t, advisory.SentimentNeutral, reading.Sentiment)
	assert.Empty(t, reading.Warnings)
}

func TestPCR_ExtremePutPositioning(t *testing.T) {
	a := New()

	chain := marketdata.Chain{
		{Strike: 100, Kind: marketdata.KindCall, OpenInterest: 1000},
		{Strike: 100, Kind: marketdata.KindPut, OpenInterest: 2500},
	}

	reading, err := a.putCallRatio(chain)
	require.NoError(t, err)

	assert.Equal(t, advisory.SentimentExtremelyBearish, reading.Sentiment)
	require.Len(t, reading.Warnings, 1)
	assert.Contains(t, reading.Warnings[0], "Extreme put")
}

func TestPCR_ZeroCallDenominator(t *testing.T) {
	a := New()

	chain := marketdata.Chain{
		{Strike: 100, Kind: marketdata.KindPut, OpenInterest: 1000},
	}

	reading, err := a.putCallRatio(chain)
	require.NoError(t, err)

	assert.Zero(t, reading.RatioOI)
	assert.Equal(t, advisory.SentimentBullish, reading.Sentiment)
	assert.Empty(t, reading.Warnings)
}

func TestAnalyze_SubResultsIndependent(t *testing.T) {
	a := New()
	quote := &marketdata.Quote{Symbol: "TSLA", Price: 100}

	// No history and no VIX: only the put/call sub-result fills in
	chain := marketdata.Chain{
		{Strike: 100, Kind: marketdata.KindCall, OpenInterest: 100},
		{Strike: 100, Kind: marketdata.KindPut, OpenInterest: 100},
	}

	result := a.Analyze(quote, chain, nil, 0)

	assert.Nil(t, result.VIX)
	assert.Nil(t, result.Trend)
	assert.Nil(t, result.Volume)
	require.NotNil(t, result.PCR)
	assert.Equal(t, advisory.SentimentNeutral, result.PCR.Sentiment)
}
