package positioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
)

var testNow = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) // Monday

func testQuote(price float64) *marketdata.Quote {
	return &marketdata.Quote{Symbol: "TSLA", Price: price, CapturedAt: testNow}
}

func contract(strike float64, kind marketdata.ContractKind, oi int64) marketdata.OptionContract {
	return marketdata.OptionContract{
		Strike:       strike,
		Kind:         kind,
		OpenInterest: oi,
		Expiry:       time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnalyze_EmptyChain(t *testing.T) {
	a := New(DefaultConfig())

	result, err := a.Analyze(testQuote(100), marketdata.Chain{}, testNow)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestMaxPain_ThreeStrikeRegression(t *testing.T) {
	// Hand-computed pains:
	//   pain(90)  = 200*10*100 + 100*20*100 = 400,000
	//   pain(100) = 100*10*100 + 100*10*100 = 200,000
	//   pain(110) = 100*20*100 + 200*10*100 = 400,000
	chain := marketdata.Chain{
		contract(90, marketdata.KindCall, 100),
		contract(90, marketdata.KindPut, 300),
		contract(100, marketdata.KindCall, 200),
		contract(100, marketdata.KindPut, 200),
		contract(110, marketdata.KindCall, 300),
		contract(110, marketdata.KindPut, 100),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100), chain, testNow)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.MaxPain)
	require.Len(t, result.Pain, 3)
	assert.Equal(t, 90.0, result.Pain[0].Strike)
	assert.Equal(t, "400000", result.Pain[0].Pain.String())
	assert.Equal(t, "200000", result.Pain[1].Pain.String())
	assert.Equal(t, "400000", result.Pain[2].Pain.String())
	assert.Equal(t, advisory.ConfidenceLow, result.Confidence)
}

func TestMaxPain_TwoStrikeScenario(t *testing.T) {
	// Symmetric open interest makes pain(240) == pain(250); the strike
	// nearest spot wins the tie.
	chain := marketdata.Chain{
		contract(240, marketdata.KindCall, 5000),
		contract(240, marketdata.KindPut, 20000),
		contract(250, marketdata.KindCall, 20000),
		contract(250, marketdata.KindPut, 5000),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(246.97), chain, testNow)
	require.NoError(t, err)

	assert.Equal(t, 250.0, result.MaxPain)
	assert.Equal(t, advisory.ConfidenceMedium, result.Confidence)
}

func TestGamma_SupportResistanceExtremes(t *testing.T) {
	// Call-heavy strike below spot carries the largest positive exposure,
	// put-heavy strike above spot the most negative one.
	chain := marketdata.Chain{
		contract(90, marketdata.KindCall, 10),
		contract(95, marketdata.KindCall, 5000),
		contract(105, marketdata.KindPut, 5000),
		contract(110, marketdata.KindPut, 10),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100), chain, testNow)
	require.NoError(t, err)

	assert.Equal(t, 95.0, result.Support)
	assert.Equal(t, 105.0, result.Resistance)
}

func TestGamma_DefaultBandWithoutExposure(t *testing.T) {
	chain := marketdata.Chain{
		contract(95, marketdata.KindCall, 0),
		contract(105, marketdata.KindPut, 0),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100), chain, testNow)
	require.NoError(t, err)

	assert.InDelta(t, 95.0, result.Support, 1e-9)
	assert.InDelta(t, 105.0, result.Resistance, 1e-9)
	assert.Equal(t, advisory.GammaPositive, result.Regime)
	assert.False(t, result.HasFlip)
}

func TestGamma_RegimeBuckets(t *testing.T) {
	a := New(DefaultConfig())

	assert.Equal(t, advisory.GammaStrongPositive, a.gammaRegime(6_000_000))
	assert.Equal(t, advisory.GammaPositive, a.gammaRegime(100))
	assert.Equal(t, advisory.GammaPositive, a.gammaRegime(0))
	assert.Equal(t, advisory.GammaNegative, a.gammaRegime(-100))
	assert.Equal(t, advisory.GammaStrongNegative, a.gammaRegime(-6_000_000))
}

func TestFlipPoint_Interpolation(t *testing.T) {
	levels := []advisory.GammaLevel{
		{Strike: 90, Exposure: 100},
		{Strike: 110, Exposure: -200},
	}

	flip, ok := flipPoint(levels)
	require.True(t, ok)
	assert.InDelta(t, 100.0, flip, 1e-9)
}

func TestFlipPoint_NoCrossing(t *testing.T) {
	levels := []advisory.GammaLevel{
		{Strike: 90, Exposure: 100},
		{Strike: 110, Exposure: 50},
	}

	_, ok := flipPoint(levels)
	assert.False(t, ok)
}

func TestDeltaFlow_DeepITMCalls(t *testing.T) {
	// Deep ITM calls have delta near 1; dealers short them hedge long,
	// so unwinding pressure reads as sell-side flow.
	chain := marketdata.Chain{
		contract(50, marketdata.KindCall, 10000),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100), chain, testNow)
	require.NoError(t, err)

	assert.Less(t, result.NetDelta, -a.cfg.DeltaFlowThreshold)
	assert.Equal(t, advisory.FlowSellPressure, result.Flow)
}

func TestDeltaFlow_DeepITMPuts(t *testing.T) {
	chain := marketdata.Chain{
		contract(150, marketdata.KindPut, 10000),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100), chain, testNow)
	require.NoError(t, err)

	assert.Greater(t, result.NetDelta, a.cfg.DeltaFlowThreshold)
	assert.Equal(t, advisory.FlowBuyPressure, result.Flow)
}

func TestWarnings_MaxPainMagnet(t *testing.T) {
	chain := marketdata.Chain{
		contract(100, marketdata.KindCall, 100),
		contract(100, marketdata.KindPut, 100),
	}

	a := New(DefaultConfig())
	result, err := a.Analyze(testQuote(100.5), chain, testNow)
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "max-pain")
}

func TestYearsToNextWeeklyExpiry(t *testing.T) {
	monday := int(time.Monday)
	friday := int(time.Friday)

	assert.InDelta(t, 4.0/365, yearsToNextWeeklyExpiry(monday), 1e-12)
	// Expiry day itself floors to one day so greeks stay finite
	assert.InDelta(t, 1.0/365, yearsToNextWeeklyExpiry(friday), 1e-12)
}
