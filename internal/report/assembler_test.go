package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
	"mmradar/internal/domain/session"
	"mmradar/pkg/errors"
	"mmradar/pkg/templates"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	registry, err := templates.NewEmbeddedRegistry()
	require.NoError(t, err)
	return NewAssembler(registry)
}

func fullView() *View {
	return &View{
		Symbol:      "TSLA",
		Session:     session.MarketOpen,
		GeneratedAt: time.Date(2025, 3, 3, 10, 30, 0, 0, time.UTC),
		Quote: &marketdata.Quote{
			Symbol:        "TSLA",
			Price:         246.97,
			ChangePercent: -1.42,
			DayHigh:       251.30,
			DayLow:        244.10,
			Volume:        98_432_100,
		},
		QuoteSource: "yahoo",
		Positioning: &advisory.PositioningResult{
			MaxPain:    250,
			Confidence: advisory.ConfidenceMedium,
			Regime:     advisory.GammaPositive,
			Support:    240,
			Resistance: 255,
			FlipPoint:  247.5,
			HasFlip:    true,
			Flow:       advisory.FlowBalanced,
		},
		Volatility: &advisory.VolatilityResult{
			AvgIV:       0.44,
			IVRank:      80,
			CrushRisk:   30,
			Skew:        0.03,
			Tier:        advisory.VolTierHigh,
			Strategy:    "sell_calls",
			Instruction: "Sell calls above $256.85",
			Rationale:   "Rich premium with bearish positioning",
		},
		Technical: &advisory.TechnicalResult{
			Symbol: "TSLA",
			VIX:    &advisory.VIXReading{Level: 22.1, Regime: advisory.VIXFear, Signal: "Elevated fear"},
			Trend: &advisory.TrendReading{
				MA50: 252.1, MA200: 238.4,
				State:           advisory.TrendConsolidatingDn,
				DistanceToMA50:  -2.0,
				DistanceToMA200: 3.6,
			},
			Volume: &advisory.VolumeReading{Latest: 98_432_100, ZScore: 2.3, State: advisory.VolumeSurge},
			PCR:    &advisory.PCRReading{RatioOI: 1.12, Sentiment: advisory.SentimentBearish},
		},
		Advisory: &advisory.RiskAdvisory{
			Symbol:         "TSLA",
			Score:          4,
			Tier:           advisory.RiskHigh,
			Warnings:       []string{"VIX above 20", "Volume surge"},
			Recommendation: "Reduce position size and avoid new entries",
		},
		Disclosures: []disclosure.Record{
			{
				Actor:           "Nancy Pelosi",
				Transaction:     disclosure.TxPurchase,
				AmountBracket:   "$1,001 - $15,000",
				TransactionDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		},
		DisclosureProvenance: disclosure.Provenance("senate,house"),
	}
}

func TestRender_FullView(t *testing.T) {
	text, err := newAssembler(t).Render(fullView())
	require.NoError(t, err)

	assert.Contains(t, text, "TSLA")
	assert.Contains(t, text, "Market Open Analysis")
	assert.Contains(t, text, "$246.97")
	assert.Contains(t, text, "Max Pain: $250.00")
	assert.Contains(t, text, "Gamma Flip: $247.50")
	assert.Contains(t, text, "Avg IV: 44.0%")
	assert.Contains(t, text, "Sell calls above $256.85")
	assert.Contains(t, text, "VIX 22.1")
	assert.Contains(t, text, "Score: 4")
	assert.Contains(t, text, "HIGH")
	assert.Contains(t, text, "Nancy Pelosi")
	assert.Contains(t, text, "senate,house")
}

func TestRender_DegradedViewSkipsMissingSections(t *testing.T) {
	view := fullView()
	view.Positioning = nil
	view.Volatility = nil
	view.Technical = nil
	view.Disclosures = nil

	text, err := newAssembler(t).Render(view)
	require.NoError(t, err)

	assert.Contains(t, text, "$246.97")
	assert.NotContains(t, text, "Max Pain")
	assert.NotContains(t, text, "Volatility Risk")
	assert.NotContains(t, text, "Fear Index")
	assert.NotContains(t, text, "Recent Disclosures")
	// The risk assessment still renders
	assert.Contains(t, text, "Score: 4")
}

func TestRender_MissingQuoteRejected(t *testing.T) {
	view := fullView()
	view.Quote = nil

	_, err := newAssembler(t).Render(view)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestRenderError(t *testing.T) {
	text := newAssembler(t).RenderError("TSLA", "No market data available")
	assert.Contains(t, text, "TSLA")
	assert.Contains(t, text, "No market data available")
}

func TestTopDisclosures_Caps(t *testing.T) {
	view := &View{}
	for i := 0; i < 8; i++ {
		view.Disclosures = append(view.Disclosures, disclosure.Record{Actor: "x"})
	}
	assert.Len(t, view.TopDisclosures(5), 5)
	assert.Len(t, (&View{}).TopDisclosures(5), 0)
}
