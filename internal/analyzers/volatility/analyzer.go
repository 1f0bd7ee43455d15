package volatility

import (
	"fmt"
	"math"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

// Config carries the fixed cut points of the IV risk model
type Config struct {
	BaseIV     float64 // at-the-money implied volatility floor for the proxy
	SmileSlope float64 // IV added per unit of absolute moneyness distance

	RankLowBound  float64 // IV level mapped to rank 0
	RankHighBound float64 // IV level mapped to rank 100

	HighTierCut float64 // average IV above this is the high tier
	LowTierCut  float64 // average IV below this is the low tier

	SkewThreshold float64 // |skew| below this counts as near zero
	LowRankCutoff float64 // IV rank below this prefers directional longs
}

// DefaultConfig returns the standard model parameters
func DefaultConfig() Config {
	return Config{
		BaseIV:        0.25,
		SmileSlope:    0.50,
		RankLowBound:  0.20,
		RankHighBound: 0.50,
		HighTierCut:   0.40,
		LowTierCut:    0.25,
		SkewThreshold: 0.02,
		LowRankCutoff: 10,
	}
}

// Analyzer classifies implied-volatility risk for a quote + chain and
// produces a premium-side recommendation from an ordered rule table.
type Analyzer struct {
	cfg Config
	log *logger.Logger
}

// New creates a volatility analyzer
func New(cfg Config) *Analyzer {
	return &Analyzer{
		cfg: cfg,
		log: logger.Get().With("component", "volatility_analyzer"),
	}
}

// Analyze computes per-side IV averages, rank, tier, skew and the
// recommendation. An empty chain or a non-positive spot yields ErrNoData.
func (a *Analyzer) Analyze(quote *marketdata.Quote, chain marketdata.Chain) (*advisory.VolatilityResult, error) {
	if len(chain) == 0 || quote.Price <= 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "volatility input for %s", quote.Symbol)
	}

	spot := quote.Price

	var (
		callSum, putSum float64
		callN, putN     int
	)
	for _, c := range chain {
		iv := a.contractIV(c, spot)
		switch c.Kind {
		case marketdata.KindCall:
			callSum += iv
			callN++
		case marketdata.KindPut:
			putSum += iv
			putN++
		}
	}

	result := &advisory.VolatilityResult{Symbol: quote.Symbol}
	if callN > 0 {
		result.CallIV = callSum / float64(callN)
	}
	if putN > 0 {
		result.PutIV = putSum / float64(putN)
	}
	result.AvgIV = (callSum + putSum) / float64(callN+putN)
	result.Skew = result.CallIV - result.PutIV
	result.IVRank = a.rank(result.AvgIV)
	result.CrushRisk = math.Max(0, result.IVRank-50)
	result.Tier = a.tier(result.AvgIV)

	a.recommend(result, spot)

	return result, nil
}

// contractIV prefers the volatility observed upstream and falls back to
// a smile proxy rising linearly with absolute moneyness distance
func (a *Analyzer) contractIV(c marketdata.OptionContract, spot float64) float64 {
	if c.ImpliedVol > 0 {
		return c.ImpliedVol
	}
	moneyness := math.Abs(c.Strike-spot) / spot
	return a.cfg.BaseIV + a.cfg.SmileSlope*moneyness
}

// rank rescales the average IV linearly between the reference bounds and
// clamps to [0,100]
func (a *Analyzer) rank(avgIV float64) float64 {
	span := a.cfg.RankHighBound - a.cfg.RankLowBound
	if span <= 0 {
		return 0
	}
	r := (avgIV - a.cfg.RankLowBound) / span * 100
	return math.Min(100, math.Max(0, r))
}

func (a *Analyzer) tier(avgIV float64) advisory.VolTier {
	switch {
	case avgIV > a.cfg.HighTierCut:
		return advisory.VolTierHigh
	case avgIV >= a.cfg.LowTierCut:
		return advisory.VolTierModerate
	default:
		return advisory.VolTierLow
	}
}

// recommend walks the rule table in order. The branch ordering is the
// contract here; the numeric cut points are configuration.
func (a *Analyzer) recommend(r *advisory.VolatilityResult, spot float64) {
	above := math.Round(spot*1.04*100) / 100
	below := math.Round(spot*0.96*100) / 100

	switch {
	case r.Tier == advisory.VolTierHigh && r.Skew > a.cfg.SkewThreshold:
		r.Strategy = "sell_calls"
		r.Instruction = fmt.Sprintf("Sell calls near the %.2f strike to collect elevated call premium", above)
		r.Rationale = "High IV with call-side skew overprices upside"
		r.Warnings = append(r.Warnings, "Short calls carry unlimited upside risk, size accordingly")

	case r.Tier == advisory.VolTierHigh && r.Skew < -a.cfg.SkewThreshold:
		r.Strategy = "sell_puts"
		r.Instruction = fmt.Sprintf("Sell puts near the %.2f strike to collect elevated put premium", below)
		r.Rationale = "High IV with put-side skew overprices downside"
		r.Warnings = append(r.Warnings, "Short puts assign stock on a sharp drop, keep cash reserved")

	case r.Tier == advisory.VolTierHigh:
		r.Strategy = "sell_straddle"
		r.Instruction = fmt.Sprintf("Sell the straddle at the strike nearest %.2f", spot)
		r.Rationale = "High IV with flat skew overprices both sides"
		r.Warnings = append(r.Warnings, "Short straddles lose on any large move, define exits first")

	case r.Tier == advisory.VolTierLow && r.IVRank < a.cfg.LowRankCutoff:
		r.Strategy = "buy_calls"
		r.Instruction = fmt.Sprintf("Buy calls near the %.2f strike for cheap convexity", above)
		r.Rationale = "Low IV at a depressed rank makes directional longs cheap"
		r.Warnings = append(r.Warnings, "Long premium decays daily, keep positions small")

	case r.Tier == advisory.VolTierLow:
		r.Strategy = "buy_straddle"
		r.Instruction = fmt.Sprintf("Buy the straddle at the strike nearest %.2f", spot)
		r.Rationale = "Low IV makes non-directional convexity cheap"
		r.Warnings = append(r.Warnings, "Needs a move larger than the combined premium to profit")

	default:
		r.Strategy = "neutral"
		r.Instruction = "Hold a small or no premium position until IV leaves the mid range"
		r.Rationale = "Neutral IV offers no edge to either premium side"
		r.Warnings = append(r.Warnings, "Mid-range IV can resolve either way, avoid oversized bets")
	}
}
