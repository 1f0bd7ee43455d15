package positioning

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

const contractMultiplier = 100

// Config carries the fixed thresholds of the positioning model.
// All of them are configuration constants, not derived values.
type Config struct {
	AssumedVol   float64 // flat IV used for greeks
	RiskFreeRate float64

	HighOIThreshold   int64 // total chain OI above which max pain is high confidence
	MediumOIThreshold int64

	StrongGammaThreshold float64 // absolute total exposure for the strong regimes
	DeltaFlowThreshold   float64 // net dealer delta beyond which flow is flagged

	DefaultBandPct float64 // support/resistance fallback distance from spot
}

// DefaultConfig returns the standard model parameters
func DefaultConfig() Config {
	return Config{
		AssumedVol:           0.35,
		RiskFreeRate:         0.05,
		HighOIThreshold:      100_000,
		MediumOIThreshold:    20_000,
		StrongGammaThreshold: 5_000_000,
		DeltaFlowThreshold:   500_000,
		DefaultBandPct:       5.0,
	}
}

// Analyzer computes the pain curve, max pain, the dealer gamma-exposure
// map and the dealer delta-flow imbalance for one quote + chain.
// Stateless: every call is a pure function of its inputs.
type Analyzer struct {
	cfg Config
	log *logger.Logger
}

// New creates a positioning analyzer
func New(cfg Config) *Analyzer {
	return &Analyzer{
		cfg: cfg,
		log: logger.Get().With("component", "positioning_analyzer"),
	}
}

// Analyze computes the positioning view. An empty chain yields
// ErrInsufficientData; arithmetic edge cases degrade to documented
// defaults instead of propagating.
func (a *Analyzer) Analyze(quote *marketdata.Quote, chain marketdata.Chain, now time.Time) (*advisory.PositioningResult, error) {
	if len(chain) == 0 {
		return nil, errors.Wrapf(errors.ErrInsufficientData, "empty option chain for %s", quote.Symbol)
	}

	spot := quote.Price
	t := yearsToNextWeeklyExpiry(int(now.Weekday()))

	oi := groupOpenInterest(chain)
	curve, maxPain := a.painCurve(oi, spot)

	result := &advisory.PositioningResult{
		Symbol:     quote.Symbol,
		Spot:       spot,
		Pain:       curve,
		MaxPain:    maxPain,
		Confidence: a.confidence(chain.TotalOpenInterest()),
	}
	if len(chain) > 0 {
		result.Expiry = chain[0].Expiry
	}

	a.gammaExposure(result, oi, spot, t)
	a.deltaFlow(result, oi, spot, t)
	result.Warnings = a.warnings(result)

	return result, nil
}

// strikeOI is call and put open interest grouped at one strike
type strikeOI struct {
	strike float64
	callOI int64
	putOI  int64
}

func groupOpenInterest(chain marketdata.Chain) []strikeOI {
	byStrike := make(map[float64]*strikeOI)
	for _, c := range chain {
		s, ok := byStrike[c.Strike]
		if !ok {
			s = &strikeOI{strike: c.Strike}
			byStrike[c.Strike] = s
		}
		switch c.Kind {
		case marketdata.KindCall:
			s.callOI += c.OpenInterest
		case marketdata.KindPut:
			s.putOI += c.OpenInterest
		}
	}

	grouped := make([]strikeOI, 0, len(byStrike))
	for _, s := range byStrike {
		grouped = append(grouped, *s)
	}
	sort.Slice(grouped, func(i, j int) bool { return grouped[i].strike < grouped[j].strike })
	return grouped
}

// painCurve evaluates aggregate holder pain at every distinct strike and
// returns the curve together with its argmin. Exact ties break first to
// the strike nearest spot, then to the lower strike.
func (a *Analyzer) painCurve(oi []strikeOI, spot float64) (advisory.PainCurve, float64) {
	curve := make(advisory.PainCurve, 0, len(oi))

	var (
		maxPain  float64
		minPain  decimal.Decimal
		haveBest bool
	)

	for _, candidate := range oi {
		pain := decimal.Zero
		for _, s := range oi {
			switch {
			case candidate.strike > s.strike:
				width := decimal.NewFromFloat(candidate.strike - s.strike)
				pain = pain.Add(width.Mul(decimal.NewFromInt(s.callOI * contractMultiplier)))
			case candidate.strike < s.strike:
				width := decimal.NewFromFloat(s.strike - candidate.strike)
				pain = pain.Add(width.Mul(decimal.NewFromInt(s.putOI * contractMultiplier)))
			}
		}

		curve = append(curve, advisory.PainPoint{Strike: candidate.strike, Pain: pain})

		better := !haveBest || pain.LessThan(minPain)
		if !better && pain.Equal(minPain) {
			better = math.Abs(candidate.strike-spot) < math.Abs(maxPain-spot)
		}
		if better {
			minPain = pain
			maxPain = candidate.strike
			haveBest = true
		}
	}

	return curve, maxPain
}

func (a *Analyzer) confidence(totalOI int64) advisory.Confidence {
	switch {
	case totalOI > a.cfg.HighOIThreshold:
		return advisory.ConfidenceHigh
	case totalOI > a.cfg.MediumOIThreshold:
		return advisory.ConfidenceMedium
	default:
		return advisory.ConfidenceLow
	}
}

// gammaExposure fills the signed exposure map, regime, support,
// resistance and flip point. Dealers are modeled net short the options
// they sold, so call exposure is positive (stabilizing) and put exposure
// negative (destabilizing).
func (a *Analyzer) gammaExposure(result *advisory.PositioningResult, oi []strikeOI, spot, t float64) {
	levels := make([]advisory.GammaLevel, 0, len(oi))
	var total float64

	for _, s := range oi {
		g := bsGamma(spot, s.strike, a.cfg.AssumedVol, t, a.cfg.RiskFreeRate)
		exposure := g * float64(s.callOI)*contractMultiplier*spot -
			g*float64(s.putOI)*contractMultiplier*spot

		levels = append(levels, advisory.GammaLevel{Strike: s.strike, Exposure: exposure})
		total += exposure
	}

	result.Gamma = levels
	result.TotalGamma = total
	result.Regime = a.gammaRegime(total)

	// Support: strike below spot with the largest positive exposure.
	// Resistance: strike above spot with the largest-magnitude negative
	// exposure. Both degrade to a fixed band around spot when no strike
	// qualifies (e.g. the whole chain carries zero open interest).
	band := spot * a.cfg.DefaultBandPct / 100
	result.Support = spot - band
	result.Resistance = spot + band

	var bestSupport, bestResistance float64
	for _, lvl := range levels {
		if lvl.Strike < spot && lvl.Exposure > bestSupport {
			bestSupport = lvl.Exposure
			result.Support = lvl.Strike
		}
		if lvl.Strike > spot && lvl.Exposure < bestResistance {
			bestResistance = lvl.Exposure
			result.Resistance = lvl.Strike
		}
	}

	result.FlipPoint, result.HasFlip = flipPoint(levels)
}

func (a *Analyzer) gammaRegime(total float64) advisory.GammaRegime {
	switch {
	case total >= a.cfg.StrongGammaThreshold:
		return advisory.GammaStrongPositive
	case total >= 0:
		return advisory.GammaPositive
	case total <= -a.cfg.StrongGammaThreshold:
		return advisory.GammaStrongNegative
	default:
		return advisory.GammaNegative
	}
}

// flipPoint walks cumulative exposure across strikes ascending and
// linearly interpolates the price where the running sum crosses zero
func flipPoint(levels []advisory.GammaLevel) (float64, bool) {
	var cum float64
	prevCum := 0.0

	for i, lvl := range levels {
		prevCum = cum
		cum += lvl.Exposure
		if i == 0 {
			continue
		}
		if (prevCum > 0 && cum < 0) || (prevCum < 0 && cum > 0) {
			prev := levels[i-1]
			frac := prevCum / (prevCum - cum)
			return prev.Strike + frac*(lvl.Strike-prev.Strike), true
		}
	}

	return 0, false
}

// deltaFlow aggregates net dealer delta and flags the hedging direction
// once it clears the imbalance threshold
func (a *Analyzer) deltaFlow(result *advisory.PositioningResult, oi []strikeOI, spot, t float64) {
	var net float64
	for _, s := range oi {
		callDelta := bsCallDelta(spot, s.strike, a.cfg.AssumedVol, t, a.cfg.RiskFreeRate)
		putDelta := callDelta - 1

		net -= callDelta * float64(s.callOI) * contractMultiplier
		net -= putDelta * float64(s.putOI) * contractMultiplier
	}

	result.NetDelta = net
	switch {
	case net > a.cfg.DeltaFlowThreshold:
		result.Flow = advisory.FlowBuyPressure
	case net < -a.cfg.DeltaFlowThreshold:
		result.Flow = advisory.FlowSellPressure
	default:
		result.Flow = advisory.FlowBalanced
	}
}

func (a *Analyzer) warnings(result *advisory.PositioningResult) []string {
	var warnings []string

	if result.Spot > 0 {
		distancePct := math.Abs(result.Spot-result.MaxPain) / result.Spot * 100
		if distancePct < 2 {
			warnings = append(warnings,
				fmt.Sprintf("Price within max-pain magnet range (target %.2f)", result.MaxPain))
		}
	}

	if result.Regime == advisory.GammaStrongNegative {
		warnings = append(warnings, "Dealers deeply short gamma: hedging amplifies price moves")
	}

	switch result.Flow {
	case advisory.FlowBuyPressure:
		warnings = append(warnings, "Dealer hedging implies buy pressure on the underlying")
	case advisory.FlowSellPressure:
		warnings = append(warnings, "Dealer hedging implies sell pressure on the underlying")
	}

	return warnings
}
