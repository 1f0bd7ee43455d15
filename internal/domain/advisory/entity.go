package advisory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Confidence grades how much open interest backs a max-pain estimate
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// String returns string representation
func (c Confidence) String() string {
	return string(c)
}

// PainPoint is one candidate settlement price and the aggregate monetary
// pain to option holders if the underlying settled there
type PainPoint struct {
	Strike float64
	Pain   decimal.Decimal
}

// PainCurve maps every distinct strike in a chain to its pain value,
// ordered by strike ascending
type PainCurve []PainPoint

// GammaRegime classifies total dealer gamma exposure
type GammaRegime string

const (
	GammaStrongPositive GammaRegime = "strong_positive"
	GammaPositive       GammaRegime = "positive"
	GammaNegative       GammaRegime = "negative"
	GammaStrongNegative GammaRegime = "strong_negative"
)

// Valid checks if gamma regime is valid
func (g GammaRegime) Valid() bool {
	switch g {
	case GammaStrongPositive, GammaPositive, GammaNegative, GammaStrongNegative:
		return true
	}
	return false
}

// String returns string representation
func (g GammaRegime) String() string {
	return string(g)
}

// Stabilizing reports whether dealers dampen moves in this regime
func (g GammaRegime) Stabilizing() bool {
	return g == GammaStrongPositive || g == GammaPositive
}

// GammaLevel is the signed dealer exposure at one strike
// (positive = dealer-stabilizing, negative = dealer-destabilizing)
type GammaLevel struct {
	Strike   float64
	Exposure float64
}

// DeltaFlow classifies aggregate dealer hedging pressure
type DeltaFlow string

const (
	FlowBuyPressure  DeltaFlow = "buy_pressure"
	FlowSellPressure DeltaFlow = "sell_pressure"
	FlowBalanced     DeltaFlow = "balanced"
)

// String returns string representation
func (f DeltaFlow) String() string {
	return string(f)
}

// PositioningResult is the options-positioning view of one cycle
type PositioningResult struct {
	Symbol     string
	Spot       float64
	Expiry     time.Time
	Pain       PainCurve
	MaxPain    float64
	Confidence Confidence

	Gamma      []GammaLevel
	TotalGamma float64
	Regime     GammaRegime
	Support    float64
	Resistance float64
	FlipPoint  float64
	HasFlip    bool

	NetDelta float64
	Flow     DeltaFlow

	Warnings []string
}

// VolTier classifies average implied volatility
type VolTier string

const (
	VolTierHigh     VolTier = "high"
	VolTierModerate VolTier = "moderate"
	VolTierLow      VolTier = "low"
)

// String returns string representation
func (t VolTier) String() string {
	return string(t)
}

// VolatilityResult is the IV-risk view of one cycle
type VolatilityResult struct {
	Symbol    string
	AvgIV     float64
	CallIV    float64
	PutIV     float64
	Skew      float64
	IVRank    float64
	CrushRisk float64
	Tier      VolTier

	Strategy    string
	Instruction string
	Rationale   string
	Warnings    []string
}

// VIXRegime buckets the fear index by level
type VIXRegime string

const (
	VIXExtremeFear VIXRegime = "extreme_fear"
	VIXFear        VIXRegime = "fear"
	VIXMildAnxiety VIXRegime = "mild_anxiety"
	VIXComplacent  VIXRegime = "complacent"
)

// String returns string representation
func (v VIXRegime) String() string {
	return string(v)
}

// VIXReading is the VIX sub-result
type VIXReading struct {
	Level  float64
	Regime VIXRegime
	Signal string
}

// TrendState classifies price against the 50- and 200-period means
type TrendState string

const (
	TrendStrongBull       TrendState = "strong_bull"
	TrendConsolidatingUp  TrendState = "consolidating_up"
	TrendStrongBear       TrendState = "strong_bear"
	TrendConsolidatingDn  TrendState = "consolidating_down"
	TrendSideways         TrendState = "sideways"
)

// Bearish reports whether the state counts toward the composite score
func (t TrendState) Bearish() bool {
	return t == TrendStrongBear || t == TrendConsolidatingDn
}

// String returns string representation
func (t TrendState) String() string {
	return string(t)
}

// TrendReading is the moving-average sub-result
type TrendReading struct {
	MA50            float64
	MA200           float64
	State           TrendState
	DistanceToMA50  float64 // percent
	DistanceToMA200 float64 // percent
	Warnings        []string
}

// VolumeState classifies the latest volume z-score
type VolumeState string

const (
	VolumeSurge    VolumeState = "surge"
	VolumeElevated VolumeState = "elevated"
	VolumeQuiet    VolumeState = "quiet"
	VolumeNormal   VolumeState = "normal"
)

// String returns string representation
func (s VolumeState) String() string {
	return string(s)
}

// VolumeReading is the volume-anomaly sub-result
type VolumeReading struct {
	Latest   float64
	Average  float64
	ZScore   float64
	State    VolumeState
	Warnings []string
}

// Sentiment buckets the put/call open-interest ratio
type Sentiment string

const (
	SentimentExtremelyBearish Sentiment = "extremely_bearish"
	SentimentBearish          Sentiment = "bearish"
	SentimentNeutral          Sentiment = "neutral"
	SentimentBullish          Sentiment = "bullish"
)

// String returns string representation
func (s Sentiment) String() string {
	return string(s)
}

// PCRReading is the put/call-ratio sub-result
type PCRReading struct {
	RatioOI     float64
	RatioVolume float64
	CallOI      int64
	PutOI       int64
	CallVolume  int64
	PutVolume   int64
	Sentiment   Sentiment
	Warnings    []string
}

// TechnicalResult bundles the four independent technical sub-results.
// A nil sub-result means that computation was unavailable for the cycle
// (insufficient history, missing chain); the others still apply.
type TechnicalResult struct {
	Symbol string
	VIX    *VIXReading
	Trend  *TrendReading
	Volume *VolumeReading
	PCR    *PCRReading
}

// RiskTier grades the composite environment
type RiskTier string

const (
	RiskHigh     RiskTier = "high"
	RiskModerate RiskTier = "moderate"
	RiskLow      RiskTier = "low"
)

// String returns string representation
func (t RiskTier) String() string {
	return string(t)
}

// RiskAdvisory is the composite output of one analysis cycle.
// Built fresh each cycle from a complete snapshot of analyzer outputs;
// never mutated in place.
type RiskAdvisory struct {
	CycleID        uuid.UUID
	Symbol         string
	Warnings       []string
	Score          int
	Tier           RiskTier
	Recommendation string
	GeneratedAt    time.Time
}
