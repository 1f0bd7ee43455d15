package composite

import (
	"time"

	"github.com/google/uuid"

	"mmradar/internal/domain/advisory"
	"mmradar/pkg/logger"
)

// Config carries the fixed scoring weights and thresholds
type Config struct {
	VIXFearThreshold float64
	VIXPoints        int
	TrendPoints      int
	VolumePoints     int
	PCRThreshold     float64
	PCRPoints        int

	HighTierScore     int
	ModerateTierScore int
}

// DefaultConfig returns the standard scoring parameters
func DefaultConfig() Config {
	return Config{
		VIXFearThreshold:  25,
		VIXPoints:         2,
		TrendPoints:       2,
		VolumePoints:      1,
		PCRThreshold:      1.5,
		PCRPoints:         1,
		HighTierScore:     4,
		ModerateTierScore: 2,
	}
}

const (
	recommendHigh     = "Reduce exposure, hedge remaining positions and avoid opening new risk until conditions clear"
	recommendModerate = "Tighten stops, cut position sizes and watch the flagged signals for deterioration"
	recommendLow      = "Normal operation, standard position sizing applies"
)

// Scorer folds the analyzer outputs into one RiskAdvisory. It is the
// single join point of a cycle: every analyzer result it receives is a
// complete snapshot and the advisory is built fresh, never mutated.
type Scorer struct {
	cfg Config
	log *logger.Logger
}

// New creates a composite scorer
func New(cfg Config) *Scorer {
	return &Scorer{
		cfg: cfg,
		log: logger.Get().With("component", "composite_scorer"),
	}
}

// Score aggregates warnings in source order, applies the point table and
// grades the tier. Nil inputs are analyzers that had nothing to report
// this cycle; they contribute neither warnings nor points.
func (s *Scorer) Score(
	symbol string,
	positioning *advisory.PositioningResult,
	volatility *advisory.VolatilityResult,
	technical *advisory.TechnicalResult,
	now time.Time,
) *advisory.RiskAdvisory {
	adv := &advisory.RiskAdvisory{
		CycleID:     uuid.New(),
		Symbol:      symbol,
		GeneratedAt: now,
	}

	var (
		trendBearish bool
		volumeSurge  bool
		pcrExtreme   bool
	)

	if technical != nil {
		if technical.Trend != nil {
			adv.Warnings = append(adv.Warnings, technical.Trend.Warnings...)
			trendBearish = technical.Trend.State.Bearish()
		}
		if technical.Volume != nil {
			adv.Warnings = append(adv.Warnings, technical.Volume.Warnings...)
			volumeSurge = technical.Volume.State == advisory.VolumeSurge
		}
		if technical.PCR != nil {
			adv.Warnings = append(adv.Warnings, technical.PCR.Warnings...)
			pcrExtreme = technical.PCR.Sentiment == advisory.SentimentExtremelyBearish
		}

		if technical.VIX != nil && technical.VIX.Level > s.cfg.VIXFearThreshold {
			adv.Score += s.cfg.VIXPoints
		}
		if trendBearish {
			adv.Score += s.cfg.TrendPoints
		}
		if volumeSurge {
			adv.Score += s.cfg.VolumePoints
		}
		if technical.PCR != nil && technical.PCR.RatioOI > s.cfg.PCRThreshold {
			adv.Score += s.cfg.PCRPoints
		}
	}

	if positioning != nil {
		adv.Warnings = append(adv.Warnings, positioning.Warnings...)
	}
	if volatility != nil {
		adv.Warnings = append(adv.Warnings, volatility.Warnings...)
	}

	if trendBearish && volumeSurge && pcrExtreme {
		adv.Warnings = append(adv.Warnings,
			"Bearish trend, volume surge and extreme put positioning are aligned: distribution risk")
	}

	switch {
	case adv.Score >= s.cfg.HighTierScore:
		adv.Tier = advisory.RiskHigh
		adv.Recommendation = recommendHigh
	case adv.Score >= s.cfg.ModerateTierScore:
		adv.Tier = advisory.RiskModerate
		adv.Recommendation = recommendModerate
	default:
		adv.Tier = advisory.RiskLow
		adv.Recommendation = recommendLow
	}

	s.log.Infow("Cycle scored",
		"symbol", symbol, "score", adv.Score, "tier", adv.Tier, "warnings", len(adv.Warnings))

	return adv
}
