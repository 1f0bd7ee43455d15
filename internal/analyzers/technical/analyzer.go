package technical

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/montanaflynn/stats"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

const (
	trendWindow  = 200
	shortWindow  = 50
	volumeWindow = 20
)

// Analyzer runs the four independent technical sub-computations. Each
// one tolerates missing input on its own: a sub-result that cannot be
// computed comes back nil while its siblings still fill in.
type Analyzer struct {
	log *logger.Logger
}

// New creates a technical analyzer
func New() *Analyzer {
	return &Analyzer{log: logger.Get().With("component", "technical_analyzer")}
}

// Analyze bundles the VIX, trend, volume and put/call sub-results.
// vix <= 0 means the fear index was unavailable this cycle.
func (a *Analyzer) Analyze(quote *marketdata.Quote, chain marketdata.Chain, history marketdata.History, vix float64) *advisory.TechnicalResult {
	result := &advisory.TechnicalResult{Symbol: quote.Symbol}

	if vix > 0 {
		result.VIX = classifyVIX(vix)
	}

	trend, err := a.trend(quote.Price, history)
	if err != nil {
		a.log.Infow("Trend unavailable", "symbol", quote.Symbol, "error", err)
	} else {
		result.Trend = trend
	}

	volume, err := a.volume(history)
	if err != nil {
		a.log.Infow("Volume anomaly unavailable", "symbol", quote.Symbol, "error", err)
	} else {
		result.Volume = volume
	}

	pcr, err := a.putCallRatio(chain)
	if err != nil {
		a.log.Infow("Put/call ratio unavailable", "symbol", quote.Symbol, "error", err)
	} else {
		result.PCR = pcr
	}

	return result
}

func classifyVIX(level float64) *advisory.VIXReading {
	reading := &advisory.VIXReading{Level: level}
	switch {
	case level > 30:
		reading.Regime = advisory.VIXExtremeFear
		reading.Signal = "Panic conditions, contrarian longs get paid on mean reversion"
	case level > 20:
		reading.Regime = advisory.VIXFear
		reading.Signal = "Elevated fear, reduce size and widen stops"
	case level > 15:
		reading.Regime = advisory.VIXMildAnxiety
		reading.Signal = "Mild anxiety, normal operation with hedges on"
	default:
		reading.Regime = advisory.VIXComplacent
		reading.Signal = "Complacent tape, cheap downside protection available"
	}
	return reading
}

// trend classifies price against the 50- and 200-period simple means and
// flags fresh crosses below either mean plus a forming death cross.
func (a *Analyzer) trend(price float64, history marketdata.History) (*advisory.TrendReading, error) {
	closes := history.Closes()
	if len(closes) < trendWindow {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"trend needs %d closes, have %d", trendWindow, len(closes))
	}

	ma50s := talib.Sma(closes, shortWindow)
	ma200s := talib.Sma(closes, trendWindow)

	last := len(closes) - 1
	ma50 := ma50s[last]
	ma200 := ma200s[last]

	reading := &advisory.TrendReading{
		MA50:            ma50,
		MA200:           ma200,
		State:           classifyTrend(price, ma50, ma200),
		DistanceToMA50:  (price - ma50) / ma50 * 100,
		DistanceToMA200: (price - ma200) / ma200 * 100,
	}

	// Cross detection needs a prior bar with a fully warmed-up MA200
	if len(closes) == trendWindow {
		return reading, nil
	}

	prevClose := closes[last-1]
	prevMA50 := ma50s[last-1]
	prevMA200 := ma200s[last-1]

	if price < ma50 && prevClose >= prevMA50 {
		reading.Warnings = append(reading.Warnings,
			fmt.Sprintf("Price crossed below MA50 (%.2f)", ma50))
	}
	if price < ma200 && prevClose >= prevMA200 {
		reading.Warnings = append(reading.Warnings,
			fmt.Sprintf("Price crossed below MA200 (%.2f)", ma200))
	}
	if ma50 < ma200 && prevMA50 >= prevMA200 {
		reading.Warnings = append(reading.Warnings, "Death cross forming: MA50 dropping under MA200")
	}

	return reading, nil
}

func classifyTrend(price, ma50, ma200 float64) advisory.TrendState {
	switch {
	case price > ma50 && ma50 > ma200:
		return advisory.TrendStrongBull
	case price > ma50 && ma50 < ma200:
		return advisory.TrendConsolidatingUp
	case price < ma50 && ma50 < ma200:
		return advisory.TrendStrongBear
	case price < ma50 && ma50 > ma200:
		return advisory.TrendConsolidatingDn
	default:
		return advisory.TrendSideways
	}
}

// volume scores the latest volume against the mean and standard
// deviation of the preceding window, latest excluded
func (a *Analyzer) volume(history marketdata.History) (*advisory.VolumeReading, error) {
	volumes := history.Volumes()
	if len(volumes) < volumeWindow {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"volume anomaly needs %d bars, have %d", volumeWindow, len(volumes))
	}

	latest := volumes[len(volumes)-1]
	window := volumes[len(volumes)-volumeWindow : len(volumes)-1]

	mean, err := stats.Mean(window)
	if err != nil {
		return nil, errors.Wrap(err, "volume mean")
	}
	stdDev, err := stats.StandardDeviationSample(window)
	if err != nil {
		return nil, errors.Wrap(err, "volume stddev")
	}

	reading := &advisory.VolumeReading{Latest: latest, Average: mean}
	if stdDev > 0 {
		reading.ZScore = (latest - mean) / stdDev
	}

	switch {
	case reading.ZScore > 2:
		reading.State = advisory.VolumeSurge
		reading.Warnings = append(reading.Warnings,
			fmt.Sprintf("Volume surge: %.1fx the recent average", latest/mean))
	case reading.ZScore > 1:
		reading.State = advisory.VolumeElevated
	case reading.ZScore < -1:
		reading.State = advisory.VolumeQuiet
	default:
		reading.State = advisory.VolumeNormal
	}

	return reading, nil
}

// putCallRatio buckets open-interest sentiment and flags extremes
func (a *Analyzer) putCallRatio(chain marketdata.Chain) (*advisory.PCRReading, error) {
	if len(chain) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "empty chain for put/call ratio")
	}

	reading := &advisory.PCRReading{}
	for _, c := range chain {
		switch c.Kind {
		case marketdata.KindCall:
			reading.CallOI += c.OpenInterest
			reading.CallVolume += c.Volume
		case marketdata.KindPut:
			reading.PutOI += c.OpenInterest
			reading.PutVolume += c.Volume
		}
	}

	if reading.CallOI > 0 {
		reading.RatioOI = float64(reading.PutOI) / float64(reading.CallOI)
	}
	if reading.CallVolume > 0 {
		reading.RatioVolume = float64(reading.PutVolume) / float64(reading.CallVolume)
	}

	switch {
	case reading.RatioOI > 1.5:
		reading.Sentiment = advisory.SentimentExtremelyBearish
	case reading.RatioOI > 1.0:
		reading.Sentiment = advisory.SentimentBearish
	case reading.RatioOI > 0.7:
		reading.Sentiment = advisory.SentimentNeutral
	default:
		reading.Sentiment = advisory.SentimentBullish
	}

	if reading.RatioOI > 2.0 {
		reading.Warnings = append(reading.Warnings,
			fmt.Sprintf("Extreme put positioning: OI ratio %.2f", reading.RatioOI))
	}
	if reading.RatioOI < 0.5 && reading.CallOI > 0 {
		reading.Warnings = append(reading.Warnings,
			fmt.Sprintf("Extreme call positioning: OI ratio %.2f", reading.RatioOI))
	}

	return reading, nil
}
