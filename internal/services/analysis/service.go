package analysis

import (
	"context"
	"sync"
	"time"

	"mmradar/internal/aggregator"
	"mmradar/internal/analyzers/composite"
	"mmradar/internal/analyzers/positioning"
	"mmradar/internal/analyzers/technical"
	"mmradar/internal/analyzers/volatility"
	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
	"mmradar/internal/domain/session"
	"mmradar/internal/metrics"
	"mmradar/internal/report"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

const vixSymbol = "^VIX"

// Config tunes the analysis service
type Config struct {
	HistoryDays int
}

// Service orchestrates one full analysis cycle: fetch everything the
// analyzers need, run the three analyzers, join them in the composite
// scorer and hand back a renderable view.
//
// A newer request for the same symbol supersedes the older one: the
// superseded cycle's context is cancelled and its result discarded.
// Safe because every component is stateless per call.
type Service struct {
	agg         *aggregator.Aggregator
	positioning *positioning.Analyzer
	volatility  *volatility.Analyzer
	technical   *technical.Analyzer
	scorer      *composite.Scorer

	historyDays int
	now         func() time.Time
	log         *logger.Logger

	mu       sync.Mutex
	inflight map[string]*cycleHandle
}

// cycleHandle identifies one in-flight cycle so release never cancels
// a successor that superseded it
type cycleHandle struct {
	cancel context.CancelFunc
}

// New creates an analysis service
func New(
	agg *aggregator.Aggregator,
	pos *positioning.Analyzer,
	vol *volatility.Analyzer,
	tech *technical.Analyzer,
	scorer *composite.Scorer,
	cfg Config,
) *Service {
	if cfg.HistoryDays < 200 {
		cfg.HistoryDays = 260
	}

	return &Service{
		agg:         agg,
		positioning: pos,
		volatility:  vol,
		technical:   tech,
		scorer:      scorer,
		historyDays: cfg.HistoryDays,
		now:         time.Now,
		log:         logger.Get().With("component", "analysis_service"),
		inflight:    make(map[string]*cycleHandle),
	}
}

// Run executes a full cycle for one symbol. trigger labels the metrics
// ("command" or "session").
func (s *Service) Run(ctx context.Context, symbol, trigger string) (view *report.View, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCycle(symbol, trigger, start, err) }()

	ctx, handle := s.supersede(ctx, symbol)
	defer s.release(symbol, handle)

	now := s.now()
	s.log.Infow("Cycle started", "symbol", symbol, "trigger", trigger)

	quote, quoteSource, err := s.agg.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "cycle %s", symbol)
	}

	inputs := s.fetchInputs(ctx, symbol, now)
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "cycle superseded or cancelled")
	}

	var (
		posResult  *advisory.PositioningResult
		volResult  *advisory.VolatilityResult
		techResult *advisory.TechnicalResult
		wg         sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		r, aerr := s.positioning.Analyze(quote, inputs.chain, now)
		if aerr != nil {
			s.log.Infow("Positioning unavailable", "symbol", symbol, "error", aerr)
			return
		}
		posResult = r
	}()
	go func() {
		defer wg.Done()
		r, aerr := s.volatility.Analyze(quote, inputs.chain)
		if aerr != nil {
			s.log.Infow("Volatility unavailable", "symbol", symbol, "error", aerr)
			return
		}
		volResult = r
	}()
	go func() {
		defer wg.Done()
		techResult = s.technical.Analyze(quote, inputs.chain, inputs.history, inputs.vix)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "cycle superseded or cancelled")
	}

	adv := s.scorer.Score(symbol, posResult, volResult, techResult, now)

	s.log.Infow("Cycle finished",
		"symbol", symbol,
		"trigger", trigger,
		"tier", adv.Tier,
		"duration", time.Since(start))

	return &report.View{
		Symbol:               symbol,
		Session:              session.Current(now),
		GeneratedAt:          now,
		Quote:                quote,
		QuoteSource:          quoteSource,
		Positioning:          posResult,
		Volatility:           volResult,
		Technical:            techResult,
		Advisory:             adv,
		Disclosures:          inputs.disclosures,
		DisclosureProvenance: inputs.provenance,
	}, nil
}

type cycleInputs struct {
	chain       marketdata.Chain
	history     marketdata.History
	vix         float64
	disclosures []disclosure.Record
	provenance  disclosure.Provenance
}

// fetchInputs gathers the optional analyzer inputs concurrently. Every
// fetch failure downgrades to a missing input; only the quote is
// mandatory and that is fetched before this point.
func (s *Service) fetchInputs(ctx context.Context, symbol string, now time.Time) cycleInputs {
	var (
		inputs cycleInputs
		wg     sync.WaitGroup
	)
	expiry := nextWeeklyExpiry(now)

	wg.Add(4)
	go func() {
		defer wg.Done()
		chain, _, err := s.agg.FetchChain(ctx, symbol, expiry)
		if err != nil {
			s.log.Warnw("Chain unavailable", "symbol", symbol, "error", err)
			return
		}
		inputs.chain = chain
	}()
	go func() {
		defer wg.Done()
		history, _, err := s.agg.FetchHistory(ctx, symbol, s.historyDays)
		if err != nil {
			s.log.Warnw("History unavailable", "symbol", symbol, "error", err)
			return
		}
		inputs.history = history
	}()
	go func() {
		defer wg.Done()
		vixQuote, _, err := s.agg.FetchQuote(ctx, vixSymbol)
		if err != nil {
			s.log.Warnw("VIX unavailable", "error", err)
			return
		}
		inputs.vix = vixQuote.Price
	}()
	go func() {
		defer wg.Done()
		records, provenance, err := s.agg.FetchDisclosures(ctx, symbol)
		if err != nil {
			s.log.Warnw("Disclosures unavailable", "symbol", symbol, "error", err)
			return
		}
		inputs.disclosures = records
		inputs.provenance = provenance
	}()
	wg.Wait()

	return inputs
}

// supersede cancels any in-flight cycle for the symbol and registers
// the new one
func (s *Service) supersede(ctx context.Context, symbol string) (context.Context, *cycleHandle) {
	ctx, cancel := context.WithCancel(ctx)
	handle := &cycleHandle{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inflight[symbol]; ok {
		s.log.Infow("Superseding in-flight cycle", "symbol", symbol)
		prev.cancel()
	}
	s.inflight[symbol] = handle
	s.mu.Unlock()

	return ctx, handle
}

func (s *Service) release(symbol string, handle *cycleHandle) {
	s.mu.Lock()
	if s.inflight[symbol] == handle {
		delete(s.inflight, symbol)
	}
	s.mu.Unlock()
	handle.cancel()
}

// nextWeeklyExpiry resolves the nearest Friday on or after t
func nextWeeklyExpiry(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, days)
}
