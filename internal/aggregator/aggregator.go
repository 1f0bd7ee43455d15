package aggregator

import (
	"context"
	"sort"
	"strings"
	"time"

	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
	"mmradar/internal/metrics"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

// Aggregator orchestrates ordered sets of sources of the same kind.
// Quote-like fetches are first-success-wins; disclosure fetches merge
// every source, deduplicate and fall back to a synthesized set when
// everything comes back empty. The aggregator owns no state besides an
// optional pagination cursor for incremental disclosure feeds.
type Aggregator struct {
	quotes      []QuoteSource
	chains      []ChainSource
	histories   []HistorySource
	disclosures []DisclosureSource

	sourceTimeout time.Duration
	cursors       CursorStore
	now           func() time.Time
	log           *logger.Logger
}

// Option customizes an Aggregator
type Option func(*Aggregator)

// WithCursorStore enables incremental fetching for paginated feeds
func WithCursorStore(store CursorStore) Option {
	return func(a *Aggregator) { a.cursors = store }
}

// WithSourceTimeout bounds every outbound source call
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.sourceTimeout = d }
}

// WithClock overrides the wall clock used to seed fallback data
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an aggregator over the given source sets, in priority order
func New(
	quotes []QuoteSource,
	chains []ChainSource,
	histories []HistorySource,
	disclosures []DisclosureSource,
	opts ...Option,
) *Aggregator {
	a := &Aggregator{
		quotes:        quotes,
		chains:        chains,
		histories:     histories,
		disclosures:   disclosures,
		sourceTimeout: 10 * time.Second,
		now:           time.Now,
		log:           logger.Get().With("component", "aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchQuote calls quote sources in priority order and returns the first
// success together with the name of the satisfying source. When every
// source fails the caller gets ErrNoData, never a panic.
func (a *Aggregator) FetchQuote(ctx context.Context, symbol string) (*marketdata.Quote, string, error) {
	var failures errors.MultiError

	for _, src := range a.quotes {
		quote, err := a.fetchQuoteFrom(ctx, src, symbol)
		if err != nil {
			a.log.Warnw("Quote source failed, trying next",
				"source", src.Name(), "symbol", symbol, "error", err)
			failures.Add(errors.Wrapf(err, "source %s", src.Name()))
			continue
		}
		return quote, src.Name(), nil
	}

	a.log.Errorw("All quote sources failed", "symbol", symbol, "sources", len(a.quotes))
	return nil, "", errors.Wrapf(errors.ErrNoData, "quote %s: %v", symbol, failures.ToError())
}

// FetchChain calls chain sources in priority order, first success wins
func (a *Aggregator) FetchChain(ctx context.Context, symbol string, expiry time.Time) (marketdata.Chain, string, error) {
	var failures errors.MultiError

	for _, src := range a.chains {
		chain, err := a.fetchChainFrom(ctx, src, symbol, expiry)
		if err != nil {
			a.log.Warnw("Chain source failed, trying next",
				"source", src.Name(), "symbol", symbol, "error", err)
			failures.Add(errors.Wrapf(err, "source %s", src.Name()))
			continue
		}
		if len(chain) == 0 {
			failures.Add(errors.Wrapf(errors.ErrSourceUnavailable, "source %s returned empty chain", src.Name()))
			continue
		}
		return chain, src.Name(), nil
	}

	return nil, "", errors.Wrapf(errors.ErrNoData, "chain %s: %v", symbol, failures.ToError())
}

// FetchHistory calls history sources in priority order, first success wins
func (a *Aggregator) FetchHistory(ctx context.Context, symbol string, days int) (marketdata.History, string, error) {
	var failures errors.MultiError

	for _, src := range a.histories {
		history, err := a.fetchHistoryFrom(ctx, src, symbol, days)
		if err != nil {
			a.log.Warnw("History source failed, trying next",
				"source", src.Name(), "symbol", symbol, "error", err)
			failures.Add(errors.Wrapf(err, "source %s", src.Name()))
			continue
		}
		if len(history) == 0 {
			failures.Add(errors.Wrapf(errors.ErrSourceUnavailable, "source %s returned empty history", src.Name()))
			continue
		}
		return history, src.Name(), nil
	}

	return nil, "", errors.Wrapf(errors.ErrNoData, "history %s: %v", symbol, failures.ToError())
}

// FetchDisclosures calls every disclosure source, merges the non-failing
// results, deduplicates on the record identity key keeping the first
// occurrence, and sorts by transaction date descending. One source
// failing never blocks its siblings. An all-empty merge is replaced by a
// date-seeded synthetic set tagged with ProvenanceSynthesized so
// downstream consumers can always tell generated records from real ones.
func (a *Aggregator) FetchDisclosures(ctx context.Context, ticker string) ([]disclosure.Record, disclosure.Provenance, error) {
	var (
		merged   []disclosure.Record
		okNames  []string
		failures errors.MultiError
	)

	for _, src := range a.disclosures {
		records, err := a.fetchDisclosuresFrom(ctx, src, ticker)
		if err != nil {
			a.log.Warnw("Disclosure source failed, continuing with siblings",
				"source", src.Name(), "ticker", ticker, "error", err)
			failures.Add(errors.Wrapf(err, "source %s", src.Name()))
			continue
		}
		merged = append(merged, records...)
		okNames = append(okNames, src.Name())
	}

	deduped := Deduplicate(merged)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].TransactionDate.After(deduped[j].TransactionDate)
	})

	if len(deduped) == 0 {
		a.log.Infow("All disclosure sources empty, synthesizing substitute set",
			"ticker", ticker, "failed_sources", len(failures.Errors))
		metrics.SynthesizedFallbacks.Inc()
		return synthesizeRecords(ticker, a.now()), disclosure.ProvenanceSynthesized, nil
	}

	return deduped, disclosure.Provenance(strings.Join(okNames, ",")), nil
}

// Deduplicate drops records whose identity key was already seen,
// preferring the first occurrence
func Deduplicate(records []disclosure.Record) []disclosure.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]disclosure.Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (a *Aggregator) fetchQuoteFrom(ctx context.Context, src QuoteSource, symbol string) (*marketdata.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	start := time.Now()
	quote, err := src.Quote(ctx, symbol)
	metrics.ObserveSourceCall(src.Name(), "quote", start, err)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (a *Aggregator) fetchChainFrom(ctx context.Context, src ChainSource, symbol string, expiry time.Time) (marketdata.Chain, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	start := time.Now()
	chain, err := src.Chain(ctx, symbol, expiry)
	metrics.ObserveSourceCall(src.Name(), "chain", start, err)
	return chain, err
}

func (a *Aggregator) fetchHistoryFrom(ctx context.Context, src HistorySource, symbol string, days int) (marketdata.History, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	start := time.Now()
	history, err := src.History(ctx, symbol, days)
	metrics.ObserveSourceCall(src.Name(), "history", start, err)
	return history, err
}

// fetchDisclosuresFrom dispatches to the incremental path when both a
// cursor store and a paginated source are available. The cursor is
// advanced only after a successful fetch; re-reading an already
// processed page is tolerated (at-least-once), dedup makes it harmless.
func (a *Aggregator) fetchDisclosuresFrom(ctx context.Context, src DisclosureSource, ticker string) ([]disclosure.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	start := time.Now()

	if paged, ok := src.(IncrementalDisclosureSource); ok && a.cursors != nil {
		feed := src.Name() + ":" + ticker
		cursor, err := a.cursors.Get(ctx, feed)
		if err != nil {
			a.log.Warnw("Cursor read failed, fetching from beginning",
				"feed", feed, "error", err)
			cursor = ""
		}

		records, next, err := paged.DisclosuresSince(ctx, ticker, cursor)
		metrics.ObserveSourceCall(src.Name(), "disclosures", start, err)
		if err != nil {
			return nil, err
		}

		if next != "" && next != cursor {
			if err := a.cursors.Advance(ctx, feed, next); err != nil {
				a.log.Warnw("Cursor advance failed, next fetch will re-read",
					"feed", feed, "error", err)
			}
		}
		return records, nil
	}

	records, err := src.Disclosures(ctx, ticker)
	metrics.ObserveSourceCall(src.Name(), "disclosures", start, err)
	return records, err
}
