package aggregator

import (
	"context"
	"time"

	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
)

// QuoteSource wraps one external provider of instrument quotes
type QuoteSource interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*marketdata.Quote, error)
}

// ChainSource wraps one external provider of option chains
type ChainSource interface {
	Name() string
	Chain(ctx context.Context, symbol string, expiry time.Time) (marketdata.Chain, error)
}

// HistorySource wraps one external provider of daily price/volume bars
type HistorySource interface {
	Name() string
	History(ctx context.Context, symbol string, days int) (marketdata.History, error)
}

// DisclosureSource wraps one external provider of trading-disclosure
// filings for a ticker
type DisclosureSource interface {
	Name() string
	Disclosures(ctx context.Context, ticker string) ([]disclosure.Record, error)
}

// IncrementalDisclosureSource is optionally implemented by paginated
// feeds. Cursor semantics are opaque to the aggregator; an empty cursor
// means "from the beginning".
type IncrementalDisclosureSource interface {
	DisclosureSource
	DisclosuresSince(ctx context.Context, ticker, cursor string) (records []disclosure.Record, next string, err error)
}
