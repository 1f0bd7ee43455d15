package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"mmradar/internal/adapters/config"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
)

// Finnhub serves real-time quotes. Configured second in priority so it
// picks up symbols Yahoo throttles or misses; also used for the fear
// index (^VIX maps to Finnhub's VIX symbol).
type Finnhub struct {
	baseURL string
	apiKey  string
	client  *client
}

// NewFinnhub creates a Finnhub source
func NewFinnhub(cfg config.MarketDataConfig) *Finnhub {
	return &Finnhub{
		baseURL: cfg.FinnhubBaseURL,
		apiKey:  cfg.FinnhubAPIKey,
		client: newClient("finnhub", cfg.RatePerSecond, cfg.RateBurst, cfg.SourceTimeout).
			withHeader("X-Finnhub-Token", cfg.FinnhubAPIKey),
	}
}

// Name returns the source identifier
func (f *Finnhub) Name() string { return "finnhub" }

type finnhubQuoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	PreviousClose float64 `json:"pc"`
}

// Quote fetches the current market snapshot for a symbol
func (f *Finnhub) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if f.apiKey == "" {
		return nil, errors.Wrap(errors.ErrSourceUnavailable, "finnhub: api key not configured")
	}

	var resp finnhubQuoteResponse
	u := fmt.Sprintf("%s/quote?symbol=%s", f.baseURL, url.QueryEscape(symbol))
	if err := f.client.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	// Finnhub returns an all-zero body for unknown symbols
	if resp.Current == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "finnhub: no quote for %s", symbol)
	}

	return &marketdata.Quote{
		Symbol:        symbol,
		Price:         resp.Current,
		PreviousClose: resp.PreviousClose,
		Change:        resp.Change,
		ChangePercent: resp.ChangePercent,
		DayHigh:       resp.High,
		DayLow:        resp.Low,
		CapturedAt:    time.Now(),
		Source:        f.Name(),
	}, nil
}
