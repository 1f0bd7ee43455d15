package sources

import (
	"context"
	"fmt"
	"time"

	"mmradar/internal/adapters/config"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
)

// Yahoo serves quotes and daily history from the public chart endpoint.
// No API key required, which makes it the default first source.
type Yahoo struct {
	baseURL string
	client  *client
}

// NewYahoo creates a Yahoo source
func NewYahoo(cfg config.MarketDataConfig) *Yahoo {
	return &Yahoo{
		baseURL: cfg.YahooBaseURL,
		client:  newClient("yahoo", cfg.RatePerSecond, cfg.RateBurst, cfg.SourceTimeout),
	}
}

// Name returns the source identifier
func (y *Yahoo) Name() string { return "yahoo" }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				PreviousClose        float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the current market snapshot for a symbol
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	var resp yahooChartResponse
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", y.baseURL, symbol)
	if err := y.client.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "yahoo: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "yahoo: no result for %s", symbol)
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "yahoo: zero price for %s", symbol)
	}

	quote := &marketdata.Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.PreviousClose,
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		CapturedAt:    time.Now(),
		Source:        y.Name(),
	}
	if meta.PreviousClose > 0 {
		quote.Change = quote.Price - meta.PreviousClose
		quote.ChangePercent = quote.Change / meta.PreviousClose * 100
	}

	return quote, nil
}

// History fetches daily bars covering at least the requested day count
func (y *Yahoo) History(ctx context.Context, symbol string, days int) (marketdata.History, error) {
	var resp yahooChartResponse
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", y.baseURL, symbol, rangeFor(days))
	if err := y.client.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "yahoo: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "yahoo: no history for %s", symbol)
	}

	result := resp.Chart.Result[0]
	bars := result.Indicators.Quote[0]

	history := make(marketdata.History, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(bars.Close) || bars.Close[i] == 0 {
			continue
		}
		history = append(history, marketdata.Candle{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   bars.Open[i],
			High:   bars.High[i],
			Low:    bars.Low[i],
			Close:  bars.Close[i],
			Volume: bars.Volume[i],
		})
	}

	return history, nil
}

// rangeFor maps a trading-day count onto the closest Yahoo range token
func rangeFor(days int) string {
	switch {
	case days <= 22:
		return "1mo"
	case days <= 66:
		return "3mo"
	case days <= 130:
		return "6mo"
	case days <= 260:
		return "1y"
	default:
		return "2y"
	}
}
