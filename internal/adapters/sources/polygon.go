package sources

import (
	"context"
	"fmt"
	"time"

	"mmradar/internal/adapters/config"
	"mmradar/internal/domain/marketdata"
	"mmradar/pkg/errors"
)

// Polygon serves option-chain snapshots and daily aggregates
type Polygon struct {
	baseURL string
	apiKey  string
	client  *client
}

// NewPolygon creates a Polygon source
func NewPolygon(cfg config.MarketDataConfig) *Polygon {
	return &Polygon{
		baseURL: cfg.PolygonBaseURL,
		apiKey:  cfg.PolygonAPIKey,
		client:  newClient("polygon", cfg.RatePerSecond, cfg.RateBurst, cfg.SourceTimeout),
	}
}

// Name returns the source identifier
func (p *Polygon) Name() string { return "polygon" }

type polygonChainResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Details struct {
			StrikePrice    float64 `json:"strike_price"`
			ContractType   string  `json:"contract_type"`
			ExpirationDate string  `json:"expiration_date"`
		} `json:"details"`
		OpenInterest float64 `json:"open_interest"`
		Day          struct {
			Volume float64 `json:"volume"`
		} `json:"day"`
		ImpliedVolatility float64 `json:"implied_volatility"`
	} `json:"results"`
}

// Chain fetches the option chain for an underlying and expiry
func (p *Polygon) Chain(ctx context.Context, symbol string, expiry time.Time) (marketdata.Chain, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrSourceUnavailable, "polygon: api key not configured")
	}

	var resp polygonChainResponse
	u := fmt.Sprintf("%s/v3/snapshot/options/%s?expiration_date=%s&limit=250&apiKey=%s",
		p.baseURL, symbol, expiry.Format("2006-01-02"), p.apiKey)
	if err := p.client.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	chain := make(marketdata.Chain, 0, len(resp.Results))
	for _, r := range resp.Results {
		kind := marketdata.ContractKind(r.Details.ContractType)
		if !kind.Valid() || r.Details.StrikePrice <= 0 {
			continue
		}

		exp, err := time.Parse("2006-01-02", r.Details.ExpirationDate)
		if err != nil {
			exp = expiry
		}

		chain = append(chain, marketdata.OptionContract{
			Strike:       r.Details.StrikePrice,
			Kind:         kind,
			OpenInterest: int64(r.OpenInterest),
			Volume:       int64(r.Day.Volume),
			Expiry:       exp,
			ImpliedVol:   r.ImpliedVolatility,
		})
	}

	return chain, nil
}

type polygonAggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Timestamp int64   `json:"t"`
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
}

// History fetches daily bars covering the requested day count
func (p *Polygon) History(ctx context.Context, symbol string, days int) (marketdata.History, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrSourceUnavailable, "polygon: api key not configured")
	}

	to := time.Now().UTC()
	// Calendar padding so the span still holds `days` trading days
	from := to.AddDate(0, 0, -(days*7/5 + 10))

	var resp polygonAggsResponse
	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=%d&apiKey=%s",
		p.baseURL, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), days+10, p.apiKey)
	if err := p.client.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	history := make(marketdata.History, 0, len(resp.Results))
	for _, r := range resp.Results {
		history = append(history, marketdata.Candle{
			Date:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}

	return history, nil
}
