package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/adapters/config"
	"mmradar/pkg/errors"
)

func testMarketDataConfig(baseURL string) config.MarketDataConfig {
	return config.MarketDataConfig{
		YahooBaseURL:  baseURL,
		SourceTimeout: 2 * time.Second,
		RatePerSecond: 100,
		RateBurst:     100,
	}
}

func TestYahoo_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"meta":{
			"symbol":"TSLA",
			"regularMarketPrice":246.97,
			"chartPreviousClose":250.53,
			"regularMarketDayHigh":251.30,
			"regularMarketDayLow":244.10,
			"regularMarketVolume":98432100
		}}]}}`))
	}))
	defer server.Close()

	y := NewYahoo(testMarketDataConfig(server.URL))

	quote, err := y.Quote(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 246.97, quote.Price)
	assert.Equal(t, int64(98432100), quote.Volume)
	assert.InDelta(t, -1.42, quote.ChangePercent, 0.01)
	assert.Equal(t, "yahoo", quote.Source)
}

func TestYahoo_QuoteZeroPriceRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"TSLA"}}]}}`))
	}))
	defer server.Close()

	y := NewYahoo(testMarketDataConfig(server.URL))

	_, err := y.Quote(context.Background(), "TSLA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedPayload))
}

func TestYahoo_QuoteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer server.Close()

	y := NewYahoo(testMarketDataConfig(server.URL))

	_, err := y.Quote(context.Background(), "TSLA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceUnavailable))
}

func TestYahoo_HistorySkipsZeroCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1740787200,1740873600,1740960000],
			"indicators":{"quote":[{
				"open":[100,0,102],
				"high":[101,0,103],
				"low":[99,0,101],
				"close":[100.5,0,102.5],
				"volume":[1000000,0,1200000]
			}]}
		}]}}`))
	}))
	defer server.Close()

	y := NewYahoo(testMarketDataConfig(server.URL))

	history, err := y.History(context.Background(), "TSLA", 260)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 100.5, history[0].Close)
	assert.Equal(t, 102.5, history[1].Close)
}

func TestYahoo_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	y := NewYahoo(testMarketDataConfig(server.URL))

	_, err := y.Quote(context.Background(), "TSLA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedPayload))
}
