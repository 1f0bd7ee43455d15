package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmradar/internal/domain/disclosure"
)

func TestParseTxKind(t *testing.T) {
	tests := []struct {
		raw  string
		want disclosure.TransactionKind
	}{
		{"Purchase", disclosure.TxPurchase},
		{"purchase", disclosure.TxPurchase},
		{"Sale (Full)", disclosure.TxSale},
		{"Sale (Partial)", disclosure.TxPartialSale},
		{"sale_partial", disclosure.TxPartialSale},
		{"Exchange", disclosure.TxExchange},
		{"", disclosure.TxExchange},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTxKind(tt.raw), tt.raw)
	}
}

func TestParseTxDate(t *testing.T) {
	ts, ok := parseTxDate("2025-02-18")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 18, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = parseTxDate("02/18/2025")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 18, 0, 0, 0, 0, time.UTC), ts)

	_, ok = parseTxDate("18 Feb 2025")
	assert.False(t, ok)

	_, ok = parseTxDate("")
	assert.False(t, ok)
}

func TestStockWatcherTx_ToRecord(t *testing.T) {
	tx := stockWatcherTx{
		TransactionDate: "2025-02-18",
		DisclosureDate:  "03/01/2025",
		Ticker:          "tsla",
		AssetDesc:       "Tesla Inc Common Stock",
		Type:            "Purchase",
		Amount:          "$1,001 - $15,000",
		Senator:         "Tommy Tuberville",
	}

	rec, ok := tx.toRecord("senate", "senate-watcher")
	require.True(t, ok)
	assert.Equal(t, "Tommy Tuberville", rec.Actor)
	assert.Equal(t, "TSLA", rec.Ticker)
	assert.Equal(t, disclosure.TxPurchase, rec.Transaction)
	assert.Equal(t, time.Date(2025, 2, 18, 0, 0, 0, 0, time.UTC), rec.TransactionDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), rec.DisclosureDate)
	assert.Equal(t, "senate", rec.Chamber)
}

func TestStockWatcherTx_ToRecordRejectsIncomplete(t *testing.T) {
	// Missing transaction date
	_, ok := stockWatcherTx{Ticker: "TSLA", Senator: "x"}.toRecord("senate", "s")
	assert.False(t, ok)

	// Missing ticker
	_, ok = stockWatcherTx{TransactionDate: "2025-02-18", Senator: "x"}.toRecord("senate", "s")
	assert.False(t, ok)

	// Missing actor
	_, ok = stockWatcherTx{TransactionDate: "2025-02-18", Ticker: "TSLA"}.toRecord("house", "h")
	assert.False(t, ok)
}

func TestStockWatcherTx_Actor(t *testing.T) {
	assert.Equal(t, "A", stockWatcherTx{Senator: "A", Representative: "B"}.actor())
	assert.Equal(t, "B", stockWatcherTx{Representative: "B"}.actor())
}

func TestRangeFor(t *testing.T) {
	assert.Equal(t, "1mo", rangeFor(20))
	assert.Equal(t, "3mo", rangeFor(60))
	assert.Equal(t, "6mo", rangeFor(120))
	assert.Equal(t, "1y", rangeFor(260))
	assert.Equal(t, "2y", rangeFor(261))
}
