package sources

import (
	"context"
	"strings"
	"time"

	"mmradar/internal/adapters/config"
	"mmradar/internal/domain/disclosure"
)

// stockWatcherTx is the wire shape shared by the senate and house
// stock-watcher dumps
type stockWatcherTx struct {
	TransactionDate string `json:"transaction_date"`
	DisclosureDate  string `json:"disclosure_date"`
	Ticker          string `json:"ticker"`
	AssetDesc       string `json:"asset_description"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Senator         string `json:"senator"`
	Representative  string `json:"representative"`
}

func (t stockWatcherTx) actor() string {
	if t.Senator != "" {
		return t.Senator
	}
	return t.Representative
}

func parseTxKind(raw string) disclosure.TransactionKind {
	switch {
	case strings.Contains(strings.ToLower(raw), "purchase"):
		return disclosure.TxPurchase
	case strings.Contains(strings.ToLower(raw), "partial"):
		return disclosure.TxPartialSale
	case strings.Contains(strings.ToLower(raw), "sale"):
		return disclosure.TxSale
	default:
		return disclosure.TxExchange
	}
}

func parseTxDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (t stockWatcherTx) toRecord(chamber, source string) (disclosure.Record, bool) {
	txDate, ok := parseTxDate(t.TransactionDate)
	if !ok || t.Ticker == "" || t.actor() == "" {
		return disclosure.Record{}, false
	}

	record := disclosure.Record{
		Actor:            t.actor(),
		Chamber:          chamber,
		Transaction:      parseTxKind(t.Type),
		AmountBracket:    t.Amount,
		TransactionDate:  txDate,
		Ticker:           strings.ToUpper(t.Ticker),
		AssetDescription: t.AssetDesc,
		Source:           source,
	}
	if disclosed, ok := parseTxDate(t.DisclosureDate); ok {
		record.DisclosureDate = disclosed
	}
	return record, true
}

// SenateWatcher reads the senate stock-watcher aggregate dump
type SenateWatcher struct {
	baseURL string
	client  *client
}

// NewSenateWatcher creates a senate disclosure source
func NewSenateWatcher(cfg config.DisclosureConfig, md config.MarketDataConfig) *SenateWatcher {
	return &SenateWatcher{
		baseURL: cfg.SenateBaseURL,
		client:  newClient("senate-watcher", md.RatePerSecond, md.RateBurst, md.SourceTimeout),
	}
}

// Name returns the source identifier
func (s *SenateWatcher) Name() string { return "senate-watcher" }

// Disclosures fetches all filings matching the ticker
func (s *SenateWatcher) Disclosures(ctx context.Context, ticker string) ([]disclosure.Record, error) {
	var txs []stockWatcherTx
	if err := s.client.getJSON(ctx, s.baseURL+"/aggregate/all_transactions.json", &txs); err != nil {
		return nil, err
	}

	upper := strings.ToUpper(ticker)
	var records []disclosure.Record
	for _, tx := range txs {
		record, ok := tx.toRecord("senate", s.Name())
		if !ok || record.Ticker != upper {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// HouseWatcher reads the house stock-watcher aggregate dump. It exposes
// incremental fetching: the cursor is the newest transaction date already
// processed, so repeated cycles only surface filings newer than it.
type HouseWatcher struct {
	baseURL string
	client  *client
}

// NewHouseWatcher creates a house disclosure source
func NewHouseWatcher(cfg config.DisclosureConfig, md config.MarketDataConfig) *HouseWatcher {
	return &HouseWatcher{
		baseURL: cfg.HouseBaseURL,
		client:  newClient("house-watcher", md.RatePerSecond, md.RateBurst, md.SourceTimeout),
	}
}

// Name returns the source identifier
func (h *HouseWatcher) Name() string { return "house-watcher" }

// Disclosures fetches all filings matching the ticker
func (h *HouseWatcher) Disclosures(ctx context.Context, ticker string) ([]disclosure.Record, error) {
	records, _, err := h.DisclosuresSince(ctx, ticker, "")
	return records, err
}

// DisclosuresSince fetches filings with a transaction date after the
// cursor and returns the newest date seen as the next cursor. An empty
// cursor means the full feed. Re-reading a cursor is harmless: callers
// deduplicate on record identity.
func (h *HouseWatcher) DisclosuresSince(ctx context.Context, ticker, cursor string) ([]disclosure.Record, string, error) {
	var txs []stockWatcherTx
	if err := h.client.getJSON(ctx, h.baseURL+"/data/all_transactions.json", &txs); err != nil {
		return nil, "", err
	}

	var since time.Time
	if cursor != "" {
		if ts, ok := parseTxDate(cursor); ok {
			since = ts
		}
	}

	upper := strings.ToUpper(ticker)
	newest := since
	var records []disclosure.Record
	for _, tx := range txs {
		record, ok := tx.toRecord("house", h.Name())
		if !ok || record.Ticker != upper {
			continue
		}
		if !since.IsZero() && !record.TransactionDate.After(since) {
			continue
		}
		records = append(records, record)
		if record.TransactionDate.After(newest) {
			newest = record.TransactionDate
		}
	}

	next := cursor
	if !newest.IsZero() {
		next = newest.Format("2006-01-02")
	}
	return records, next, nil
}
