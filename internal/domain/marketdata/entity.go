package marketdata

import (
	"sort"
	"time"
)

// Quote represents a point-in-time snapshot of an instrument
// Immutable once captured; a fresh quote is produced per analysis cycle
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	DayHigh       float64
	DayLow        float64
	Volume        int64
	CapturedAt    time.Time
	Source        string
}

// ContractKind defines the option contract side
type ContractKind string

const (
	KindCall ContractKind = "call"
	KindPut  ContractKind = "put"
)

// Valid checks if contract kind is valid
func (k ContractKind) Valid() bool {
	switch k {
	case KindCall, KindPut:
		return true
	}
	return false
}

// String returns string representation
func (k ContractKind) String() string {
	return string(k)
}

// OptionContract represents a single listed option series
// Invariants: Strike > 0, OpenInterest >= 0
type OptionContract struct {
	Strike       float64
	Kind         ContractKind
	OpenInterest int64
	Volume       int64
	Expiry       time.Time
	ImpliedVol   float64 // 0 when not observed upstream
}

// Validate reports whether the contract satisfies its invariants
func (c OptionContract) Validate() bool {
	return c.Strike > 0 && c.OpenInterest >= 0 && c.Kind.Valid()
}

// Chain is an option chain for a single underlying and expiry
type Chain []OptionContract

// Strikes returns the sorted set of distinct strikes in the chain
func (ch Chain) Strikes() []float64 {
	seen := make(map[float64]struct{}, len(ch))
	strikes := make([]float64, 0, len(ch))
	for _, c := range ch {
		if _, ok := seen[c.Strike]; ok {
			continue
		}
		seen[c.Strike] = struct{}{}
		strikes = append(strikes, c.Strike)
	}
	sort.Float64s(strikes)
	return strikes
}

// TotalOpenInterest sums open interest across the chain
func (ch Chain) TotalOpenInterest() int64 {
	var total int64
	for _, c := range ch {
		total += c.OpenInterest
	}
	return total
}

// Candle represents one daily OHLCV bar
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// History is an ordered series of daily candles, oldest first
type History []Candle

// Closes extracts close prices in series order
func (h History) Closes() []float64 {
	closes := make([]float64, len(h))
	for i, c := range h {
		closes[i] = c.Close
	}
	return closes
}

// Volumes extracts volumes in series order
func (h History) Volumes() []float64 {
	volumes := make([]float64, len(h))
	for i, c := range h {
		volumes[i] = c.Volume
	}
	return volumes
}
