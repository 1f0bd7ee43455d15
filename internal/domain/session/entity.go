package session

import "time"

// Window identifies one of the four daily market sessions the analysis
// cycle is re-run for
type Window string

const (
	PreMarket  Window = "pre_market"
	MarketOpen Window = "market_open"
	Afternoon  Window = "afternoon"
	AfterHours Window = "after_hours"
)

// Valid checks if window is valid
func (w Window) Valid() bool {
	switch w {
	case PreMarket, MarketOpen, Afternoon, AfterHours:
		return true
	}
	return false
}

// String returns string representation
func (w Window) String() string {
	return string(w)
}

// Title returns the human heading used in reports
func (w Window) Title() string {
	switch w {
	case PreMarket:
		return "Pre-Market Analysis"
	case MarketOpen:
		return "Market Open Analysis"
	case Afternoon:
		return "Afternoon Analysis"
	default:
		return "After-Hours Analysis"
	}
}

// Focus returns what the session narrative should emphasize
func (w Window) Focus() string {
	switch w {
	case PreMarket:
		return "overnight news impact and pre-market volume"
	case MarketOpen:
		return "opening direction confirmation and volume follow-through"
	case Afternoon:
		return "momentum persistence into the close"
	default:
		return "full-day summary and next-session expectations"
	}
}

// Current resolves the active window for a local-market timestamp.
// Boundaries follow the market clock: 04-09 pre-market, 09-14 open,
// 14-16 afternoon, everything else after hours.
func Current(t time.Time) Window {
	switch hour := t.Hour(); {
	case hour >= 4 && hour < 9:
		return PreMarket
	case hour >= 9 && hour < 14:
		return MarketOpen
	case hour >= 14 && hour < 16:
		return Afternoon
	default:
		return AfterHours
	}
}
