package report

import (
	"time"

	"mmradar/internal/domain/advisory"
	"mmradar/internal/domain/disclosure"
	"mmradar/internal/domain/marketdata"
	"mmradar/internal/domain/session"
)

// View is the full renderable snapshot of one analysis cycle. Any
// analyzer pointer may be nil when that analyzer had no data; templates
// skip the corresponding section.
type View struct {
	Symbol      string
	Session     session.Window
	GeneratedAt time.Time

	Quote       *marketdata.Quote
	QuoteSource string

	Positioning *advisory.PositioningResult
	Volatility  *advisory.VolatilityResult
	Technical   *advisory.TechnicalResult
	Advisory    *advisory.RiskAdvisory

	Disclosures          []disclosure.Record
	DisclosureProvenance disclosure.Provenance
}

// TopDisclosures returns at most n most-recent records for rendering
func (v *View) TopDisclosures(n int) []disclosure.Record {
	if len(v.Disclosures) <= n {
		return v.Disclosures
	}
	return v.Disclosures[:n]
}
