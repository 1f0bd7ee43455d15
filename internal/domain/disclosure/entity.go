package disclosure

import (
	"fmt"
	"time"
)

// TransactionKind defines the reported transaction type
type TransactionKind string

const (
	TxPurchase    TransactionKind = "purchase"
	TxSale        TransactionKind = "sale"
	TxExchange    TransactionKind = "exchange"
	TxPartialSale TransactionKind = "partial-sale"
)

// Valid checks if transaction kind is valid
func (k TransactionKind) Valid() bool {
	switch k {
	case TxPurchase, TxSale, TxExchange, TxPartialSale:
		return true
	}
	return false
}

// String returns string representation
func (k TransactionKind) String() string {
	return string(k)
}

// Provenance tags where a record set came from
type Provenance string

const (
	// ProvenanceSynthesized marks substitute records generated when
	// every real source came back empty
	ProvenanceSynthesized Provenance = "synthesized"
)

// Synthetic reports whether the provenance names generated data
func (p Provenance) Synthetic() bool {
	return p == ProvenanceSynthesized
}

// String returns string representation
func (p Provenance) String() string {
	return string(p)
}

// Record represents one reported trading transaction from a public
// filing feed. Amounts arrive as bracket strings, not precise figures;
// the upstream disclosure regime only provides ranges.
type Record struct {
	Actor            string
	Chamber          string
	Transaction      TransactionKind
	AmountBracket    string
	TransactionDate  time.Time
	DisclosureDate   time.Time
	Ticker           string
	AssetDescription string
	Source           string
}

// Key returns the deduplication identity of the record:
// (actor, transaction date, ticker, transaction kind, amount bracket)
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		r.Actor,
		r.TransactionDate.Format("2006-01-02"),
		r.Ticker,
		r.Transaction,
		r.AmountBracket,
	)
}
