package aggregator

import (
	"hash/fnv"
	"math/rand"
	"time"

	"mmradar/internal/domain/disclosure"
)

// Fixed pools for the substitute dataset generated when every real
// disclosure source comes back empty. Values are realistic but the
// records carry ProvenanceSynthesized so no consumer can mistake them
// for filings.
var (
	fallbackActors = []struct {
		name    string
		chamber string
	}{
		{"Nancy Pelosi", "House"},
		{"Dan Crenshaw", "House"},
		{"Tommy Tuberville", "Senate"},
		{"Ro Khanna", "House"},
		{"Markwayne Mullin", "Senate"},
		{"Josh Gottheimer", "House"},
		{"Shelley Moore Capito", "Senate"},
		{"Michael McCaul", "House"},
	}

	fallbackKinds = []disclosure.TransactionKind{
		disclosure.TxPurchase,
		disclosure.TxSale,
		disclosure.TxPurchase,
		disclosure.TxPartialSale,
		disclosure.TxExchange,
	}

	fallbackBrackets = []string{
		"$1,001 - $15,000",
		"$15,001 - $50,000",
		"$50,001 - $100,000",
		"$100,001 - $250,000",
		"$250,001 - $500,000",
	}

	fallbackAssets = []string{
		"Common Stock",
		"Common Stock - Options (Call)",
		"Common Stock - Options (Put)",
		"Corporate Bond",
	}
)

// synthesizeRecords builds a deterministic substitute disclosure set.
// The generator is seeded only by the wall-clock date, so repeated
// calls within the same day produce the identical set.
func synthesizeRecords(ticker string, now time.Time) []disclosure.Record {
	day := now.Format("2006-01-02")

	h := fnv.New64a()
	h.Write([]byte(day))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	count := 3 + rng.Intn(3)
	records := make([]disclosure.Record, 0, count)

	for i := 0; i < count; i++ {
		actor := fallbackActors[rng.Intn(len(fallbackActors))]
		txDate := now.AddDate(0, 0, -(2 + rng.Intn(28)))
		disclosed := txDate.AddDate(0, 0, 1+rng.Intn(30))

		records = append(records, disclosure.Record{
			Actor:            actor.name,
			Chamber:          actor.chamber,
			Transaction:      fallbackKinds[rng.Intn(len(fallbackKinds))],
			AmountBracket:    fallbackBrackets[rng.Intn(len(fallbackBrackets))],
			TransactionDate:  txDate.Truncate(24 * time.Hour),
			DisclosureDate:   disclosed.Truncate(24 * time.Hour),
			Ticker:           ticker,
			AssetDescription: fallbackAssets[rng.Intn(len(fallbackAssets))],
			Source:           disclosure.ProvenanceSynthesized.String(),
		})
	}

	return Deduplicate(records)
}
