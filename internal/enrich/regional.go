package enrich

import (
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// RegionalInfo is placeholder pricing data. It is random on every call and
// carries no business meaning.
type RegionalInfo struct {
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Currency       string          `json:"currency"`
}

// Regional generates RegionalInfo. The zero value uses the global source.
type Regional struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRegional returns a generator drawing from rnd; nil uses the global source.
func NewRegional(rnd *rand.Rand) *Regional {
	return &Regional{rnd: rnd}
}

func (g *Regional) intN(n int) int {
	if g == nil || g.rnd == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

// Info returns a price in [10.00, 1000.00] and a tax rate in [0.05, 0.25].
func (g *Regional) Info(code string) RegionalInfo {
	cents := 1000 + g.intN(99001)
	taxPercent := 5 + g.intN(21)
	return RegionalInfo{
		SuggestedPrice: decimal.New(int64(cents), -2),
		TaxRate:        decimal.New(int64(taxPercent), -2),
		Currency:       Currency(code),
	}
}

// RegionalProduct is a store product with country and regional data attached.
type RegionalProduct struct {
	Product
	RegionalInfo RegionalInfo `json:"regional_info"`
}

func (g *Regional) Decorate(p Product) RegionalProduct {
	return RegionalProduct{Product: p, RegionalInfo: g.Info(p.CountryCode)}
}
