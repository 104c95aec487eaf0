package enrich

import (
	"strings"
	"time"

	"go-product-bridge/internal/storeclient"
)

const unknownMonth = "unknown"

type Stats struct {
	TotalProducts int            `json:"total_products"`
	ByCountry     map[string]int `json:"by_country"`
	SKUPrefixes   map[string]int `json:"sku_prefixes"`
	ByMonth       map[string]int `json:"by_month"`
	ProcessedAt   time.Time      `json:"processed_at"`
}

// ComputeStats groups products by country code, SKU prefix and load month.
// Country codes are grouped case-insensitively under their upper-case form.
// An empty input yields empty (non-nil) groupings.
func ComputeStats(products []storeclient.Product, now time.Time) Stats {
	stats := Stats{
		TotalProducts: len(products),
		ByCountry:     make(map[string]int),
		SKUPrefixes:   make(map[string]int),
		ByMonth:       make(map[string]int),
		ProcessedAt:   now.UTC(),
	}
	for _, p := range products {
		stats.ByCountry[strings.ToUpper(p.CountryCode)]++
		stats.SKUPrefixes[SKUPrefix(p.SKU)]++
		stats.ByMonth[loadMonth(p.LoadDate)]++
	}
	return stats
}

func loadMonth(t time.Time) string {
	if t.IsZero() {
		return unknownMonth
	}
	return t.UTC().Format("2006-01")
}
