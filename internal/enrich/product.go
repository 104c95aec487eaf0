package enrich

import (
	"strings"

	"go-product-bridge/internal/storeclient"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Product is a store product decorated with SKU and country data.
type Product struct {
	storeclient.Product
	Status  string      `json:"status"`
	SKUInfo SKUInfo     `json:"sku_info"`
	Country CountryInfo `json:"country"`
}

// Enrich decorates p. The flag is included for single-product views only.
func Enrich(p storeclient.Product, withFlag bool) Product {
	status := StatusActive
	if p.DeletedAt != nil {
		status = StatusDeleted
	}
	return Product{
		Product: p,
		Status:  status,
		SKUInfo: BreakdownSKU(p.SKU),
		Country: Country(p.CountryCode, withFlag),
	}
}

func EnrichAll(products []storeclient.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, Enrich(p, false))
	}
	return out
}

// Summary is attached to the enriched list response.
type Summary struct {
	TotalCount  int      `json:"total_count"`
	ActiveCount int      `json:"active_count"`
	Countries   []string `json:"countries"`
}

// Summarize counts products and lists distinct country codes in first-seen
// order. Codes are compared and reported upper-cased.
func Summarize(products []storeclient.Product) Summary {
	s := Summary{TotalCount: len(products), Countries: []string{}}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.DeletedAt == nil {
			s.ActiveCount++
		}
		code := strings.ToUpper(p.CountryCode)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		s.Countries = append(s.Countries, code)
	}
	return s
}

// FilterByCountry keeps products whose country code matches code, ignoring case.
func FilterByCountry(products []storeclient.Product, code string) []storeclient.Product {
	code = strings.TrimSpace(code)
	out := make([]storeclient.Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.CountryCode, code) {
			out = append(out, p)
		}
	}
	return out
}
