package enrich

import "strings"

// Fallbacks for codes missing from the tables below.
const (
	FallbackCurrency     = "Unknown"
	FallbackTimezone     = "UTC"
	FallbackFlag         = "🏳️"
	FallbackShippingZone = "International"
)

// CountryInfo is the static reference data attached to a product.
type CountryInfo struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	ShippingZone string `json:"shipping_zone"`
	Flag         string `json:"flag,omitempty"`
}

type countryRow struct {
	name     string
	currency string
	timezone string
	flag     string
	zone     string
}

var countries = map[string]countryRow{
	"US": {"United States", "USD", "America/New_York", "🇺🇸", "North America"},
	"CA": {"Canada", "CAD", "America/Toronto", "🇨🇦", "North America"},
	"MX": {"Mexico", "MXN", "America/Mexico_City", "🇲🇽", "Latin America"},
	"BR": {"Brazil", "BRL", "America/Sao_Paulo", "🇧🇷", "Latin America"},
	"AR": {"Argentina", "ARS", "America/Argentina/Buenos_Aires", "🇦🇷", "Latin America"},
	"GB": {"United Kingdom", "GBP", "Europe/London", "🇬🇧", "Europe"},
	"DE": {"Germany", "EUR", "Europe/Berlin", "🇩🇪", "Europe"},
	"FR": {"France", "EUR", "Europe/Paris", "🇫🇷", "Europe"},
	"ES": {"Spain", "EUR", "Europe/Madrid", "🇪🇸", "Europe"},
	"IT": {"Italy", "EUR", "Europe/Rome", "🇮🇹", "Europe"},
	"JP": {"Japan", "JPY", "Asia/Tokyo", "🇯🇵", "Asia Pacific"},
	"KR": {"South Korea", "KRW", "Asia/Seoul", "🇰🇷", "Asia Pacific"},
	"CN": {"China", "CNY", "Asia/Shanghai", "🇨🇳", "Asia Pacific"},
	"IN": {"India", "INR", "Asia/Kolkata", "🇮🇳", "Asia Pacific"},
	"AU": {"Australia", "AUD", "Australia/Sydney", "🇦🇺", "Oceania"},
}

func lookup(code string) (string, countryRow, bool) {
	key := strings.ToUpper(strings.TrimSpace(code))
	row, ok := countries[key]
	return key, row, ok
}

func CountryName(code string) string {
	key, row, ok := lookup(code)
	if !ok {
		return "Country (" + key + ")"
	}
	return row.name
}

func Currency(code string) string {
	if _, row, ok := lookup(code); ok {
		return row.currency
	}
	return FallbackCurrency
}

func Timezone(code string) string {
	if _, row, ok := lookup(code); ok {
		return row.timezone
	}
	return FallbackTimezone
}

func Flag(code string) string {
	if _, row, ok := lookup(code); ok {
		return row.flag
	}
	return FallbackFlag
}

func ShippingZone(code string) string {
	if _, row, ok := lookup(code); ok {
		return row.zone
	}
	return FallbackShippingZone
}

// Country builds the reference block for code. The flag is only filled when
// withFlag is set; list responses leave it out.
func Country(code string, withFlag bool) CountryInfo {
	info := CountryInfo{
		Code:         strings.ToUpper(strings.TrimSpace(code)),
		Name:         CountryName(code),
		Currency:     Currency(code),
		Timezone:     Timezone(code),
		ShippingZone: ShippingZone(code),
	}
	if withFlag {
		info.Flag = Flag(code)
	}
	return info
}
