package enrich

// SKUInfo decomposes a derived SKU such as CTUS12.
type SKUInfo struct {
	Prefix      string `json:"prefix"`
	CountryCode string `json:"country_code"`
	IDSuffix    string `json:"id_suffix"`
}

// BreakdownSKU splits sku positionally: two prefix characters, two country
// characters, then the rest. Short SKUs yield empty trailing parts.
func BreakdownSKU(sku string) SKUInfo {
	r := []rune(sku)
	return SKUInfo{
		Prefix:      slice(r, 0, 2),
		CountryCode: slice(r, 2, 4),
		IDSuffix:    slice(r, 4, len(r)),
	}
}

// SKUPrefix is the first two characters of sku.
func SKUPrefix(sku string) string {
	return slice([]rune(sku), 0, 2)
}

func slice(r []rune, from, to int) string {
	if from >= len(r) {
		return ""
	}
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}
