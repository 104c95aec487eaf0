package service

import (
	"context"
	"errors"

	"go-product-bridge/pkg/validator"
)

// SampleProducts are the demo rows inserted by cmd/seed.
var SampleProducts = []CreateProductRequest{
	{Name: "iPhone 15", SKU: "CTUS1", CountryCode: "US", LoadDate: strRef("2024-01-15 10:00:00")},
	{Name: "Samsung Galaxy S24", SKU: "CTKR2", CountryCode: "KR", LoadDate: strRef("2024-01-16 11:30:00")},
	{Name: "Xiaomi Mi 13", SKU: "CTCN3", CountryCode: "CN", LoadDate: strRef("2024-01-17 09:45:00")},
	{Name: "Google Pixel 8", SKU: "CTUS4", CountryCode: "US", LoadDate: strRef("2024-01-18 14:20:00")},
	{Name: "Sony Xperia 1 V", SKU: "CTJP5", CountryCode: "JP", LoadDate: strRef("2024-01-19 16:10:00")},
}

type SeedResult struct {
	Created int
	Skipped int
}

// SeedSampleProducts inserts SampleProducts, skipping SKUs that already exist.
func SeedSampleProducts(ctx context.Context, svc ProductService) (SeedResult, error) {
	var result SeedResult
	for _, sample := range SampleProducts {
		req := sample
		if req.LoadDate != nil {
			loadDate := *req.LoadDate
			req.LoadDate = &loadDate
		}

		_, err := svc.CreateProduct(ctx, &req)
		var fieldErrs validator.Errors
		switch {
		case err == nil:
			result.Created++
		case errors.As(err, &fieldErrs) && len(fieldErrs["sku"]) > 0:
			result.Skipped++
		default:
			return result, err
		}
	}
	return result, nil
}

func strRef(s string) *string { return &s }
