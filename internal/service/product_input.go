package service

import "go-product-bridge/pkg/validator"

// DecodeCreateRequest builds a create request from a decoded JSON object.
// Values of the wrong type are kept as field errors and reported by
// CreateProduct together with the regular rules. A null field is absent.
func DecodeCreateRequest(fields map[string]any) *CreateProductRequest {
	req := &CreateProductRequest{typeErrs: validator.Errors{}}
	if name := stringField(fields, "name", true, req.typeErrs, validator.StringMessage); name != nil {
		req.Name = *name
	}
	if code := stringField(fields, "country_code", true, req.typeErrs, validator.StringMessage); code != nil {
		req.CountryCode = *code
	}
	req.LoadDate = stringField(fields, "load_date", true, req.typeErrs, validator.DateMessage)
	return req
}

// DecodeUpdateRequest builds a partial update from a decoded JSON object.
// name and country_code may be omitted but not null; a null load_date is
// treated as not supplied.
func DecodeUpdateRequest(fields map[string]any) *UpdateProductRequest {
	req := &UpdateProductRequest{typeErrs: validator.Errors{}}
	req.Name = stringField(fields, "name", false, req.typeErrs, validator.StringMessage)
	req.CountryCode = stringField(fields, "country_code", false, req.typeErrs, validator.StringMessage)
	req.LoadDate = stringField(fields, "load_date", true, req.typeErrs, validator.DateMessage)
	return req
}

// stringField returns fields[key] when it is a string. Absent keys return nil.
// Nulls return nil, or record an error when the field is not nullable.
func stringField(fields map[string]any, key string, nullable bool, errs validator.Errors, msg func(string) string) *string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	if v == nil {
		if !nullable {
			errs.Add(key, msg(key))
		}
		return nil
	}
	s, isString := v.(string)
	if !isString {
		errs.Add(key, msg(key))
		return nil
	}
	return &s
}
