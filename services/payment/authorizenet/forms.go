package authorizenet

import (
	"time"
)

// MaskedExpiration is what the gateway returns in place of a stored
// expiration date and accepts back on update.
const MaskedExpiration = "XXXX"

const expirationLayout = "2006-01"

var expirationInputLayouts = []string{
	"2006-01",
	"2006-01-02",
	"01/06",
	"01/2006",
}

// FormatExpiration renders t the way the gateway expects (YYYY-MM).
func FormatExpiration(t time.Time) string {
	return t.Format(expirationLayout)
}

// NormalizeExpirationDate converts a form value to YYYY-MM.
func NormalizeExpirationDate(value string) (string, error) {
	if value == MaskedExpiration {
		return value, nil
	}
	for _, layout := range expirationInputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return FormatExpiration(t), nil
		}
	}
	return "", &ValidationError{
		Field:   "expiration_date",
		Message: "expected YYYY-MM, YYYY-MM-DD, MM/YY or MM/YYYY",
	}
}

// paymentFields converts a payment form to gateway names and normalizes
// its expiration date.
func paymentFields(form FormData) (Fields, error) {
	fields := ToExternal(form)
	if fields == nil {
		fields = Fields{}
	}
	if exp, ok := fields["expirationDate"]; ok {
		normalized, err := NormalizeExpirationDate(exp)
		if err != nil {
			return nil, err
		}
		fields["expirationDate"] = normalized
	}
	return fields, nil
}
