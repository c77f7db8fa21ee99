package authorizenet

import "strings"

// Fields is a flat set of named values. Keys use either the gateway's
// camelCase names or the underscore names used by forms.
type Fields map[string]string

// FormData is a Fields value keyed by underscore names (card_number, zip).
type FormData = Fields

// BillingFields lists the billTo children in the order the gateway expects.
var BillingFields = []string{
	"firstName",
	"lastName",
	"company",
	"address",
	"city",
	"state",
	"zip",
	"country",
	"phoneNumber",
	"faxNumber",
}

// CreditCardFields lists the creditCard children in schema order.
var CreditCardFields = []string{
	"cardNumber",
	"expirationDate",
	"cardCode",
}

// ToExternalName converts an underscore name to the gateway's camelCase
// form: card_number becomes cardNumber.
func ToExternalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' && i+1 < len(name) && isLower(name[i+1]) {
			b.WriteByte(name[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToInternalName converts a camelCase name to underscores: phoneNumber
// becomes phone_number.
func ToInternalName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUpper(c) {
			b.WriteByte('_')
			b.WriteByte(c - 'A' + 'a')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToExternal returns a copy of f with every key passed through
// ToExternalName.
func ToExternal(f Fields) Fields {
	return renameKeys(f, ToExternalName)
}

// ToInternal returns a copy of f with every key passed through
// ToInternalName.
func ToInternal(f Fields) Fields {
	return renameKeys(f, ToInternalName)
}

func renameKeys(f Fields, rename func(string) string) Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[rename(k)] = v
	}
	return out
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
