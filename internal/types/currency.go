package types

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultCurrency is used when neither the caller nor the config supply one
const DefaultCurrency = "cad"

// zeroDecimalCurrencies are charged in whole units by Stripe, so their minor unit is the major unit.
var zeroDecimalCurrencies = []string{
	"bif", "clp", "djf", "gnf", "jpy", "kmf", "krw", "mga",
	"pyg", "rwf", "ugx", "vnd", "vuv", "xaf", "xof", "xpf",
}

// NormalizeCurrency lower-cases and trims an ISO 4217 code
func NormalizeCurrency(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsZeroDecimalCurrency reports whether amounts in code have no minor unit
func IsZeroDecimalCurrency(code string) bool {
	return lo.Contains(zeroDecimalCurrencies, NormalizeCurrency(code))
}

// IsCurrencyCode reports whether code has the shape of an ISO 4217 alphabetic code
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
