// market/instruments.go
package market

import "strings"

// AssetClass distinguishes how a symbol is quoted and traded.
type AssetClass int

const (
	Stock AssetClass = iota
	Crypto
	Forex
)

// Classify infers the asset class from the symbol format used across
// the providers: "EUR/USD" (two 3-letter currency codes) is forex,
// any other slashed pair ("BTC/USD") is crypto, everything else a stock.
func Classify(symbol string) AssetClass {
	base, quote, ok := splitPair(symbol)
	if !ok {
		return Stock
	}
	if isCurrencyCode(base) && isCurrencyCode(quote) {
		return Forex
	}
	return Crypto
}

// IsForex reports whether the symbol is a forex pair.
func IsForex(symbol string) bool {
	return Classify(symbol) == Forex
}

// QuoteCurrency returns the quote leg of a slashed pair, or "" for a
// plain stock symbol.
func QuoteCurrency(symbol string) string {
	_, quote, ok := splitPair(symbol)
	if !ok {
		return ""
	}
	return quote
}

// PipValue is the price size of one pip for the pair: 0.01 for
// JPY-quoted pairs, 0.0001 otherwise.
func PipValue(symbol string) float64 {
	if QuoteCurrency(symbol) == "JPY" {
		return 0.01
	}
	return 0.0001
}

func splitPair(symbol string) (base, quote string, ok bool) {
	i := strings.IndexByte(symbol, '/')
	if i <= 0 || i == len(symbol)-1 {
		return "", "", false
	}
	return symbol[:i], symbol[i+1:], true
}

var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"AUD": true, "NZD": true, "CAD": true, "SEK": true, "NOK": true,
	"SGD": true, "HKD": true, "MXN": true, "ZAR": true,
}

func isCurrencyCode(s string) bool {
	return currencyCodes[strings.ToUpper(s)]
}
