package currency

import "strings"

type knownCurrency struct {
	Name   string
	Symbol string
}

// currencies a lender in the region is likely to display
var known = map[string]knownCurrency{
	"USD": {Name: "US Dollar", Symbol: "$"},
	"NIO": {Name: "Córdoba", Symbol: "C$"},
	"CRC": {Name: "Costa Rican Colón", Symbol: "₡"},
	"HNL": {Name: "Lempira", Symbol: "L"},
	"GTQ": {Name: "Quetzal", Symbol: "Q"},
	"MXN": {Name: "Mexican Peso", Symbol: "MX$"},
	"EUR": {Name: "Euro", Symbol: "€"},
}

// Lookup returns the display name and symbol of a known currency code.
// Unknown codes get the code itself as both name and symbol.
func Lookup(code string) (name, symbol string, ok bool) {
	code = strings.ToUpper(code)
	c, ok := known[code]
	if !ok {
		return code, code + " ", false
	}
	return c.Name, c.Symbol, true
}
