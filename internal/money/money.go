// Package money holds the two currencies the console deals with and the
// formatting used on pages and in PDFs.
package money

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Currency is an ISO code accepted by the backend.
type Currency string

const (
	ARS Currency = "ARS"
	USD Currency = "USD"
)

// ParseCurrency accepts "ARS" or "USD" in any case.
func ParseCurrency(raw string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(raw))) {
	case ARS:
		return ARS, nil
	case USD:
		return USD, nil
	default:
		return "", fmt.Errorf("moneda inválida: %q", raw)
	}
}

// Amount is a value tagged with the currency it was entered in. Amounts in
// ARS are forwarded to the backend as-is; conversion to USD happens there.
type Amount struct {
	Currency Currency
	Value    float64
}

func InUSD(v float64) Amount { return Amount{Currency: USD, Value: v} }
func InARS(v float64) Amount { return Amount{Currency: ARS, Value: v} }

// Put stores the amount in body under usdKey or arsKey, depending on the
// currency. Exactly one of the two keys is set.
func (a Amount) Put(body map[string]any, usdKey, arsKey string) {
	if a.Currency == ARS {
		body[arsKey] = a.Value
		return
	}
	body[usdKey] = a.Value
}

// ToARS converts the amount using fx (ARS per USD).
func (a Amount) ToARS(fx float64) float64 {
	if a.Currency == ARS {
		return a.Value
	}
	return a.Value * fx
}

// ToUSD converts the amount using fx. A non-positive rate yields zero for
// ARS amounts.
func (a Amount) ToUSD(fx float64) float64 {
	if a.Currency == USD {
		return a.Value
	}
	if fx <= 0 {
		return 0
	}
	return a.Value / fx
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatARS renders a peso amount without decimals and with dot thousands
// separators, e.g. "$ 1.234.568".
func FormatARS(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(0).InexactFloat64()
	return "$ " + humanize.FormatFloat("#.###,", rounded)
}

// FormatUSD renders a dollar amount with two decimals, e.g. "US$ 1,234.57".
func FormatUSD(v float64) string {
	return "US$ " + humanize.FormatFloat("#,###.##", Round2(v))
}

// FormatPlain renders a number with two decimals and no grouping.
func FormatPlain(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
