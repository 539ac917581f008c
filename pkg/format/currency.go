package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a Brazilian currency string (e.g., "R$ 1.234,56"). Amounts
// that are zero or negative render as "R$ 0,00".
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(constants.CurrencyDecimals)
	if !rounded.IsPositive() {
		return constants.ZeroCurrency
	}
	return constants.CurrencyPrefix + " " + NumericCurrency(rounded)
}

// NumericCurrency returns the amount without a currency symbol but with
// separators (e.g., "-1.234,56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	fixed := amount.Abs().StringFixed(constants.CurrencyDecimals)
	parts := strings.SplitN(fixed, ".", 2)
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}
	return sign + group(parts[0]) + constants.DecimalSeparator + decPart
}

// Integer returns n with periods grouping thousands (e.g., "1.234.567").
func Integer(n int64) string {
	if n < 0 {
		return "-" + group(strconv.FormatInt(-n, 10))
	}
	return group(strconv.FormatInt(n, 10))
}

// Identifier renders a numeric identifier such as the NAT with grouped
// thousands. Non-numeric values are returned unchanged.
func Identifier(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Integer(n)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && math.Abs(f) < math.MaxInt64 {
		return Integer(int64(f))
	}
	return raw
}

func group(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteString(constants.ThousandsSeparator)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
