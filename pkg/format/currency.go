package format

import (
	"strings"

	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Amount returns an amount with thousands separators followed by its
// currency code (e.g., "-1,234.56 EUR"). An empty code yields the bare number.
func Amount(amount decimal.Decimal, code string) string {
	formatted := NumericAmount(amount)
	if code == "" {
		return formatted
	}
	return formatted + " " + strings.ToUpper(code)
}

// NumericAmount returns an amount without a currency code but with
// separators (e.g., "-1,234.56").
func NumericAmount(amount decimal.Decimal) string {
	rounded := mathutil.Round(amount)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveAmount(rounded.Abs())
}

func formatPositiveAmount(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.DecimalPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
