package inventory

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// formatNumber formats a float with dot thousands and comma decimals, the
// convention used in the alert messages. A zero fraction is omitted.
// Example: 1234.5 (2 decimals) => "1.234,50"; 1000.0 => "1.000".
func formatNumber(v float64, decimals int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if decimals < 0 {
		decimals = 0
	}

	factor := math.Pow(10, float64(decimals))
	scaled := math.Round(v * factor)
	intPart := int64(scaled) / int64(factor)
	fracPart := int64(scaled) % int64(factor)

	s := groupThousands(strconv.FormatInt(intPart, 10))

	prefix := ""
	if neg {
		prefix = "-"
	}
	if decimals == 0 || fracPart == 0 {
		return prefix + s
	}

	fracStr := strconv.FormatInt(fracPart, 10)
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}
	return fmt.Sprintf("%s%s,%s", prefix, s, fracStr)
}

// formatMoney renders a decimal amount rounded to whole pesos.
func formatMoney(v decimal.Decimal) string {
	return "$" + formatNumber(v.Round(0).InexactFloat64(), 0)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var buf []byte
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		buf = append(buf, s[i])
		count++
		if count == 3 && i != 0 {
			buf = append(buf, '.')
			count = 0
		}
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
