package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kevind700/crypto-fun/pkg/models"
)

// Color tokens shared by the CLI and API consumers. Zero counts as
// positive everywhere.
const (
	ColorPositive = "#4CAF50"
	ColorNegative = "#FF5252"

	BackgroundPositive = "rgba(34, 197, 94, 0.1)"
	BackgroundNegative = "rgba(239, 68, 68, 0.1)"

	BorderPositive = "rgba(34, 197, 94, 0.3)"
	BorderNegative = "rgba(239, 68, 68, 0.3)"
)

// FormatPercentChange renders a signed percentage string for display.
// Non-negative values get an explicit "+" prefix; negatives keep their
// own "-". The raw upstream digits are preserved, only decorated.
// e.g., "5.2" → "+5.2%", "-3.7" → "-3.7%", "0" → "+0%"
func FormatPercentChange(percentChange string) string {
	if ParseFloatOrZero(percentChange) >= 0 {
		return "+" + percentChange + "%"
	}
	return percentChange + "%"
}

// FormatValue renders a monetary magnitude with a dollar sign and a
// T/B/M/K suffix at the 1e12/1e9/1e6/1e3 thresholds, two fraction
// digits. Below 1000 the value is shown comma-grouped with no suffix.
func FormatValue(value float64) string {
	switch {
	case value >= 1e12:
		return fmt.Sprintf("$%.2fT", value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("$%.2fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("$%.2fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("$%.2fK", value/1e3)
	default:
		return "$" + FormatLargeNumber(value)
	}
}

// FormatVolume renders a decimal-string volume through FormatValue.
func FormatVolume(volume string) string {
	return FormatValue(ParseFloatOrZero(volume))
}

// FormatLargeNumber renders a number with comma thousands grouping.
// Fractional digits are kept only when present.
func FormatLargeNumber(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	return groupThousands(s)
}

// FormatPrice renders a decimal-string USD price with comma grouping
// and between 2 and 8 fraction digits, so sub-cent prices stay legible.
func FormatPrice(priceUSD string) string {
	f := ParseFloatOrZero(priceUSD)
	s := strconv.FormatFloat(f, 'f', 8, 64)
	// Trim trailing zeros but keep at least two fraction digits.
	dot := strings.IndexByte(s, '.')
	for len(s)-dot-1 > 2 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return groupThousands(s)
}

// ChangeColor returns the display color token for a percent change.
func ChangeColor(percentChange string) string {
	if ParseFloatOrZero(percentChange) >= 0 {
		return ColorPositive
	}
	return ColorNegative
}

// ChangeBackgroundColor returns the background token for a percent change.
func ChangeBackgroundColor(percentChange string) string {
	if ParseFloatOrZero(percentChange) >= 0 {
		return BackgroundPositive
	}
	return BackgroundNegative
}

// ChangeBorderColor returns the border token for a percent change.
func ChangeBorderColor(percentChange string) string {
	if ParseFloatOrZero(percentChange) >= 0 {
		return BorderPositive
	}
	return BorderNegative
}

// SparkPoints synthesizes a seven-point price series for a ticker from
// its current price and 1h/24h/7d percent changes. The upstream API has
// no historical endpoint, so the sparkline interpolates around "now".
func SparkPoints(t models.Ticker) []models.ChartPoint {
	price := ParseFloatOrZero(t.PriceUSD)
	ch1h := ParseFloatOrZero(t.PercentChange1h)
	ch24h := ParseFloatOrZero(t.PercentChange24h)
	ch7d := ParseFloatOrZero(t.PercentChange7d)

	labels := []string{"", "1H", "", "24H", "", "7D", ""}
	values := []float64{
		price - price*ch1h/100*1.5,
		price - price*ch1h/100,
		price - price*ch24h/200,
		price,
		price + price*ch24h/200,
		price + price*ch7d/100,
		price + price*ch7d/100*1.2,
	}

	points := make([]models.ChartPoint, len(values))
	for i, v := range values {
		points[i] = models.ChartPoint{Label: labels[i], Price: v}
	}
	return points
}

// groupThousands inserts commas into the integer part of a plain
// decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart + fracPart
	if neg {
		return "-" + out
	}
	return out
}
