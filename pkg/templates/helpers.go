package templates

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders a price with two decimals and no currency sign.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatMoney renders a dollar amount with two decimals, or N/A for zero.
func FormatMoney(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "N/A"
	}
	return "$" + humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

// FormatLargeMoney renders market caps and fund assets as $2.95T / $410.12B / $12.50M.
func FormatLargeMoney(v float64) string {
	if v <= 0 || math.IsNaN(v) {
		return "N/A"
	}
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + humanize.Comma(int64(math.Round(v)))
	}
}

// FormatCompact renders share volumes as 51.23M / 820.00K / 950.
func FormatCompact(n any) string {
	v := toFloat(n)
	if v <= 0 || math.IsNaN(v) {
		return "N/A"
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return humanize.Comma(int64(math.Round(v)))
	}
}

// FormatPercent renders a ratio (0.0003) as a percentage (0.03%).
func FormatPercent(ratio float64) string {
	if ratio == 0 || math.IsNaN(ratio) {
		return "N/A"
	}
	return humanize.FormatFloat("#,###.##", ratio*100) + "%"
}

// OrNA substitutes N/A for empty strings and zero numbers.
func OrNA(v any) any {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "N/A"
		}
	case float64:
		if x == 0 {
			return "N/A"
		}
		return FormatPrice(x)
	case int64:
		if x == 0 {
			return "N/A"
		}
		return humanize.Comma(x)
	case int:
		if x == 0 {
			return "N/A"
		}
		return humanize.Comma(int64(x))
	}
	return v
}

// FormatDate renders a timestamp as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	}
	return 0
}
