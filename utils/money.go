package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds every amount the till accepts (one billion euros).
const MaxCents int64 = 100_000_000_000

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxCents)
)

var ErrAmountOutOfRange = errors.New("amount out of range")

// ParseCents converts a user-typed euro amount into cents.
// Accepts "3,30", "3.30", "3", " 3,3 € ". Anything unparsable or beyond
// MaxCents either way is 0.
func ParseCents(input string) int64 {
	cents, _ := ParseAmount(input)
	return cents
}

// ParseAmount is ParseCents for inputs that get stored: unparsable text is
// still 0, but an amount beyond MaxCents is ErrAmountOutOfRange.
func ParseAmount(input string) (int64, error) {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return 0, nil
	}
	val, err := decimal.NewFromString(s)
	if err != nil {
		return 0, nil
	}
	cents := val.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// FormatEuro renders cents the way the till displays them: "1,70 €".
func FormatEuro(cents int64) string {
	return strings.Replace(FormatAmount(cents), ".", ",", 1) + " €"
}

// FormatAmount renders cents as a plain two-decimal amount ("1.70") for exports.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseQuantity reads a quantity typed by the user the way a browser's
// parseInt does: optional sign, then the leading digits ("2.5" is 2, "3 pcs"
// is 3). ok is false when there are no leading digits. Values beyond int32
// are clamped.
func ParseQuantity(input string) (n int, ok bool) {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, false
		}
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return int(v), true
}
