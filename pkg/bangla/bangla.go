// Package bangla renders numbers with Bangla digits for display.
package bangla

import (
	"strings"

	"github.com/shopspring/decimal"
)

var toBangla = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// Digits replaces ASCII digits in s.
func Digits(s string) string {
	return toBangla.Replace(s)
}

// Number renders n with at most two decimals and Bangla digits.
func Number(n float64) string {
	return Digits(decimal.NewFromFloat(n).Round(2).String())
}

// Money renders n as a taka amount with lakh grouping, e.g. ৳১২,৩৪,৫৬৭.৫০.
func Money(n float64) string {
	d := decimal.NewFromFloat(n).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	text := d.StringFixed(2)
	whole, frac, _ := strings.Cut(text, ".")
	if frac == "00" {
		frac = ""
	}

	var b strings.Builder
	b.WriteString(group(whole))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + "৳" + Digits(b.String())
}

// group inserts separators the South Asian way: the last three digits, then
// pairs.
func group(whole string) string {
	if len(whole) <= 3 {
		return whole
	}
	head, tail := whole[:len(whole)-3], whole[len(whole)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}
