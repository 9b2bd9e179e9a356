// Package money converts between the integer currency units used by the
// ledger. Sale and jeonse figures are kept in 10-million-won units (split
// for input as eok + che), monthly rent in 10-man-won units. All
// conversions are integer arithmetic.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt parses s leniently ("12", "12.7", " 3 ") truncating toward zero.
// def is returned for blank or unparseable input.
func ToInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(f)
}

// EokCheToTenMillion combines eok and che into 10-million-won units.
func EokCheToTenMillion(eok, che int) int {
	return max(0, eok*10+che)
}

// TenMillionToEokChe splits 10-million-won units into eok and che.
func TenMillionToEokChe(n int) (eok, che int) {
	n = max(0, n)
	return n / 10, n % 10
}

// ManToTenMan converts man-won to 10-man-won units, flooring.
func ManToTenMan(man int) int {
	return max(0, man/10)
}

// TenManToMan converts 10-man-won units to man-won.
func TenManToMan(n int) int {
	return max(0, n*10)
}

// FormatTenMillion renders 10-million-won units, e.g. "50천만원".
func FormatTenMillion(n int) string {
	return fmt.Sprintf("%d천만원", max(0, n))
}

// FormatTenMan renders 10-man-won units as man-won, e.g. "90만원".
func FormatTenMan(n int) string {
	return fmt.Sprintf("%d만원", TenManToMan(n))
}
