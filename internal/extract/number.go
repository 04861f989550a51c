package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	compactNumberRe = regexp.MustCompile(`^([\d.,\s]+)([KMB]?)$`)
	nonDigitRe      = regexp.MustCompile(`\D`)
)

// ParseCompactNumber parses counts as sites display them: "1,234", "1.2K",
// "3M", "12 345". Text around the number ("1,234 following") is tolerated by
// falling back to the digits it contains. Unparsable input yields 0.
//
// With a K, M or B suffix a comma is a decimal separator ("1,2K" is 1200);
// without one, commas and dots are thousands separators.
func ParseCompactNumber(value string) int {
	cleaned := strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(value)
	cleaned = strings.ToUpper(strings.TrimSpace(cleaned))
	if cleaned == "" {
		return 0
	}

	m := compactNumberRe.FindStringSubmatch(cleaned)
	if m == nil {
		return digitsOnly(cleaned)
	}

	number, suffix := strings.ReplaceAll(m[1], " ", ""), m[2]
	if suffix == "" {
		number = strings.NewReplacer(",", "", ".", "").Replace(number)
	} else {
		number = strings.ReplaceAll(number, ",", ".")
	}

	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return digitsOnly(number)
	}

	multiplier := map[string]float64{"": 1, "K": 1e3, "M": 1e6, "B": 1e9}[suffix]
	return int(f * multiplier)
}

func digitsOnly(s string) int {
	digits := nonDigitRe.ReplaceAllString(s, "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
