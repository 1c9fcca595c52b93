package source

import (
	"strings"

	"github.com/shopspring/decimal"
)

var numberNoise = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "\u00a0", "")

// ParseAmount parses a spreadsheet-style number such as "$18,000.50",
// "AUD 1 200" or "(250)". Blank or unparseable input yields 0, false.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	upper := strings.ToUpper(s)
	if i := strings.Index(upper, "AUD"); i >= 0 {
		s = s[:i] + s[i+3:]
	}
	s = numberNoise.Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, true
}
