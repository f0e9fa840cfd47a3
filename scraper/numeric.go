package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunRegex = regexp.MustCompile(`\d[\d.,]*`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// maxDigits guards against swallowing two adjacent prices into a
// single overflowing integer when parsing noise concatenates them.
const maxDigits = 10

// ParseNumber coerces scraped text like "$2.500.000", "80 m²" or
// "3 hab" into an integer. Dots and commas inside one run are treated
// as thousands separators. When the text carries several runs, the
// first run with a sane digit count wins.
func ParseNumber(text string) int {
	if text == "" {
		return 0
	}

	for _, run := range digitRunRegex.FindAllString(text, -1) {
		digits := nonDigitRegex.ReplaceAllString(run, "")
		if digits == "" || len(digits) > maxDigits {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		return n
	}
	return 0
}

// HasNumber reports whether the text carries any parseable digit run.
func HasNumber(text string) bool {
	return ParseNumber(text) > 0 || strings.ContainsAny(text, "0123456789")
}
