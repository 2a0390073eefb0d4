package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// ScrapePrice cleans the text of a price block: all whitespace is dropped and everything from
// the first "д" on (the "до ..." validity note) is cut off.
// "1 299,90 ₽/шт\nдо 12.05" becomes "1299,90₽/шт".
func ScrapePrice(text string) string {
	cleaned := strings.Join(strings.Fields(text), "")
	if idx := strings.Index(cleaned, "д"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return cleaned
}

// priceRegex finds the first number in a cleaned price, with either decimal separator.
var priceRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParsePrice converts a price string to a float64. Grouping spaces are ignored.
// Unparseable input yields 0.
func ParsePrice(priceStr string) float64 {
	if priceStr == "" {
		return 0.0
	}

	foundPrice := priceRegex.FindString(ScrapePrice(priceStr))
	if foundPrice == "" {
		return 0.0
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(foundPrice, ",", "."), 64)
	if err != nil {
		return 0.0
	}
	return price
}
