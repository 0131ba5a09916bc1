// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "IN"

// NormalizeDigits reduces a phone number to its bare digit string. Formatted
// input ("+91 98765-43210", "(987) 654 3210") is parsed and reduced to the
// national significant number; input that does not parse as a phone number is
// returned with non-digit characters stripped. Used by the CSV importer so
// formatted spreadsheet values survive the digits-only intake rule.
func NormalizeDigits(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err == nil && phonenumbers.IsValidNumber(number) {
		return phonenumbers.GetNationalSignificantNumber(number)
	}

	return stripNonDigits(trimmed)
}

func stripNonDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
