package utils

import (
	"errors"
	"strings"
	"unicode"
)

// MobileLength is the expected number of digits in a normalized mobile number.
const MobileLength = 10

var ErrInvalidMobile = errors.New("mobile number must be 10 digits")

// NormalizeMobile strips everything except digits (spaces, dashes, a leading
// +country prefix the client may send) and validates the fixed length. All
// stores and tables key on the normalized form.
func NormalizeMobile(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// Tolerate a country calling code by keeping the trailing 10 digits.
	if len(digits) > MobileLength {
		digits = digits[len(digits)-MobileLength:]
	}
	if len(digits) != MobileLength {
		return "", ErrInvalidMobile
	}
	return digits, nil
}
