// Package phone normalizes phone numbers to E.164 so webhook matching and
// stored assignments compare equal regardless of provider formatting.
package phone

import (
	"errors"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is returned when a phone number cannot be parsed or validated.
var ErrInvalid = errors.New("invalid phone number")

// Normalize parses and validates a phone number using libphonenumber and
// returns E.164 format. A '+' prefix is required, no default region is assumed.
func Normalize(input string) (string, error) {
	plusCount := 0
	for _, r := range input {
		switch {
		case r == '+':
			plusCount++
		case r >= '0' && r <= '9', r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return "", ErrInvalid
		}
	}
	if plusCount != 1 {
		return "", ErrInvalid
	}

	num, err := phonenumbers.Parse(input, "")
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
