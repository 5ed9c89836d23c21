package validation

import (
	"errors"
	"strings"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city name cannot be empty")

// ErrCityTooLong is returned when the city length exceeds the maximum.
var ErrCityTooLong = errors.New("city name too long")

// ValidateCity trims the input and rejects empty names and names longer than
// maxLen runes (when maxLen > 0). Any other character is allowed; the request
// URL percent-encodes it. Returns the trimmed city.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrCityEmpty
	}
	if maxLen > 0 && len(r) > maxLen {
		return "", ErrCityTooLong
	}
	return s, nil
}
