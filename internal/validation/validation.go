package validation

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrLocationEmpty is returned when location is empty or whitespace-only after trim.
	ErrLocationEmpty = errors.New("location is required")
	// ErrLocationTooShort is returned when location length is below the minimum.
	ErrLocationTooShort = errors.New("location too short")
	// ErrLocationTooLong is returned when location length exceeds the maximum.
	ErrLocationTooLong = errors.New("location too long")
	// ErrLocationInvalidChars is returned when location contains disallowed characters.
	ErrLocationInvalidChars = errors.New("location contains invalid characters")

	// ErrRegionTooLong is returned when the region hint exceeds MaxRegionLength.
	ErrRegionTooLong = errors.New("region too long")
	// ErrRegionInvalidChars is returned when the region hint has characters other than letters, marks, space or hyphen.
	ErrRegionInvalidChars = errors.New("region contains invalid characters")
)

// MaxRegionLength bounds the optional region hint, in runes.
const MaxRegionLength = 100

// ValidateLocation trims the input, enforces length bounds (minLen, maxLen in runes),
// and restricts to Unicode letters and combining marks, digits, space, comma, hyphen,
// period and apostrophe.
// Returns the trimmed string or an error suitable for 400 INVALID_LOCATION responses.
// Alias resolution and casing are left to the location package.
func ValidateLocation(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	n := len([]rune(s))
	switch {
	case n == 0:
		return "", ErrLocationEmpty
	case minLen > 0 && n < minLen:
		return "", ErrLocationTooShort
	case maxLen > 0 && n > maxLen:
		return "", ErrLocationTooLong
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isLocationRune(r) }) >= 0 {
		return "", ErrLocationInvalidChars
	}
	return s, nil
}

// ValidateRegion trims an optional region hint. Empty is valid and yields "".
func ValidateRegion(input string) (string, error) {
	s := strings.TrimSpace(input)
	if len([]rune(s)) > MaxRegionLength {
		return "", ErrRegionTooLong
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isRegionRune(r) }) >= 0 {
		return "", ErrRegionInvalidChars
	}
	return s, nil
}

func isLocationRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}

func isRegionRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || r == ' ' || r == '-'
}
