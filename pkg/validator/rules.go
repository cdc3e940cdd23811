package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var hexStringRegex = regexp.MustCompile(`^[0-9A-Fa-f]+$`)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLen validates that a string has at most max runes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// NoControlChars rejects strings containing control characters such as newlines.
func NoControlChars(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !strings.ContainsFunc(value, unicode.IsControl)
		},
		Error: ValidationError{Field: field, Message: "must not contain control characters"},
	}
}

// HexBytes validates a hexadecimal string encoding whole bytes, between
// minBytes and maxBytes long. A bound of zero disables it.
func HexBytes(field, value string, minBytes, maxBytes int) Rule {
	return Rule{
		Check: func() bool {
			if value == "" || len(value)%2 != 0 || !hexStringRegex.MatchString(value) {
				return false
			}
			n := len(value) / 2
			if minBytes > 0 && n < minBytes {
				return false
			}
			if maxBytes > 0 && n > maxBytes {
				return false
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a hexadecimal string of %d to %d bytes", minBytes, maxBytes),
		},
	}
}

// URLWithScheme validates an absolute URL with a host and one of the given schemes.
func URLWithScheme(field, value string, schemes ...string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			u, err := url.ParseRequestURI(value)
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, u.Scheme)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a valid URL with scheme: %s", strings.Join(schemes, ", ")),
		},
	}
}
