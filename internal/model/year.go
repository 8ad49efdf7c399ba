package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Year is a four-digit release year or one of the sentinels below.
type Year int

const (
	// YearUnknown marks an absent year: no tag value, or no lookup yet.
	YearUnknown Year = -1

	// YearUnresolved marks a lookup that returned no usable year.
	YearUnresolved Year = 0
)

// UnknownText is how absent values are written to record files.
const UnknownText = "unknown"

// Known reports whether y holds an actual year.
func (y Year) Known() bool {
	return y > 0
}

// String returns the serialized form: "unknown", "0", or the year.
func (y Year) String() string {
	if y == YearUnknown {
		return UnknownText
	}
	return strconv.Itoa(int(y))
}

// ParseYear reads a serialized year as written by String.
//
// Accepts "unknown" (and the empty string), "0", or a four-digit year.
func ParseYear(s string) (Year, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", UnknownText:
		return YearUnknown, nil
	case "0":
		return YearUnresolved, nil
	}
	if y, ok := ParseFourDigitYear(s); ok {
		return y, nil
	}
	return YearUnknown, fmt.Errorf("invalid year %q", s)
}

// ParseFourDigitYear accepts exactly four ASCII digits.
//
// Anything else, including surrounding whitespace, yields
// (YearUnresolved, false). "0000" is rejected as well since zero is
// reserved for the unresolved sentinel.
func ParseFourDigitYear(s string) (Year, bool) {
	if len(s) != 4 {
		return YearUnresolved, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return YearUnresolved, false
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return YearUnresolved, false
	}
	return Year(n), true
}
