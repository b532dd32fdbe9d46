package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// LinkID returns the numeric id after the last '=' of a link
func LinkID(link string) (int64, error) {
	i := strings.LastIndex(link, "=")
	if i < 0 {
		return 0, fmt.Errorf("link %q has no id", link)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(link[i+1:]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("link %q has no numeric id: %w", link, err)
	}
	return id, nil
}

// stripSeparators removes whitespace (including non-breaking spaces) and
// thousands separators from a numeric cell
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, s)
}

// ParseInt parses an integer cell such as "1 000"
func ParseInt(cell string) (int, error) {
	return strconv.Atoi(stripSeparators(cell))
}

// ParseFloat parses a real cell such as "12 345.67"
func ParseFloat(cell string) (float64, error) {
	return strconv.ParseFloat(stripSeparators(cell), 64)
}

// ParsePercent parses an accuracy cell such as "99.5%"
func ParsePercent(cell string) (float64, error) {
	return ParseFloat(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
}

// ParseRank parses a rank cell, falling back to the unknown-rank sentinel when
// the site shows a placeholder
func ParseRank(cell string, fallback int) int {
	n, err := ParseInt(cell)
	if err != nil {
		return fallback
	}
	return n
}

// ParseTotal parses a " / 1234" total cell
func ParseTotal(cell string) (int, error) {
	return ParseInt(strings.TrimPrefix(strings.TrimSpace(cell), "/"))
}
