// Package util provides utility functions for the application
package util

import (
	"strings"

	"golang.org/x/net/idna"
)

// Punycode converts a domain to its ASCII-compatible encoded form.
// Conversion failures are non-fatal: lookups proceed with the original
// string, so the raw input is returned unchanged on error.
func Punycode(domainName string) string {
	ascii, err := idna.Lookup.ToASCII(domainName)
	if err != nil {
		return domainName
	}
	return ascii
}

// Score computes a heuristic desirability score for a domain.
//
// The scoring values domains based on:
// 1. Length: shorter names are better (2-3 chars are ideal)
// 2. TLD: popular TLDs (.com, .net, .org) are preferred
// 3. Hyphens and digits in the name are penalized
//
// The result is clamped to [0, 100]. Input that is not exactly
// name.tld scores 0. The score is advisory ranking only and never
// influences the availability verdict.
func Score(domainName string) int {
	parts := strings.Split(domainName, ".")
	if len(parts) != 2 {
		return 0
	}
	name, tld := parts[0], parts[1]

	score := 0
	switch {
	case len(name) <= 3:
		score += 40
	case len(name) <= 5:
		score += 30
	default:
		score += 10
	}

	switch tld {
	case "com":
		score += 30
	case "net", "org":
		score += 20
	default:
		score += 10
	}

	if strings.Contains(name, "-") || containsDigit(name) {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func containsDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
