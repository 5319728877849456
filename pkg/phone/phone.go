// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package phone provides phone number canonicalization and search-variant
// generation. It is pure platform code with no I/O.
package phone

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalizer canonicalizes phone numbers to an E.164-like form, defaulting
// bare local-format numbers of a fixed digit length to a home country code.
type Normalizer struct {
	countryCode string // home country calling code, digits only (e.g. "852")
	region      string // ISO 3166-1 region derived from the country code
	localLength int    // digit length of a bare local-format number
}

// NewNormalizer creates a Normalizer for the given home country calling code
// and local number length.
func NewNormalizer(countryCode string, localLength int) *Normalizer {
	countryCode = digitsOnly(countryCode)
	region := ""
	if cc, err := strconv.Atoi(countryCode); err == nil {
		region = phonenumbers.GetRegionCodeForCountryCode(cc)
	}
	return &Normalizer{
		countryCode: countryCode,
		region:      region,
		localLength: localLength,
	}
}

// Normalize produces the single canonical form of a raw phone number.
// Identity matching is defined as equality of this form. Empty input yields
// an empty result; the function never fails.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// A leading international 00 prefix is equivalent to +.
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}

	if num, err := phonenumbers.Parse(s, n.region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}

	// Fallback for numbers the library rejects: apply the same rules the CRM
	// data was written with, so stored and requested values still compare equal.
	if strings.HasPrefix(s, "+") {
		return "+" + digitsOnly(s)
	}
	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}
	if n.localLength > 0 && len(digits) == n.localLength {
		return "+" + n.countryCode + digits
	}
	return "+" + digits
}

// Variants returns the textual representations of a phone number worth using
// as CRM search queries, canonical form first. The variants are search keys
// only; matches must still be verified with Normalize equality.
func (n *Normalizer) Variants(raw string) []string {
	canonical := n.Normalize(raw)
	if canonical == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(canonical)
	add(strings.TrimPrefix(canonical, "+"))

	digits := digitsOnly(raw)
	if n.localLength > 0 && len(digits) == n.localLength {
		add(n.countryCode + digits)
	}
	add(digits)

	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
