// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// GuestLabel is the display name used when no usable candidate survives
	// the cascade.
	GuestLabel = "Guest"

	// EmptyLastNamePlaceholder is substituted for an unresolvable family
	// name. The provider rejects or mis-renders a truly empty field, so a
	// single space is sent instead.
	EmptyLastNamePlaceholder = " "

	maxDisplayNameLength = 96
)

// NameSource identifies which tier of the cascade produced a display name.
type NameSource string

const (
	NameSourceCRM   NameSource = "crm_custom_field"
	NameSourceForm  NameSource = "form_hint"
	NameSourceGuest NameSource = "guest"
)

var (
	wrappingPunctPattern = regexp.MustCompile(`^["'“”‘’\-–—\s]+|["'“”‘’\-–—\s]+$`)
	embeddedEmailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// A digit followed by six or more digit/separator characters marks a
	// phone number pasted into a name field.
	longDigitRunPattern = regexp.MustCompile(`\+?[0-9][0-9\s\-()]{6,}`)
	disallowedPattern   = regexp.MustCompile(`[^\p{L}\p{N}\s\-'.,]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)

	templateVarPattern    = regexp.MustCompile(`^\{\{.*\}\}$`)
	placeholderWordExpr   = regexp.MustCompile(`(?i)^(null|undefined|na|n/a)$`)
)

// SanitizeName strips a raw display-name candidate down to plain name text:
// embedded emails and long digit runs are removed, injection artifacts
// truncate the value, and only letters, numbers, whitespace, hyphens,
// apostrophes, periods, and commas survive. Returns an empty string when
// nothing usable remains.
func SanitizeName(s string) string {
	x := norm.NFKC.String(s)

	// Drop wrapping quotes and dashes before anything else.
	x = wrappingPunctPattern.ReplaceAllString(x, "")

	x = embeddedEmailPattern.ReplaceAllString(x, " ")
	x = longDigitRunPattern.ReplaceAllString(x, " ")

	// Truncate at the first injection/placeholder artifact.
	if i := strings.IndexAny(x, "@#|"); i >= 0 {
		x = x[:i]
	}

	// The allowlist pass also drops pictographic and emoji characters.
	x = disallowedPattern.ReplaceAllString(x, " ")
	x = whitespaceRun.ReplaceAllString(x, " ")
	x = strings.TrimSpace(x)

	if runes := []rune(x); len(runes) > maxDisplayNameLength {
		x = strings.TrimSpace(string(runes[:maxDisplayNameLength]))
	}
	return x
}

// IsPlaceholder reports whether a value is syntactically present but
// semantically empty: whitespace-only, an unfilled template variable like
// "{{contact.zoom_name}}", or a literal null/undefined/na/n/a.
func IsPlaceholder(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return true
	}
	if templateVarPattern.MatchString(s) {
		return true
	}
	return placeholderWordExpr.MatchString(s)
}

// nameCandidate is one tier of the display-name cascade. Extractors run
// lazily; the first one yielding a non-empty sanitized value wins.
type nameCandidate struct {
	source  NameSource
	extract func() string
}

// ResolveDisplayName cascades through the display-name candidates: the CRM
// custom field, then the caller-supplied hint (rejected when it looks like a
// placeholder), then the guest label. The result is always non-empty.
func ResolveDisplayName(crmCandidate, formCandidate string) (string, NameSource) {
	candidates := []nameCandidate{
		{
			source:  NameSourceCRM,
			extract: func() string { return SanitizeName(crmCandidate) },
		},
		{
			source: NameSourceForm,
			extract: func() string {
				if IsPlaceholder(formCandidate) {
					return ""
				}
				return SanitizeName(formCandidate)
			},
		},
	}

	for _, candidate := range candidates {
		if name := candidate.extract(); name != "" {
			return name, candidate.source
		}
	}
	return GuestLabel, NameSourceGuest
}

// SplitName splits a resolved display name into the given-name token and the
// family-name remainder. An empty remainder becomes the non-empty
// placeholder the provider requires.
func SplitName(display string) (firstName, lastName string) {
	fields := strings.Fields(display)
	if len(fields) == 0 {
		return GuestLabel, EmptyLastNamePlaceholder
	}
	firstName = fields[0]
	lastName = strings.Join(fields[1:], " ")
	if lastName == "" {
		lastName = EmptyLastNamePlaceholder
	}
	return firstName, lastName
}
