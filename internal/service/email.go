// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/joinflow/webinar-join-service/internal/domain/models"
)

// DefaultAliasEmailDomain is the domain alias emails are composed under.
const DefaultAliasEmailDomain = "example.com"

const aliasEmailLocalPrefix = "noemail"

// EmailStrategy decides which email address to register with and derives
// deterministic alias addresses when no real one is usable.
type EmailStrategy struct {
	domain string
}

// NewEmailStrategy creates an EmailStrategy composing aliases under the
// given domain.
func NewEmailStrategy(domain string) *EmailStrategy {
	if domain == "" {
		domain = DefaultAliasEmailDomain
	}
	return &EmailStrategy{domain: domain}
}

// Choose picks the email address to register with. A real email on the
// contact wins unless aliasing is forced; otherwise a deterministic alias is
// synthesized from the phone, contact id, and display name.
func (s *EmailStrategy) Choose(realEmail, phone, contactID, displayName string, aliasForced bool) (string, models.EmailSource) {
	realEmail = strings.TrimSpace(realEmail)
	if realEmail != "" && !aliasForced {
		return realEmail, models.EmailSourceReal
	}
	return s.Alias(phone, contactID, displayName), models.EmailSourceAlias
}

// Alias builds a deterministic alias address of the form
// "noemail+<base>-<fingerprint>@<domain>". The base is the digits-only
// phone, falling back to the contact id, falling back to a random token.
// The fingerprint is derived from the display name so that a name change
// yields a distinct registrant on the provider side.
func (s *EmailStrategy) Alias(phone, contactID, displayName string) string {
	base := aliasDigits(phone)
	if base == "" {
		base = contactID
	}
	if base == "" {
		base = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	suffix := ""
	if name := strings.TrimSpace(displayName); name != "" {
		suffix = "-" + nameFingerprint(name)
	}

	return fmt.Sprintf("%s+%s%s@%s", aliasEmailLocalPrefix, base, suffix, s.domain)
}

// nameFingerprint hashes a display name into a short hex token. FNV-1a is
// folded over UTF-16 code units rather than bytes so that previously
// issued aliases keep resolving to the same registrant.
func nameFingerprint(name string) string {
	h := uint32(2166136261)
	for _, unit := range utf16.Encode([]rune(name)) {
		h ^= uint32(unit)
		h *= 16777619
	}
	hexDigits := strconv.FormatUint(uint64(h), 16)
	if len(hexDigits) > 6 {
		hexDigits = hexDigits[:6]
	}
	return hexDigits
}

func aliasDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
