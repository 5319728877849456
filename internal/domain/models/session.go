// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

import "strings"

// OccurrenceSelectorAuto is the selector value that requests the nearest
// future occurrence instead of naming one explicitly.
const OccurrenceSelectorAuto = "auto"

// SessionToken is the parsed form of the compound "<webinarId>|<selector>"
// token carried by join links.
type SessionToken struct {
	WebinarID          string
	OccurrenceSelector string // "", "auto", or a concrete occurrence ID
}

// ParseSessionToken splits a raw session token into its webinar ID and
// optional occurrence selector. The webinar ID must be non-empty; a token
// that fails this check is rejected before any network call is made.
func ParseSessionToken(raw string) (SessionToken, bool) {
	webinarID, selector, _ := strings.Cut(raw, "|")
	token := SessionToken{
		WebinarID:          strings.TrimSpace(webinarID),
		OccurrenceSelector: strings.TrimSpace(selector),
	}
	return token, token.WebinarID != ""
}

// AutoSelect reports whether the nearest future occurrence should be chosen
// instead of a named one.
func (t SessionToken) AutoSelect() bool {
	return t.OccurrenceSelector == "" || t.OccurrenceSelector == OccurrenceSelectorAuto
}
