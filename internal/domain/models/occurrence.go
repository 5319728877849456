// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// Occurrence is one scheduled instance of a recurring webinar as reported by
// the provider. It is used only within one resolution request.
type Occurrence struct {
	WebinarID    string
	OccurrenceID string
	StartsAt     time.Time
}

// Label renders the start instant in a short human-readable form for
// session-listing responses, e.g. "Tue, Sep 1, 7:30 PM".
func (o Occurrence) Label() string {
	return o.StartsAt.Format("Mon, Jan 2, 3:04 PM")
}
