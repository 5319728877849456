// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

// EmailSource records whether a resolved identity carries the contact's real
// email address or a synthesized alias.
type EmailSource string

const (
	EmailSourceReal  EmailSource = "real"
	EmailSourceAlias EmailSource = "alias"
)

// ResolvedIdentity is the final registrant payload assembled from the CRM
// contact, the caller's hints, and the email strategy. It exists only for
// the duration of one request.
type ResolvedIdentity struct {
	ContactID   string // empty on the guest path
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	EmailSource EmailSource
}
