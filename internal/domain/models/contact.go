// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

// CustomFieldValue is one custom attribute value attached to a CRM contact.
// The value shape varies by account schema, so it is kept untyped until the
// CRM client coerces it to a string.
type CustomFieldValue struct {
	ID    string
	Value any
}

// Contact is a CRM contact record. The CRM owns it; this service only reads
// it during a single join-resolution request.
type Contact struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	CustomValues []CustomFieldValue
}
