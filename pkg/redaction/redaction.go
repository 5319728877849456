// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package redaction masks personally identifiable values before they reach
// logs.
package redaction

import "strings"

// RedactEmail masks the local part of an email address, keeping the first
// character and the domain so log lines stay correlatable.
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

// RedactPhone masks a phone number, keeping the last four digits.
func RedactPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) <= 4 {
		return "***"
	}
	return "***" + phone[len(phone)-4:]
}
