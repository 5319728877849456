// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package redaction

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"normal email", "justin@example.com", "j***@example.com"},
		{"single char local", "a@b.co", "a***@b.co"},
		{"no at sign", "not-an-email", "***"},
		{"empty local part", "@example.com", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactEmail(tt.input); got != tt.expected {
				t.Errorf("RedactEmail(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRedactPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"full number", "+85291234567", "***4567"},
		{"short number", "123", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactPhone(tt.input); got != tt.expected {
				t.Errorf("RedactPhone(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
