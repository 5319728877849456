// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("852", 8)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"bare local number", "91234567", "+85291234567"},
		{"local number with spaces", "9123 4567", "+85291234567"},
		{"local number with dashes", "9123-4567", "+85291234567"},
		{"local number with parentheses", "(9123) 4567", "+85291234567"},
		{"e164", "+85291234567", "+85291234567"},
		{"e164 with spaces", "+852 9123 4567", "+85291234567"},
		{"double zero prefix", "0085291234567", "+85291234567"},
		{"country code without plus", "85291234567", "+85291234567"},
		{"foreign e164", "+14155552671", "+14155552671"},
		{"invalid local-length number still canonicalizes", "12345678", "+85212345678"},
		{"invalid number with plus matches bare form", "+852 1234 5678", "+85212345678"},
		{"only punctuation", "()-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Normalize_FormattingInvariance(t *testing.T) {
	n := NewNormalizer("852", 8)

	// All formatting variants of the same number must collapse to one form.
	variants := []string{
		"91234567",
		"9123 4567",
		"9123-4567",
		"+852 9123 4567",
		"+85291234567",
		"0085291234567",
		"85291234567",
	}

	canonical := n.Normalize(variants[0])
	for _, v := range variants {
		assert.Equal(t, canonical, n.Normalize(v), "input %q", v)
	}
}

func TestNormalizer_Variants(t *testing.T) {
	n := NewNormalizer("852", 8)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "local number generates all search forms",
			input:    "91234567",
			expected: []string{"+85291234567", "85291234567", "91234567"},
		},
		{
			name:     "e164 input",
			input:    "+85291234567",
			expected: []string{"+85291234567", "85291234567"},
		},
		{
			name:     "canonical form is always first",
			input:    "9123 4567",
			expected: []string{"+85291234567", "85291234567", "91234567"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Variants(tt.input))
		})
	}
}

func TestNormalizer_OtherRegion(t *testing.T) {
	// A Dutch home region with 9-digit local numbers.
	n := NewNormalizer("31", 9)
	assert.Equal(t, "+31612345678", n.Normalize("0612345678"))
	assert.Equal(t, "+31612345678", n.Normalize("+31 6 12345678"))
}
