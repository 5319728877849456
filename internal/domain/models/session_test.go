// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSessionToken(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantOK       bool
		wantWebinar  string
		wantSelector string
		wantAuto     bool
	}{
		{"webinar only", "123", true, "123", "", true},
		{"explicit occurrence", "123|occ-9", true, "123", "occ-9", false},
		{"auto selector", "123|auto", true, "123", "auto", true},
		{"whitespace trimmed", " 123 | occ-9 ", true, "123", "occ-9", false},
		{"missing webinar id", "|occ-9", false, "", "occ-9", false},
		{"empty", "", false, "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, ok := ParseSessionToken(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantWebinar, token.WebinarID)
			assert.Equal(t, tc.wantSelector, token.OccurrenceSelector)
			if ok {
				assert.Equal(t, tc.wantAuto, token.AutoSelect())
			}
		})
	}
}
