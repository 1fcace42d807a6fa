// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyboard/tallyboard/pkg/slug"
)

/*
TestFrom verifies that category names of every spelling collapse into one
ranking bucket.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "coding", "coding"},
		{"spaces", "Deep Work", "deep-work"},
		{"already_slugged", "deep-work", "deep-work"},
		{"accents", "Séance Café", "seance-cafe"},
		{"punctuation", "C++ / Systems!", "c-systems"},
		{"multiple_separators", "a  --  b", "a-b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
