// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Hello World", expected: "hello-world"},
		{name: "accents", input: "Crème Brûlée", expected: "creme-brulee"},
		{name: "vietnamese", input: "Ngô Thị Hải Yến", expected: "ngo-thi-hai-yen"},
		{name: "punctuation", input: "What's up?!", expected: "what-s-up"},
		{name: "multiple separators", input: "a  --  b", expected: "a-b"},
		{name: "leading trailing", input: "  -hello-  ", expected: "hello"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!!!", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, From(testCase.input))
		})
	}
}

func TestCompact(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "full name", input: "AdaLovelace", expected: "adalovelace"},
		{name: "with space", input: "Ada Lovelace", expected: "adalovelace"},
		{name: "accents and hyphens", input: "Hải-Yến", expected: "haiyen"},
		{name: "empty", input: "", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Compact(testCase.input))
		})
	}
}
