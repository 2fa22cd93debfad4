package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_AcceptsAndTrims(t *testing.T) {
	v := NewValidator(5000)
	got, err := v.Validate("  Write a detailed summary of Go generics.  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Write a detailed summary of Go generics." {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestValidator_Rejections(t *testing.T) {
	v := NewValidator(100)

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"too short", "hi there"},
		{"too long", strings.Repeat("write code ", 20)},
		{"too few words", "supercalifragilistic"},
		{"control characters", "write a summary \x00 of this"},
		{"repetition spam", "please write aaaaaaaaaaaaaaa summary"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.input)
			if err == nil {
				t.Fatalf("expected rejection for %q", tc.input)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestValidator_AllowsMultilinePrompts(t *testing.T) {
	v := NewValidator(5000)
	if _, err := v.Validate("Write a report.\n\tInclude:\r\n- one section"); err != nil {
		t.Fatalf("tabs and newlines should be allowed: %v", err)
	}
}
