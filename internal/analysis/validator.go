package analysis

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	DefaultMinPromptLength = 10
	DefaultMaxPromptLength = 5000

	// minWords guards against inputs like "hi" padded with spaces; a prompt
	// needs at least a verb and an object to be analyzable.
	minWords = 3

	// maxRunLength is the longest run of one repeated character tolerated
	// before the input is treated as spam.
	maxRunLength = 10
)

// Validator sanitizes and bounds-checks raw prompt text before any analysis
// proceeds. Validate is a pure function of its input.
type Validator struct {
	MinLength int
	MaxLength int
}

func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxPromptLength
	}
	return &Validator{MinLength: DefaultMinPromptLength, MaxLength: maxLength}
}

// Validate returns the trimmed prompt text, or a *ValidationError describing
// the first rule the input breaks. Length limits are checked against the raw
// input for the maximum (so callers cannot smuggle oversized payloads behind
// whitespace) and the trimmed input for the minimum.
func (v *Validator) Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Reason: "empty prompt not allowed"}
	}
	if len(raw) > v.MaxLength {
		return "", &ValidationError{Reason: fmt.Sprintf("prompt too long, maximum %d characters allowed", v.MaxLength)}
	}
	if len(trimmed) < v.MinLength {
		return "", &ValidationError{Reason: fmt.Sprintf("prompt too short, minimum %d characters required", v.MinLength)}
	}
	if len(strings.Fields(trimmed)) < minWords {
		return "", &ValidationError{Reason: fmt.Sprintf("prompt should contain at least %d words", minWords)}
	}
	if containsDisallowedControl(trimmed) {
		return "", &ValidationError{Reason: "prompt contains disallowed control characters"}
	}
	if hasExcessiveRepetition(trimmed) {
		return "", &ValidationError{Reason: "excessive character repetition detected"}
	}
	return trimmed, nil
}

// containsDisallowedControl reports control characters other than the
// whitespace a multi-line prompt legitimately carries.
func containsDisallowedControl(s string) bool {
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// hasExcessiveRepetition detects runs of more than maxRunLength identical
// runes. Go's regexp has no backreferences, so this is a plain scan.
func hasExcessiveRepetition(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run > maxRunLength {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
