// Package prompt validates player prompts and estimates their size.
package prompt

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Default limits on the trimmed prompt length, in characters.
const (
	DefaultMinLength = 10
	DefaultMaxLength = 2000
)

// Limits bound an accepted prompt.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinLength, Max: DefaultMaxLength}
}

// ValidationError reports a prompt outside the limits.
type ValidationError struct {
	Length int
	Limits Limits
}

func (e *ValidationError) Error() string {
	if e.Length < e.Limits.Min {
		return fmt.Sprintf("prompt is too short: %d characters, need at least %d", e.Length, e.Limits.Min)
	}
	return fmt.Sprintf("prompt is too long: %d characters, limit is %d", e.Length, e.Limits.Max)
}

// Validate checks the trimmed length of text. A zero Max disables the upper
// bound.
func Validate(text string, l Limits) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < l.Min || (l.Max > 0 && n > l.Max) {
		return &ValidationError{Length: n, Limits: l}
	}
	return nil
}

// EstimateTokens approximates the token count as 1.3 tokens per word.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}

// Stats summarizes a draft for live display.
type Stats struct {
	Chars  int `json:"chars"`
	Words  int `json:"words"`
	Tokens int `json:"tokens"`
}

// Measure returns Stats for text.
func Measure(text string) Stats {
	return Stats{
		Chars:  utf8.RuneCountInString(text),
		Words:  len(strings.Fields(text)),
		Tokens: EstimateTokens(text),
	}
}
