// Package query holds the retrieval filter model and the heuristic
// natural-language query interpreter.
package query

import (
	"strings"

	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
)

// FilterSet is a conjunction of optional record constraints.
// Nil fields do not constrain retrieval.
type FilterSet struct {
	IsPalindrome      *bool   `json:"is_palindrome"`
	MinLength         *int    `json:"min_length"`
	MaxLength         *int    `json:"max_length"`
	WordCount         *int    `json:"word_count"`
	MinWordCount      *int    `json:"min_word_count"`
	MaxWordCount      *int    `json:"max_word_count"`
	ContainsCharacter *string `json:"contains_character"`
}

// IsZero reports whether no field is set.
func (f FilterSet) IsZero() bool {
	return f.IsPalindrome == nil &&
		f.MinLength == nil && f.MaxLength == nil &&
		f.WordCount == nil && f.MinWordCount == nil && f.MaxWordCount == nil &&
		f.ContainsCharacter == nil
}

// Matches reports whether a record with the given value and properties
// satisfies every set constraint. Bounds are inclusive; the character
// containment test is case-insensitive over the raw value.
func (f FilterSet) Matches(value string, p analysis.Properties) bool {
	if f.IsPalindrome != nil && p.IsPalindrome != *f.IsPalindrome {
		return false
	}
	if f.MinLength != nil && p.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && p.Length > *f.MaxLength {
		return false
	}
	if f.WordCount != nil && p.WordCount != *f.WordCount {
		return false
	}
	if f.MinWordCount != nil && p.WordCount < *f.MinWordCount {
		return false
	}
	if f.MaxWordCount != nil && p.WordCount > *f.MaxWordCount {
		return false
	}
	if f.ContainsCharacter != nil &&
		!strings.Contains(strings.ToLower(value), strings.ToLower(*f.ContainsCharacter)) {
		return false
	}
	return true
}
