// Package analysis derives textual properties from a string.
// Every function here is pure: same input, same output, no side effects.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Properties holds the derived metrics of a stored string.
//
// UniqueCharacters is counted over the normalized form (ASCII letters and
// digits only, lower-cased) so that it shares one definition with
// IsPalindrome rather than mixing raw and normalized views.
type Properties struct {
	Length           int
	IsPalindrome     bool
	UniqueCharacters int
	WordCount        int
	ContentHash      string
}

// Analyze computes all derived properties of text.
func Analyze(text string) Properties {
	norm := normalize(text)
	return Properties{
		Length:           utf8.RuneCountInString(text),
		IsPalindrome:     isPalindrome(norm),
		UniqueCharacters: uniqueBytes(norm),
		WordCount:        len(strings.Fields(text)),
		ContentHash:      Hash(text),
	}
}

// Hash returns the lowercase hex SHA-256 digest of the UTF-8 bytes of text.
// This is the canonical external identifier of a record.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Frequency maps each distinct character of text to its occurrence count.
// Raw and case-sensitive; computed only for creation responses, never stored.
func Frequency(text string) map[string]int {
	freq := make(map[string]int)
	for _, r := range text {
		freq[string(r)]++
	}
	return freq
}

// normalize keeps ASCII letters and digits, lower-cased. The result is a
// byte slice: anything surviving normalization is single-byte.
func normalize(text string) []byte {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		}
	}
	return out
}

// isPalindrome reports whether norm equals its own reversal.
// The empty normalized form is trivially a palindrome.
func isPalindrome(norm []byte) bool {
	for i, j := 0, len(norm)-1; i < j; i, j = i+1, j-1 {
		if norm[i] != norm[j] {
			return false
		}
	}
	return true
}

func uniqueBytes(norm []byte) int {
	var seen [256]bool
	n := 0
	for _, c := range norm {
		if !seen[c] {
			seen[c] = true
			n++
		}
	}
	return n
}
