package query

import (
	"regexp"
	"strconv"
	"strings"
)

// rule binds a pattern to the FilterSet field it sets. Rules run in
// declaration order against the lower-cased query, so a later rule
// targeting the same field deterministically overwrites an earlier one.
type rule struct {
	pattern *regexp.Regexp
	apply   func(m []string, f *FilterSet)
}

// rules is the fixed interpretation table. Each entry is independent and
// optional; text matching no rule is silently ignored.
//
// The first pattern matches the stem "palindrom" so that "palindrome",
// "palindromes" and "palindromic" all fire.
var rules = []rule{
	{
		pattern: regexp.MustCompile(`palindrom`),
		apply:   func(_ []string, f *FilterSet) { f.IsPalindrome = boolPtr(true) },
	},
	{
		pattern: regexp.MustCompile(`\b(?:single word|only one word|one word)\b`),
		apply:   func(_ []string, f *FilterSet) { f.WordCount = intPtr(1) },
	},
	{
		pattern: regexp.MustCompile(`\bexactly (\d+) words?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.WordCount, m[1], 0) },
	},
	{
		pattern: regexp.MustCompile(`\bat least (\d+) words?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MinWordCount, m[1], 0) },
	},
	{
		pattern: regexp.MustCompile(`\b(?:no more than|at most|no greater than) (\d+) words?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MaxWordCount, m[1], 0) },
	},
	{
		pattern: regexp.MustCompile(`\b(?:longer than|more than|greater than) (\d+) characters?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MinLength, m[1], 1) },
	},
	{
		pattern: regexp.MustCompile(`\bat least (\d+) characters?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MinLength, m[1], 0) },
	},
	{
		pattern: regexp.MustCompile(`\bshorter than (\d+) characters?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MaxLength, m[1], -1) },
	},
	{
		pattern: regexp.MustCompile(`\b(?:less than|under) (\d+) characters?\b`),
		apply:   func(m []string, f *FilterSet) { setNumber(&f.MaxLength, m[1], -1) },
	},
	{
		pattern: regexp.MustCompile(`\bexactly (\d+) characters?\b`),
		apply: func(m []string, f *FilterSet) {
			setNumber(&f.MinLength, m[1], 0)
			setNumber(&f.MaxLength, m[1], 0)
		},
	},
	{
		pattern: regexp.MustCompile(`\b(?:containing|contains|with) (?:the )?letter (\w)\b`),
		apply:   func(m []string, f *FilterSet) { f.ContainsCharacter = &m[1] },
	},
}

// Interpret extracts a FilterSet from a free-text query. Pure and
// deterministic; matching is case-insensitive and order-independent
// with respect to the query text.
func Interpret(text string) FilterSet {
	q := strings.ToLower(text)
	var f FilterSet
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(q); m != nil {
			r.apply(m, &f)
		}
	}
	return f
}

// setNumber parses a captured integer, applies delta and stores it.
// A capture too large for int leaves dst untouched, as if the rule had
// not matched.
func setNumber(dst **int, s string, delta int) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return
	}
	n += delta
	*dst = &n
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }
