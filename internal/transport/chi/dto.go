package chi

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/stringdex/internal/domain"
	"github.com/kailas-cloud/stringdex/internal/domain/query"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
)

type errorResponse struct {
	Error string `json:"error"`
}

type propertiesPayload struct {
	Length           int    `json:"length"`
	IsPalindrome     bool   `json:"is_palindrome"`
	UniqueCharacters int    `json:"unique_characters"`
	WordCount        int    `json:"word_count"`
	ContentHash      string `json:"content_hash"`
}

// recordResponse is the canonical record shape: the content hash doubles
// as the id.
type recordResponse struct {
	ID         string            `json:"id"`
	Value      string            `json:"value"`
	Properties propertiesPayload `json:"properties"`
	CreatedAt  time.Time         `json:"created_at"`
}

// createResponse extends the canonical shape with the creation-only
// character frequency map inside properties.
type createResponse struct {
	ID         string                  `json:"id"`
	Value      string                  `json:"value"`
	Properties createPropertiesPayload `json:"properties"`
	CreatedAt  time.Time               `json:"created_at"`
}

type createPropertiesPayload struct {
	propertiesPayload
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

type listResponse struct {
	Data           []recordResponse `json:"data"`
	Count          int              `json:"count"`
	FiltersApplied query.FilterSet  `json:"filters_applied"`
}

type interpretedQuery struct {
	Original      string          `json:"original"`
	ParsedFilters query.FilterSet `json:"parsed_filters"`
}

type naturalLanguageResponse struct {
	Data             []recordResponse `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery interpretedQuery `json:"interpreted_query"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToResponse(rec domrec.Record) recordResponse {
	p := rec.Properties()
	return recordResponse{
		ID:    rec.Hash(),
		Value: rec.Value(),
		Properties: propertiesPayload{
			Length:           p.Length,
			IsPalindrome:     p.IsPalindrome,
			UniqueCharacters: p.UniqueCharacters,
			WordCount:        p.WordCount,
			ContentHash:      p.ContentHash,
		},
		CreatedAt: rec.CreatedAt(),
	}
}

func createResponseFrom(rec domrec.Record, freq map[string]int) createResponse {
	base := recordToResponse(rec)
	return createResponse{
		ID:    base.ID,
		Value: base.Value,
		Properties: createPropertiesPayload{
			propertiesPayload:     base.Properties,
			CharacterFrequencyMap: freq,
		},
		CreatedAt: base.CreatedAt,
	}
}

func recordsToResponses(recs []domrec.Record) []recordResponse {
	out := make([]recordResponse, len(recs))
	for i, rec := range recs {
		out[i] = recordToResponse(rec)
	}
	return out
}

// parseFilters builds a FilterSet from query parameters. Parameters that
// fail to parse are a client error, never silently ignored: a broken
// filter must not widen the result set.
func parseFilters(params url.Values) (query.FilterSet, error) {
	var f query.FilterSet

	if raw := params.Get("is_palindrome"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return query.FilterSet{}, filterErr("is_palindrome", raw)
		}
		f.IsPalindrome = &b
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_length", &f.MinLength},
		{"max_length", &f.MaxLength},
		{"word_count", &f.WordCount},
		{"min_word_count", &f.MinWordCount},
		{"max_word_count", &f.MaxWordCount},
	} {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.FilterSet{}, filterErr(p.name, raw)
		}
		*p.dst = &n
	}

	if raw := params.Get("contains_character"); raw != "" {
		if utf8.RuneCountInString(raw) != 1 {
			return query.FilterSet{}, filterErr("contains_character", raw)
		}
		f.ContainsCharacter = &raw
	}

	return f, nil
}

func filterErr(name, raw string) error {
	return fmt.Errorf("%w: %s=%q", domain.ErrInvalidFilter, name, raw)
}

func intToString(n int) string {
	return strconv.Itoa(n)
}
