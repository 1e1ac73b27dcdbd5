package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
)

// storedRecord is the persisted JSON shape of a record.
type storedRecord struct {
	Value            string    `json:"value"`
	Length           int       `json:"length"`
	IsPalindrome     bool      `json:"is_palindrome"`
	UniqueCharacters int       `json:"unique_characters"`
	WordCount        int       `json:"word_count"`
	ContentHash      string    `json:"content_hash"`
	CreatedAt        time.Time `json:"created_at"`
}

func marshalRecord(rec domrec.Record) ([]byte, error) {
	p := rec.Properties()
	return json.Marshal(storedRecord{
		Value:            rec.Value(),
		Length:           p.Length,
		IsPalindrome:     p.IsPalindrome,
		UniqueCharacters: p.UniqueCharacters,
		WordCount:        p.WordCount,
		ContentHash:      p.ContentHash,
		CreatedAt:        rec.CreatedAt(),
	})
}

func unmarshalRecord(raw []byte) (domrec.Record, error) {
	var sr storedRecord
	if err := json.Unmarshal(raw, &sr); err != nil {
		return domrec.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	props := analysis.Properties{
		Length:           sr.Length,
		IsPalindrome:     sr.IsPalindrome,
		UniqueCharacters: sr.UniqueCharacters,
		WordCount:        sr.WordCount,
		ContentHash:      sr.ContentHash,
	}
	return domrec.Reconstruct(sr.Value, props, sr.CreatedAt), nil
}
