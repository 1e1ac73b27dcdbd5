// Package record defines the analyzed string record.
package record

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/stringdex/internal/domain"
	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
)

// MaxValueBytes caps the UTF-8 encoded size of a stored value at 1 MiB.
const MaxValueBytes = 1 << 20

// Record is an analyzed string. Immutable once created: every derived
// field is a pure function of the value, and the content hash doubles as
// the record's external identifier.
type Record struct {
	value      string
	properties analysis.Properties
	createdAt  time.Time
}

// New validates value, analyzes it and stamps the creation time.
func New(value string, now time.Time) (Record, error) {
	if value == "" {
		return Record{}, domain.ErrEmptyValue
	}
	if len(value) > MaxValueBytes {
		return Record{}, fmt.Errorf("%d bytes: %w", len(value), domain.ErrValueTooLarge)
	}
	return Record{
		value:      value,
		properties: analysis.Analyze(value),
		createdAt:  now.UTC(),
	}, nil
}

// Reconstruct rebuilds a record from storage without re-validating.
func Reconstruct(value string, properties analysis.Properties, createdAt time.Time) Record {
	return Record{value: value, properties: properties, createdAt: createdAt}
}

// Value returns the original string.
func (r Record) Value() string { return r.value }

// Properties returns the derived metrics.
func (r Record) Properties() analysis.Properties { return r.properties }

// Hash returns the content hash, the record's external identifier.
func (r Record) Hash() string { return r.properties.ContentHash }

// CreatedAt returns the insertion timestamp.
func (r Record) CreatedAt() time.Time { return r.createdAt }
