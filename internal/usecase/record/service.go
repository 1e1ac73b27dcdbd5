// Package record implements the string CRUD use cases.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
	"github.com/kailas-cloud/stringdex/internal/domain/query"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
)

// Service handles analyzed-record CRUD and filtered retrieval.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create analyzes value and stores it. Returns the record and its
// creation-time character frequency map. The frequency map is derived
// for the response only and never persisted.
func (s *Service) Create(ctx context.Context, value string) (domrec.Record, map[string]int, error) {
	rec, err := domrec.New(value, s.now())
	if err != nil {
		return domrec.Record{}, nil, err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return domrec.Record{}, nil, fmt.Errorf("insert record: %w", err)
	}

	return rec, analysis.Frequency(value), nil
}

// Get returns the record for an exact value.
func (s *Service) Get(ctx context.Context, value string) (domrec.Record, error) {
	rec, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns all records satisfying f.
func (s *Service) List(ctx context.Context, f query.FilterSet) ([]domrec.Record, error) {
	recs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

// SearchNaturalLanguage interprets a free-text query into a filter and
// applies it. The interpreted filter is returned alongside the results
// so callers can echo it.
func (s *Service) SearchNaturalLanguage(ctx context.Context, text string) (
	query.FilterSet, []domrec.Record, error,
) {
	f := query.Interpret(text)
	recs, err := s.repo.List(ctx, f)
	if err != nil {
		return query.FilterSet{}, nil, fmt.Errorf("list records: %w", err)
	}
	return f, recs, nil
}

// Delete removes the record for an exact value.
func (s *Service) Delete(ctx context.Context, value string) error {
	if err := s.repo.DeleteByValue(ctx, value); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteAll removes every record and returns how many were deleted.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all records: %w", err)
	}
	return n, nil
}
