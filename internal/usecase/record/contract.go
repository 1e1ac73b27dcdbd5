package record

import (
	"context"

	"github.com/kailas-cloud/stringdex/internal/domain/query"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
)

// Repository defines the storage contract for analyzed records.
// Insert must be atomic with respect to the duplicate check.
type Repository interface {
	Insert(ctx context.Context, rec domrec.Record) error
	GetByValue(ctx context.Context, value string) (domrec.Record, error)
	List(ctx context.Context, f query.FilterSet) ([]domrec.Record, error)
	DeleteByValue(ctx context.Context, value string) error
	DeleteAll(ctx context.Context) (deleted int, err error)
}
