package db

import (
	"context"
	"errors"
	"time"

	"hindinews/pkg/domain"
)

// ErrDuplicate is returned by Insert when a record with the same source_url
// or slug already exists.
var ErrDuplicate = errors.New("duplicate article")

// Store is the article store the pipeline writes to. Implementations must be
// safe for concurrent use.
type Store interface {
	// Exists reports whether a record with this source_url is stored.
	Exists(ctx context.Context, sourceURL string) (bool, error)
	// Insert stores a new record; it never updates an existing one.
	Insert(ctx context.Context, rec domain.ArticleRecord) error
	// DeleteOlderThan removes records created before cutoff and returns how many.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// Lister is implemented by stores that can hand back every record, oldest
// first. Only the stores used as migration sources implement it.
type Lister interface {
	List(ctx context.Context) ([]domain.ArticleRecord, error)
}
