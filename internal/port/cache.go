package port

import (
	"context"

	"ordercheck/internal/domain"
)

// ExtractionCache stores extracted documents keyed by content hash.
// Entries are written once and never modified.
type ExtractionCache interface {
	Get(ctx context.Context, key string) (*domain.Document, bool, error)
	Put(ctx context.Context, key string, doc *domain.Document) error
}

// CacheLocker is implemented by caches that can serialize filling a key across processes.
type CacheLocker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}
