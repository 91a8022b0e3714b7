package extract

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"ordercheck/internal/domain"
	"ordercheck/internal/port"
)

// CachedExtractor serves extractions from a content-addressed cache. Cache failures
// degrade to a direct extraction and never fail the run.
type CachedExtractor struct {
	inner    port.TextExtractor
	cache    port.ExtractionCache
	maxPages int
	log      *logrus.Logger
}

// NewCached wraps inner with cache. maxPages must be the page limit inner reads
// under, so a document read under one limit is never served under another.
func NewCached(inner port.TextExtractor, cache port.ExtractionCache, maxPages int, log *logrus.Logger) *CachedExtractor {
	return &CachedExtractor{inner: inner, cache: cache, maxPages: maxPages, log: log}
}

var _ port.TextExtractor = (*CachedExtractor)(nil)

// CacheKey identifies an extraction by its bytes, declared format and page limit.
func CacheKey(input port.ExtractInput, maxPages int) string {
	return "extract:" + string(input.Format) + ":p" + strconv.Itoa(maxPages) + ":" + ContentHash(input.Data)
}

func (c *CachedExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.Document, error) {
	key := CacheKey(input, c.maxPages)
	if doc, ok := c.lookup(ctx, key, input); ok {
		return doc, nil
	}

	if locker, ok := c.cache.(port.CacheLocker); ok {
		release, err := locker.Obtain(ctx, key)
		if err != nil {
			c.log.WithError(err).WithField("key", key).Debug("extract.CachedExtractor: lock not obtained, extracting without cache")
			return c.inner.Extract(ctx, input)
		}
		defer release()

		// Another process may have filled the key while we waited.
		if doc, ok := c.lookup(ctx, key, input); ok {
			return doc, nil
		}
	}

	doc, err := c.inner.Extract(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ctx, key, doc); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("extract.CachedExtractor: cache write failed")
	}
	return doc, nil
}

// lookup returns a cached document relabelled for this input. Role and name are not
// part of the key since identical bytes extract identically.
func (c *CachedExtractor) lookup(ctx context.Context, key string, input port.ExtractInput) (*domain.Document, bool) {
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("extract.CachedExtractor: cache read failed")
		return nil, false
	}
	if !ok || !allowedFor(input.Role, cached.Format) {
		return nil, false
	}
	doc := *cached
	doc.Role = input.Role
	doc.Name = input.Name
	doc.Lines = make([]domain.RawLine, len(cached.Lines))
	copy(doc.Lines, cached.Lines)
	return &doc, true
}
