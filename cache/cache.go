// Package cache is the URL-keyed full-page cache for feed pages. Mutations
// never invalidate it: a newly created post shows up once the entry
// expires, or after an explicit Clear. That staleness window is deliberate.
package cache

import "context"

type PageCache interface {
	// Get returns the cached page body for the key and whether it was
	// present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	// Clear drops every cached page. For operators and tests only.
	Clear(ctx context.Context) error
}
