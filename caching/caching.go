package caching

import (
	"context"
	"time"
)

// CachingService is a string key/value cache. Get returns "" and no error on a miss.
type CachingService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
