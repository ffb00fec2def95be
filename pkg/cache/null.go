package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache and the "none" backend: every frame is
// rendered fresh and no encoded bytes are kept.
type NullCache struct{}

// NewNullCache returns a frame cache that always misses.
func NewNullCache() Cache {
	return &NullCache{}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the encoded frame.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }
