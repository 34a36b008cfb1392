// Package metadata is a small key/value store over the local "metadata"
// table. It holds the persisted session record, its sealing salt, login
// verification tickets and the UI language.
package metadata

import (
	"context"
)

// Repository is the key/value contract. Get returns (nil, nil) when the key
// is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
