// Package cache provides byte-level caching for layouts, rendered artifacts
// and generated concept graphs.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the API server
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// Keys are produced by a [Keyer] so every entry point (CLI, API) derives the
// same key for the same input. Keys hash their options, which keeps them
// short and safe to use as file names or Redis keys.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok=false and a nil error; errors are reserved for
// backend failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live per entry kind. Layouts and artifacts are pure
// functions of their inputs, so they can live long; generated graphs are
// kept shorter so a topic is eventually regenerated.
const (
	TTLLayout     = 30 * 24 * time.Hour
	TTLArtifact   = 30 * 24 * time.Hour
	TTLGeneration = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeLayout     = "layout"
	KeyTypeArtifact   = "artifact"
	KeyTypeGeneration = "generation"
)
