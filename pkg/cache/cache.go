// Package cache provides the byte cache used to memoize chart payloads.
//
// Row and column payloads are pure functions of a measurement set, a genomic
// window and the query options, so their JSON encodings can be cached across
// composer instances and, with a persistent backend, across runs.
//
// # Backends
//
//   - [NullCache]: no-op, caching disabled
//   - [FileCache]: files under a directory, for CLI use
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: document store with a TTL index
//
// # Keys
//
// Keys are built by a [Keyer] so that deployments can namespace them (see
// [ScopedKeyer]).
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/genomechart/pkg/genomics"
)

// DefaultTTL is the lifetime of cached payloads when none is configured.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Payload parts.
const (
	PartRows = "rows"
	PartCols = "cols"
)

// PayloadKeyOpts are the query options that influence a cached payload.
type PayloadKeyOpts struct {
	Part   string            `json:"part"`
	Filter map[string]string `json:"filter,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PayloadKey returns the key of one payload part of a measurement set
	// queried over w.
	PayloadKey(setID string, w genomics.Window, opts PayloadKeyOpts) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PayloadKey returns "payload:<sha256>" over the set ID, window and options.
func (DefaultKeyer) PayloadKey(setID string, w genomics.Window, opts PayloadKeyOpts) string {
	return hashKey("payload", setID, w, opts)
}
