// Package cache stores solved models so that re-solving an unchanged
// kitchen is free.
//
// Entries are opaque bytes with an expiry. Backends:
//
//   - [FileCache]: one JSON file per entry below a directory (CLI default)
//   - [RedisCache]: a Redis server, shared between API replicas
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the inputs that decide a
// solution; [ScopedKeyer] prefixes them to keep builds or tenants apart.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLSolution is how long a solved model stays cached.
const TTLSolution = 7 * 24 * time.Hour

// Keyer derives cache keys.
type Keyer interface {
	// SolutionKey identifies a solution of a document under the settings
	// that influence it.
	SolutionKey(documentHash string, opts SolutionKeyOpts) string
}

// SolutionKeyOpts are the solve settings that change the answer.
type SolutionKeyOpts struct {
	Engine   string   `json:"engine"`
	Families []string `json:"families"`
	Weights  any      `json:"weights"`
}

// DefaultKeyer builds "solution:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SolutionKey hashes the document hash together with the options.
func (DefaultKeyer) SolutionKey(documentHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", documentHash, opts)
}

// Hash returns the hex SHA-256 of data. Documents are keyed by the hash of
// their raw bytes, so reformatting a file invalidates its cached solutions.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<prefix>:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
