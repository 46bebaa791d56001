// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect
// the output, so a change to either misses the cache:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(familyJSON), cache.LayoutKeyOpts{Primary: "ada"})
//
// [ScopedKeyer] prefixes every key to keep namespaces apart.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry type.
const (
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeGraph    = "graph"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// Cache is a byte store with per-entry expiry. A miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	GraphKey(contentHash string, opts GraphKeyOpts) string
	LayoutKey(familyHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the inputs besides file content that change a parsed
// family graph.
type GraphKeyOpts struct {
	Format string `json:"format"`
}

// LayoutKeyOpts are the layout inputs that change the result.
type LayoutKeyOpts struct {
	Primary              string  `json:"primary"`
	Year                 int     `json:"year"`
	Today                string  `json:"today"`
	MaxNodes             int     `json:"max_nodes"`
	RelatedMultiplier    float64 `json:"related"`
	GenerationMultiplier float64 `json:"generation"`
	ChildMultiplier      float64 `json:"child"`
	NodeWidth            float64 `json:"node_width"`
	NodeHeight           float64 `json:"node_height"`
	NodeSpacing          float64 `json:"node_spacing"`
	GroupSpacing         float64 `json:"group_spacing"`
	RowSpacing           float64 `json:"row_spacing"`
}

// ArtifactKeyOpts are the render inputs that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer hashes key options into fixed-length keys of the form
// "type:sha256".
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return hashKey(KeyTypeGraph, contentHash, opts)
}

func (DefaultKeyer) LayoutKey(familyHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, familyHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// WithTTL returns c with every Set using ttl instead of the caller's
// value. A ttl <= 0 returns c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &ttlCache{Cache: c, ttl: ttl}
}

type ttlCache struct {
	Cache
	ttl time.Duration
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}
