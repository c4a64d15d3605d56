// Package resultcache stores orientation results keyed by a digest of the
// input mesh and the tuning that produced them.
//
// Caches are explicit values handed to the pipeline by the caller; nothing
// in this package is global. Memory is for one process, SQLite persists
// across runs.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sync"
)

// RectEntry is a serialisable oriented rectangle.
type RectEntry struct {
	Angle       float64    `json:"angle"`
	Center      [2]float64 `json:"center"`
	HalfExtents [2]float64 `json:"half_extents"`
	Area        float64    `json:"area"`
}

// Entry is the cached part of an orientation result. Per-vertex data such
// as the wire mask is not stored.
type Entry struct {
	Angle           float64      `json:"angle"`
	Translation     [3]float64   `json:"translation"`
	Hull            [][2]float64 `json:"hull,omitempty"`
	Rect            RectEntry    `json:"rect"`
	Base            *RectEntry   `json:"base,omitempty"`
	WireCount       int          `json:"wire_count"`
	FullToBaseRatio float64      `json:"full_to_base_ratio"`
}

// Cache looks up and stores entries by key. Implementations must be safe
// for concurrent use by the batch workers.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
}

// KeyBuilder accumulates a SHA-256 digest over typed values. Every value is
// written in a fixed little-endian layout with a length prefix per call, so
// different splits of the same data produce different keys.
type KeyBuilder struct {
	h   hash.Hash
	buf [8]byte
}

// NewKeyBuilder returns an empty builder.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{h: sha256.New()}
}

func (b *KeyBuilder) length(n int) {
	binary.LittleEndian.PutUint64(b.buf[:], uint64(n))
	b.h.Write(b.buf[:])
}

// Float64s adds xs to the digest.
func (b *KeyBuilder) Float64s(xs ...float64) *KeyBuilder {
	b.length(len(xs))
	for _, x := range xs {
		binary.LittleEndian.PutUint64(b.buf[:], math.Float64bits(x))
		b.h.Write(b.buf[:])
	}
	return b
}

// Uint32s adds xs to the digest.
func (b *KeyBuilder) Uint32s(xs ...uint32) *KeyBuilder {
	b.length(len(xs))
	for _, x := range xs {
		binary.LittleEndian.PutUint32(b.buf[:4], x)
		b.h.Write(b.buf[:4])
	}
	return b
}

// String adds s to the digest.
func (b *KeyBuilder) String(s string) *KeyBuilder {
	b.length(len(s))
	b.h.Write([]byte(s))
	return b
}

// Sum returns the hex digest. The builder must not be used afterwards.
func (b *KeyBuilder) Sum() string {
	return hex.EncodeToString(b.h.Sum(nil))
}

// Memory is an in-process cache backed by a map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	hits    int
	misses  int
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

var _ Cache = (*Memory)(nil)

// Get returns the entry for key.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return e, ok, nil
}

// Put stores e under key, replacing any previous entry.
func (m *Memory) Put(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns the hit and miss counts since creation.
func (m *Memory) Stats() (hits, misses int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses
}
