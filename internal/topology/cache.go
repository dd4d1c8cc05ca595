package topology

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/ziadkadry99/netviz/internal/category"
)

// Cache memoizes the last generated topology. It is keyed on the category
// store version and a fingerprint of the list contents, so an unchanged list
// never triggers a regeneration.
type Cache struct {
	layout Layout

	mu          sync.Mutex
	version     uint64
	fingerprint string
	topo        *Topology
	hits        uint64
	misses      uint64

	// OnMiss, when set, is called after each regeneration.
	OnMiss func()
	// OnHit, when set, is called when a cached topology is returned.
	OnHit func()
}

// NewCache creates an empty cache for the given layout.
func NewCache(layout Layout) *Cache {
	return &Cache{layout: layout}
}

// Get returns the topology for cats at the given store version.
func (c *Cache) Get(version uint64, cats []category.Category) *Topology {
	fp := Fingerprint(cats)

	c.mu.Lock()
	if c.topo != nil && c.version == version && c.fingerprint == fp {
		c.hits++
		t := c.topo
		c.mu.Unlock()
		if c.OnHit != nil {
			c.OnHit()
		}
		return t
	}
	t := c.layout.Generate(cats)
	c.topo, c.version, c.fingerprint = t, version, fp
	c.misses++
	c.mu.Unlock()

	if c.OnMiss != nil {
		c.OnMiss()
	}
	return t
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Fingerprint hashes the parts of cats that affect the layout.
func Fingerprint(cats []category.Category) string {
	h := sha256.New()
	for _, c := range cats {
		h.Write([]byte(c.ID))
		h.Write([]byte{0})
		h.Write([]byte(c.Label))
		h.Write([]byte{0})
		h.Write([]byte(c.Color))
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}
