package systems

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/oracle"
)

// CacheEntry is the last oracle decision for one agent.
type CacheEntry struct {
	Intent oracle.Intent // urgency is the terrain-adjusted value
	Prey   components.AgentID
	Needs  components.Needs
	Energy float32
	Tick   int64
}

// DecisionCache holds one lazily created entry per agent.
type DecisionCache struct {
	entries map[components.AgentID]CacheEntry
}

// NewDecisionCache creates an empty cache.
func NewDecisionCache() *DecisionCache {
	return &DecisionCache{entries: make(map[components.AgentID]CacheEntry)}
}

// Get returns the entry for id.
func (c *DecisionCache) Get(id components.AgentID) (CacheEntry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Put stores the entry for id.
func (c *DecisionCache) Put(id components.AgentID, e CacheEntry) {
	c.entries[id] = e
}

// Forget drops the entry for id. It is safe to call for unknown IDs.
func (c *DecisionCache) Forget(id components.AgentID) {
	delete(c.entries, id)
}

// Len returns the number of cached entries.
func (c *DecisionCache) Len() int { return len(c.entries) }

// needsMoved reports whether any need differs from the snapshot by more than delta.
func needsMoved(now, then *components.Needs, delta float32) bool {
	return absf(now.Hunger-then.Hunger) > delta ||
		absf(now.Thirst-then.Thirst) > delta ||
		absf(now.Fatigue-then.Fatigue) > delta
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
