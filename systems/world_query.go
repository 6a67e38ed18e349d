package systems

import (
	"sort"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
)

// nearbyResourceLimit caps NearbyResources results.
const nearbyResourceLimit = 16

// agentQuery is the read-only world view bound to one deciding agent.
type agentQuery struct {
	env       *Env
	sp        *config.SpeciesDerived
	self      components.AgentID
	x, y      float32
	hits      []ResourceHit
	neighbors []Neighbor
}

func (q *agentQuery) bind(env *Env, a AgentRef) {
	q.env = env
	q.sp = env.species(a.Org.Species)
	q.self = a.Org.ID
	q.x, q.y = a.Pos.X, a.Pos.Y
}

func (q *agentQuery) unbind() {
	q.env = nil
	q.sp = nil
}

// nearest returns live agents within maxRadius, nearest first, ties by ID.
func (q *agentQuery) nearest(maxRadius float32, species *components.Species) []Neighbor {
	q.neighbors = q.env.Spatial.QueryRadiusInto(q.neighbors[:0], q.x, q.y, maxRadius, q.self)
	kept := q.neighbors[:0]
	for _, n := range q.neighbors {
		if species != nil && n.Species != *species {
			continue
		}
		if q.env.Agents != nil && q.env.Agents.Doomed(n.ID) {
			continue
		}
		kept = append(kept, n)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].DistSq != kept[j].DistSq {
			return kept[i].DistSq < kept[j].DistSq
		}
		return kept[i].ID < kept[j].ID
	})
	q.neighbors = kept
	return kept
}

// NearbyAgents implements oracle.WorldQuery.
func (q *agentQuery) NearbyAgents(maxCount int, maxRadius float32, species *components.Species) []components.AgentID {
	if q.env == nil || maxCount <= 0 {
		return nil
	}
	near := q.nearest(maxRadius, species)
	out := make([]components.AgentID, 0, min(maxCount, len(near)))
	for _, n := range near {
		if len(out) == maxCount {
			break
		}
		out = append(out, n.ID)
	}
	return out
}

// NearbyResources implements oracle.WorldQuery. Prey resolves to live agents
// of the caller's prey species.
func (q *agentQuery) NearbyResources(kind oracle.ResourceKind, maxRadius float32) []oracle.ResourceLocation {
	if q.env == nil {
		return nil
	}
	var out []oracle.ResourceLocation
	if kind == components.ResourcePrey {
		if !q.sp.HasPrey {
			return nil
		}
		prey := q.sp.Prey
		for _, n := range q.nearest(maxRadius, &prey) {
			if len(out) == nearbyResourceLimit {
				break
			}
			out = append(out, oracle.ResourceLocation{X: q.x + n.DX, Y: q.y + n.DY, Distance: sqrtf(n.DistSq)})
		}
		return out
	}
	q.hits = q.env.Resources.FindNearestInto(q.hits, q.x, q.y, kind, nearbyResourceLimit, maxRadius)
	for _, h := range q.hits {
		out = append(out, oracle.ResourceLocation{X: h.X, Y: h.Y, Distance: h.Distance})
	}
	return out
}

// CanInteract implements oracle.WorldQuery.
func (q *agentQuery) CanInteract(a, b components.AgentID, rng float32) bool {
	if q.env == nil || q.env.Agents == nil {
		return false
	}
	ax, ay, _, ok := q.env.Agents.Locate(a)
	if !ok {
		return false
	}
	bx, by, _, ok := q.env.Agents.Locate(b)
	if !ok {
		return false
	}
	return distanceSq(ax, ay, bx, by) <= rng*rng
}
