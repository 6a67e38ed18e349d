package remote

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/oracle"
)

// snapshotQuery answers oracle.WorldQuery from a request's Surroundings.
// Radii beyond the gathered radius see only what was gathered.
type snapshotQuery struct {
	self components.AgentID
	ctx  *Surroundings
}

var _ oracle.WorldQuery = snapshotQuery{}

func (q snapshotQuery) NearbyAgents(maxCount int, maxRadius float32, species *components.Species) []components.AgentID {
	var out []components.AgentID
	for _, n := range q.ctx.Neighbors {
		if len(out) >= maxCount {
			break
		}
		if species != nil && n.Species != *species {
			continue
		}
		out = append(out, n.ID)
	}
	return out
}

func (q snapshotQuery) NearbyResources(kind oracle.ResourceKind, maxRadius float32) []oracle.ResourceLocation {
	var out []oracle.ResourceLocation
	for _, l := range q.ctx.resources(kind) {
		if l.Distance > maxRadius {
			break
		}
		out = append(out, l)
	}
	return out
}

// CanInteract only knows about pairs that include the deciding agent, and
// uses the reach the client measured rather than rng.
func (q snapshotQuery) CanInteract(a, b components.AgentID, rng float32) bool {
	other := b
	switch q.self {
	case a:
	case b:
		other = a
	default:
		return false
	}
	for _, n := range q.ctx.Neighbors {
		if n.ID == other {
			return n.InReach
		}
	}
	return false
}
