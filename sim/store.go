package sim

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

// Store keeps agent components in an ark world and maps stable agent IDs to
// entities.
type Store struct {
	world *ecs.World

	// Entity mapper and filter over the full component set
	mapper *ecs.Map8[
		components.Organism,
		components.Position,
		components.Velocity,
		components.Needs,
		components.Energy,
		components.Age,
		components.Behavior,
		components.Vitals,
	]
	filter *ecs.Filter8[
		components.Organism,
		components.Position,
		components.Velocity,
		components.Needs,
		components.Energy,
		components.Age,
		components.Behavior,
		components.Vitals,
	]

	// Individual component mappers for lookups
	orgMap *ecs.Map1[components.Organism]
	posMap *ecs.Map1[components.Position]
	vitMap *ecs.Map1[components.Vitals]

	entities map[components.AgentID]ecs.Entity
}

// agentData is the initial component set of a new agent.
type agentData struct {
	org    components.Organism
	pos    components.Position
	vel    components.Velocity
	needs  components.Needs
	energy components.Energy
	age    components.Age
	beh    components.Behavior
	vit    components.Vitals
}

// NewStore creates an empty store.
func NewStore() *Store {
	world := ecs.NewWorld()
	return &Store{
		world: world,
		mapper: ecs.NewMap8[
			components.Organism,
			components.Position,
			components.Velocity,
			components.Needs,
			components.Energy,
			components.Age,
			components.Behavior,
			components.Vitals,
		](world),
		filter: ecs.NewFilter8[
			components.Organism,
			components.Position,
			components.Velocity,
			components.Needs,
			components.Energy,
			components.Age,
			components.Behavior,
			components.Vitals,
		](world),
		orgMap:   ecs.NewMap1[components.Organism](world),
		posMap:   ecs.NewMap1[components.Position](world),
		vitMap:   ecs.NewMap1[components.Vitals](world),
		entities: make(map[components.AgentID]ecs.Entity),
	}
}

// add creates the entity for a new agent. Must not be called while a query is open.
func (s *Store) add(d *agentData) {
	e := s.mapper.NewEntity(&d.org, &d.pos, &d.vel, &d.needs, &d.energy, &d.age, &d.beh, &d.vit)
	s.entities[d.org.ID] = e
}

// Len returns the number of stored agents.
func (s *Store) Len() int { return len(s.entities) }

// Each calls fn for every agent. fn must not add or remove agents.
func (s *Store) Each(fn func(a systems.AgentRef)) {
	query := s.filter.Query()
	for query.Next() {
		org, pos, vel, needs, energy, age, beh, vit := query.Get()
		fn(systems.AgentRef{
			Org: org, Pos: pos, Vel: vel, Needs: needs,
			Energy: energy, Age: age, Beh: beh, Vit: vit,
		})
	}
}

// Get returns the components of one agent.
func (s *Store) Get(id components.AgentID) (systems.AgentRef, bool) {
	e, ok := s.entities[id]
	if !ok || !s.world.Alive(e) {
		return systems.AgentRef{}, false
	}
	org, pos, vel, needs, energy, age, beh, vit := s.mapper.Get(e)
	return systems.AgentRef{
		Org: org, Pos: pos, Vel: vel, Needs: needs,
		Energy: energy, Age: age, Beh: beh, Vit: vit,
	}, true
}

// IDs returns every stored agent ID in ascending order.
func (s *Store) IDs() []components.AgentID {
	ids := make([]components.AgentID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Locate implements systems.AgentLookup.
func (s *Store) Locate(id components.AgentID) (float32, float32, components.Species, bool) {
	e, ok := s.entities[id]
	if !ok || !s.world.Alive(e) {
		return 0, 0, 0, false
	}
	pos := s.posMap.Get(e)
	org := s.orgMap.Get(e)
	return pos.X, pos.Y, org.Species, true
}

// Doomed implements systems.AgentLookup.
func (s *Store) Doomed(id components.AgentID) bool {
	e, ok := s.entities[id]
	if !ok || !s.world.Alive(e) {
		return false
	}
	return s.vitMap.Get(e).Doomed()
}

// RemoveEntity implements systems.EntityRemover. It is idempotent.
func (s *Store) RemoveEntity(id components.AgentID) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	delete(s.entities, id)
	if !s.world.Alive(e) {
		return false
	}
	s.world.RemoveEntity(e)
	return true
}
