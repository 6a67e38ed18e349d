// Package components defines ECS components for the simulation.
package components

import "fmt"

// AgentID is the stable identity of an agent. IDs are allocated monotonically
// and never handed out again while the simulation runs.
type AgentID uint32

// NoAgent is the zero identity; no live agent carries it.
const NoAgent AgentID = 0

// NeedMax is the upper bound of every need. Needs live in [0, NeedMax].
const NeedMax float32 = 100

// Species is the closed set of simulated creature kinds.
type Species uint8

const (
	SpeciesGrazer Species = iota
	SpeciesPredator
	NumSpecies
)

var speciesNames = [NumSpecies]string{"grazer", "predator"}

func (s Species) String() string {
	if s < NumSpecies {
		return speciesNames[s]
	}
	return "unknown"
}

// ParseSpecies maps a config/CLI name to a Species.
func ParseSpecies(name string) (Species, bool) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), true
		}
	}
	return 0, false
}

// State is the behavioral state of an agent. Exactly one holds at a time.
type State uint8

const (
	StateIdle State = iota
	StateMoving
	StateEating
	StateDrinking
	StateSleeping
	NumStates
)

var stateNames = [NumStates]string{"idle", "moving", "eating", "drinking", "sleeping"}

func (s State) String() string {
	if s < NumStates {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState maps a config name to a State.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

// Consuming reports whether the state is one of the consumption states.
func (s State) Consuming() bool {
	return s == StateEating || s == StateDrinking || s == StateSleeping
}

// Need indexes the tracked needs.
type Need uint8

const (
	NeedHunger Need = iota
	NeedThirst
	NeedFatigue
	NumNeeds
)

var needNames = [NumNeeds]string{"hunger", "thirst", "fatigue"}

func (n Need) String() string {
	if n < NumNeeds {
		return needNames[n]
	}
	return "unknown"
}

// ResourceKind is the closed set of things an agent can seek.
type ResourceKind uint8

const (
	ResourceWater ResourceKind = iota
	ResourceForage
	ResourcePrey
	NumResourceKinds
)

var resourceNames = [NumResourceKinds]string{"water", "forage", "prey"}

func (k ResourceKind) String() string {
	if k < NumResourceKinds {
		return resourceNames[k]
	}
	return "unknown"
}

// ParseResourceKind maps a name to a ResourceKind.
func ParseResourceKind(name string) (ResourceKind, bool) {
	for i, n := range resourceNames {
		if n == name {
			return ResourceKind(i), true
		}
	}
	return 0, false
}

// Need returns the need satisfied by consuming this resource.
func (k ResourceKind) Need() Need {
	if k == ResourceWater {
		return NeedThirst
	}
	return NeedHunger
}

// ConsumeState returns the behavioral state used while consuming this resource.
func (k ResourceKind) ConsumeState() State {
	if k == ResourceWater {
		return StateDrinking
	}
	return StateEating
}

// IntentKind is the closed set of goals the decision oracle can propose.
type IntentKind uint8

const (
	IntentWander IntentKind = iota
	IntentSeekResource
	IntentRest
)

var intentNames = [...]string{"wander", "seek_resource", "rest"}

func (k IntentKind) String() string {
	if int(k) < len(intentNames) {
		return intentNames[k]
	}
	return "unknown"
}

// ParseIntentKind maps a wire name to an IntentKind.
func ParseIntentKind(name string) (IntentKind, bool) {
	for i, n := range intentNames {
		if n == name {
			return IntentKind(i), true
		}
	}
	return 0, false
}

// DeathCause records why an agent was or will be removed.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseDehydration
	CauseExhaustion
	CauseDrowning
	CauseEnergyDepleted
	CauseOldAge
	CausePoorHealth
	CausePredation
	CauseRemoved
	NumDeathCauses
)

var causeNames = [NumDeathCauses]string{
	"none", "starvation", "dehydration", "exhaustion", "drowning",
	"energy_depleted", "old_age", "poor_health", "predation", "removed",
}

func (c DeathCause) String() string {
	if c < NumDeathCauses {
		return causeNames[c]
	}
	return "unknown"
}

// Organism holds identity data.
type Organism struct {
	ID      AgentID
	Species Species
}

// Needs holds the three tracked needs, each in [0, NeedMax].
type Needs struct {
	Hunger  float32
	Thirst  float32
	Fatigue float32
}

// Get returns the value of need n.
func (n *Needs) Get(need Need) float32 {
	switch need {
	case NeedHunger:
		return n.Hunger
	case NeedThirst:
		return n.Thirst
	default:
		return n.Fatigue
	}
}

// Set writes need n, clamped to [0, NeedMax].
func (n *Needs) Set(need Need, v float32) {
	v = clampNeed(v)
	switch need {
	case NeedHunger:
		n.Hunger = v
	case NeedThirst:
		n.Thirst = v
	default:
		n.Fatigue = v
	}
}

// Clamp forces every need into [0, NeedMax]. NaN becomes 0.
func (n *Needs) Clamp() {
	n.Hunger = clampNeed(n.Hunger)
	n.Thirst = clampNeed(n.Thirst)
	n.Fatigue = clampNeed(n.Fatigue)
}

func clampNeed(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > NeedMax {
		return NeedMax
	}
	return v
}

// Energy holds current and age-dependent maximum energy.
type Energy struct {
	Current float32
	Max     float32
}

// Ratio returns Current/Max, or 0 when Max is not positive.
func (e Energy) Ratio() float32 {
	if e.Max <= 0 {
		return 0
	}
	return e.Current / e.Max
}

// Clamp forces Current into [0, Max]. NaN becomes 0.
func (e *Energy) Clamp() {
	if !(e.Max > 0) {
		e.Max = 0
	}
	if !(e.Current > 0) {
		e.Current = 0
	}
	if e.Current > e.Max {
		e.Current = e.Max
	}
}

// Age tracks lifespan state in ticks.
type Age struct {
	BirthTick        int64
	BaseLifespan     int64   // species lifespan before health adjustment
	ExpectedLifespan int64   // health-adjusted lifespan
	HealthHistory    float32 // EMA of current energy
	Percent          float32 // last computed age fraction
}

// Behavior holds the committed intent and behavioral state.
type Behavior struct {
	State    State
	Intent   IntentKind
	Resource ResourceKind
	Urgency  float32
	Target   Target
	Prey     AgentID // hunted agent while Intent is SeekResource(prey)
	Meal     float32 // remaining hunger reduction from a kill
}

// Halt clears movement intent and returns the agent to Idle.
func (b *Behavior) Halt(vel *Velocity) {
	b.State = StateIdle
	b.Target.Clear()
	b.Urgency = 0
	*vel = Velocity{}
}

// Vitals holds mortality bookkeeping.
type Vitals struct {
	StarvingTicks   int32
	DehydratedTicks int32
	ExhaustedTicks  int32
	Cause           DeathCause // pending removal when not CauseNone
}

// Doomed reports whether the agent is already marked for removal this tick.
func (v Vitals) Doomed() bool {
	return v.Cause != CauseNone
}

// MarshalText implements encoding.TextMarshaler.
func (s Species) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Species) UnmarshalText(b []byte) error {
	v, ok := ParseSpecies(string(b))
	if !ok {
		return fmt.Errorf("unknown species %q", b)
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, ok := ParseState(string(b))
	if !ok {
		return fmt.Errorf("unknown state %q", b)
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k ResourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ResourceKind) UnmarshalText(b []byte) error {
	v, ok := ParseResourceKind(string(b))
	if !ok {
		return fmt.Errorf("unknown resource kind %q", b)
	}
	*k = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k IntentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *IntentKind) UnmarshalText(b []byte) error {
	v, ok := ParseIntentKind(string(b))
	if !ok {
		return fmt.Errorf("unknown intent kind %q", b)
	}
	*k = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c DeathCause) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
