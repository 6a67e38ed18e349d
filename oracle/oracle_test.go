package oracle

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
)

type fakeQuery struct {
	resources map[ResourceKind][]ResourceLocation
}

func (f fakeQuery) NearbyAgents(int, float32, *components.Species) []components.AgentID { return nil }

func (f fakeQuery) NearbyResources(kind ResourceKind, maxRadius float32) []ResourceLocation {
	var out []ResourceLocation
	for _, l := range f.resources[kind] {
		if l.Distance <= maxRadius {
			out = append(out, l)
		}
	}
	return out
}

func (f fakeQuery) CanInteract(a, b components.AgentID, rng float32) bool { return false }

func newUtility(t *testing.T) *Utility {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return NewUtility(cfg.Oracle)
}

func TestUtilityPrefersMostUrgentNeed(t *testing.T) {
	u := newUtility(t)
	q := fakeQuery{resources: map[ResourceKind][]ResourceLocation{
		Water:  {{X: 300, Y: 0, Distance: 300}},
		Forage: {{X: 50, Y: 0, Distance: 50}},
	}}

	tests := []struct {
		name  string
		needs NeedsSnapshot
		want  Intent
	}{
		{"content agent wanders", NeedsSnapshot{Hunger: 10, Thirst: 10, Fatigue: 10, Diet: Forage}, WanderIntent(10)},
		{"thirst dominates", NeedsSnapshot{Hunger: 40, Thirst: 85, Diet: Forage}, Seek(Water, 85)},
		{"hunger dominates", NeedsSnapshot{Hunger: 75, Thirst: 62, Diet: Forage}, Seek(Forage, 75)},
		{"tired agent rests", NeedsSnapshot{Fatigue: 90, Diet: Forage}, RestIntent(90)},
		{"predator hunts", NeedsSnapshot{Hunger: 60, Diet: Prey}, Seek(Prey, 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.Decide(1, tt.needs, EnergySnapshot{Current: 50, Max: 100}, q)
			if err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decide = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUtilitySeeksWithoutVisibleResource(t *testing.T) {
	u := newUtility(t)
	got, _ := u.Decide(1, NeedsSnapshot{Thirst: 90}, EnergySnapshot{Current: 50, Max: 100}, fakeQuery{})
	if got.Kind != SeekResource || got.Resource != Water {
		t.Errorf("Decide = %+v, want seek water", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want Intent
	}{
		{Intent{Kind: Rest, Urgency: 150}, RestIntent(100)},
		{Intent{Kind: SeekResource, Resource: Water, Urgency: -3}, Seek(Water, 0)},
		{Intent{Kind: SeekResource, Resource: 99, Urgency: 20}, WanderIntent(20)},
		{Intent{Kind: 42, Urgency: 5}, WanderIntent(5)},
		{Intent{Kind: Wander, Resource: Prey, Urgency: float32(math.NaN())}, WanderIntent(0)},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestIntentJSON(t *testing.T) {
	data, err := json.Marshal(Seek(Water, 68))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"seek_resource","resource":"water","urgency":68}` {
		t.Errorf("json = %s", data)
	}

	var back Intent
	if err := json.Unmarshal([]byte(`{"kind":"rest","resource":"water","urgency":12.5}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Kind != Rest || back.Urgency != 12.5 {
		t.Errorf("decoded %+v", back)
	}

	if err := json.Unmarshal([]byte(`{"kind":"dance"}`), &back); err == nil {
		t.Error("unknown intent kind should fail to decode")
	}
}

func TestFuncAndFixed(t *testing.T) {
	errBoom := errors.New("boom")
	var f Oracle = Func(func(components.AgentID, NeedsSnapshot, EnergySnapshot, WorldQuery) (Intent, error) {
		return Intent{}, errBoom
	})
	if _, err := f.Decide(1, NeedsSnapshot{}, EnergySnapshot{}, fakeQuery{}); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want boom", err)
	}

	got, err := Fixed(RestIntent(30)).Decide(2, NeedsSnapshot{}, EnergySnapshot{}, fakeQuery{})
	if err != nil || got != RestIntent(30) {
		t.Errorf("Fixed = %+v, %v", got, err)
	}
}
