package oracle

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
)

// criticalBoost scales survival utility once a need passes its critical threshold.
const criticalBoost = 1.5

// Utility picks the highest-utility intent from thirst, hunger and fatigue.
//
//	utility = need/100 * weight + max(0, 1 - distance/radius) * efficiency
//
// A seek intent is proposed even when nothing is in range; the simulation
// turns an unresolvable seek into wandering.
type Utility struct {
	HighThirst, CriticalThirst    float32
	HighHunger, CriticalHunger    float32
	HighFatigue, CriticalFatigue  float32
	Survival, Comfort, Efficiency float32
	SearchRadius                  float32
	WanderUrgency                 float32
	wanderUtility                 float32
}

// NewUtility builds a utility oracle from config.
func NewUtility(cfg config.OracleConfig) *Utility {
	return &Utility{
		HighThirst:      float32(cfg.HighThirst),
		CriticalThirst:  float32(cfg.CriticalThirst),
		HighHunger:      float32(cfg.HighHunger),
		CriticalHunger:  float32(cfg.CriticalHunger),
		HighFatigue:     float32(cfg.HighFatigue),
		CriticalFatigue: float32(cfg.CriticalFatigue),
		Survival:        float32(cfg.SurvivalWeight),
		Comfort:         float32(cfg.ComfortWeight),
		Efficiency:      float32(cfg.EfficiencyWeight),
		SearchRadius:    float32(cfg.SearchRadius),
		WanderUrgency:   float32(cfg.WanderUrgency),
		wanderUtility:   0.1,
	}
}

type option struct {
	intent  Intent
	utility float32
}

// Decide implements Oracle.
func (u *Utility) Decide(id components.AgentID, needs NeedsSnapshot, energy EnergySnapshot, q WorldQuery) (Intent, error) {
	best := option{intent: WanderIntent(u.WanderUrgency), utility: u.wanderUtility}
	consider := func(o option) {
		if o.utility > best.utility {
			best = o
		}
	}

	if needs.Thirst > u.HighThirst {
		consider(u.seek(Water, needs.Thirst, u.CriticalThirst, q))
	}
	if needs.Hunger > u.HighHunger {
		consider(u.seek(needs.Diet, needs.Hunger, u.CriticalHunger, q))
	}
	if needs.Fatigue > u.HighFatigue {
		w := u.Comfort
		if needs.Fatigue >= u.CriticalFatigue {
			w = u.Survival
		}
		consider(option{intent: RestIntent(needs.Fatigue), utility: needs.Fatigue / 100 * w})
	}
	return best.intent, nil
}

func (u *Utility) seek(kind ResourceKind, need, critical float32, q WorldQuery) option {
	w := u.Survival
	if need >= critical {
		w *= criticalBoost
	}
	utility := need / 100 * w
	if locs := q.NearbyResources(kind, u.SearchRadius); len(locs) > 0 && u.SearchRadius > 0 {
		distFactor := 1 - locs[0].Distance/u.SearchRadius
		if distFactor > 0 {
			utility += distFactor * u.Efficiency
		}
	}
	return option{intent: Seek(kind, need), utility: utility}
}
