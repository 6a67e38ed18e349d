package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// AgeEngine derives the energy ceiling and health-adjusted lifespan, and flags
// old-age and poor-health deaths.
type AgeEngine struct {
	childhood, peak    float32
	childFloor         float32
	alpha              float32 // EMA smoothing factor
	healthy, unhealthy float32
	maxBonus           float32
	minFactor          float32
	poorFloor          float32
	poorMinAge         float32
}

// NewAgeEngine creates an age engine.
func NewAgeEngine(env *Env) *AgeEngine {
	c := env.Cfg.Age
	return &AgeEngine{
		childhood:  float32(c.ChildhoodFraction),
		peak:       float32(c.PeakFraction),
		childFloor: float32(c.ChildEnergyFloor),
		alpha:      2 / float32(c.HealthWindowTicks+1),
		healthy:    float32(c.HealthyThreshold),
		unhealthy:  float32(c.UnhealthyThreshold),
		maxBonus:   float32(c.MaxLifespanBonus),
		minFactor:  float32(c.MinLifespanFactor),
		poorFloor:  float32(c.PoorHealthFloor),
		poorMinAge: float32(c.PoorHealthMinAge),
	}
}

// EnergyCurve returns the fraction of base max energy available at agePercent.
func (s *AgeEngine) EnergyCurve(agePercent float32) float32 {
	switch {
	case agePercent < 0:
		return s.childFloor
	case agePercent < s.childhood:
		return lerp(s.childFloor, 1, agePercent/s.childhood)
	case agePercent <= s.peak:
		return 1
	case agePercent >= 1:
		return 0
	default:
		return (1 - agePercent) / (1 - s.peak)
	}
}

// LifespanFactor maps healthHistory/baseMax to a lifespan multiplier.
func (s *AgeEngine) LifespanFactor(healthRatio float32) float32 {
	var f float32 = 1
	switch {
	case healthRatio > s.healthy && s.healthy < 1:
		f = 1 + s.maxBonus*clamp01((healthRatio-s.healthy)/(1-s.healthy))
	case healthRatio < s.unhealthy && s.unhealthy > 0:
		f = max(healthRatio, 0) / s.unhealthy
	}
	return clampFloat(f, s.minFactor, 1+s.maxBonus)
}

// Update refreshes one agent's energy ceiling, health history and lifespan.
func (s *AgeEngine) Update(env *Env, a AgentRef) {
	if a.Vit.Doomed() {
		return
	}
	sp := env.species(a.Org.Species)
	age := a.Age

	if age.ExpectedLifespan < 1 {
		age.ExpectedLifespan = max(age.BaseLifespan, 1)
	}
	elapsed := max(env.Tick-age.BirthTick, 0)
	pct := float32(float64(elapsed) / float64(age.ExpectedLifespan))
	age.Percent = pct

	a.Energy.Max = sp.MaxEnergy * s.EnergyCurve(pct)
	a.Energy.Clamp()

	if !isFinite(age.HealthHistory) {
		age.HealthHistory = a.Energy.Current
	}
	age.HealthHistory += s.alpha * (a.Energy.Current - age.HealthHistory)

	if sp.MaxEnergy > 0 && age.BaseLifespan > 0 {
		factor := s.LifespanFactor(age.HealthHistory / sp.MaxEnergy)
		age.ExpectedLifespan = max(int64(float64(age.BaseLifespan)*float64(factor)), 1)
	}

	switch {
	case pct >= 1:
		a.Vit.Cause = components.CauseOldAge
	case age.HealthHistory < s.poorFloor && pct > s.poorMinAge:
		a.Vit.Cause = components.CausePoorHealth
	}
}
