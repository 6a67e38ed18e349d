package config

import "math"

// sanitize clamps out-of-range values in place. A running simulation prefers a
// clamped value over a rejected config.
func (c *Config) sanitize() {
	c.World.Cols = clampInt(c.World.Cols, 1, 1<<14)
	c.World.Rows = clampInt(c.World.Rows, 1, 1<<14)
	c.World.TileSize = atLeast(c.World.TileSize, 1)
	c.Terrain.Octaves = clampInt(c.Terrain.Octaves, 1, 8)

	c.Physics.DT = clamp(c.Physics.DT, 1e-4, 1)
	c.Physics.TickBudgetMS = atLeast(c.Physics.TickBudgetMS, 0)

	c.Spatial.AgentCellSize = atLeast(c.Spatial.AgentCellSize, 1)
	c.Spatial.ResourceCellSize = atLeast(c.Spatial.ResourceCellSize, 1)
	c.Spatial.ResourceStride = clampInt(c.Spatial.ResourceStride, 1, 64)

	c.Needs.BaseRates = clampRates(c.Needs.BaseRates, 0, 100)
	for k, r := range c.Needs.Activity {
		c.Needs.Activity[k] = clampRates(r, 0, 100)
	}

	c.Energy.BaseDrain = atLeast(c.Energy.BaseDrain, 0)
	if m, ok := c.Energy.StateMultipliers["sleeping"]; ok && m > 0 {
		c.Energy.StateMultipliers["sleeping"] = -m
	}
	c.Energy.RestorationFloor = clamp(c.Energy.RestorationFloor, 0, 1)

	a := &c.Age
	a.ChildhoodFraction = clamp(a.ChildhoodFraction, 0, 1)
	a.PeakFraction = clamp(a.PeakFraction, a.ChildhoodFraction, 1)
	a.ChildEnergyFloor = clamp(a.ChildEnergyFloor, 0, 1)
	a.HealthWindowTicks = clampInt(a.HealthWindowTicks, 1, math.MaxInt32)
	a.UnhealthyThreshold = clamp(a.UnhealthyThreshold, 0, 1)
	a.HealthyThreshold = clamp(a.HealthyThreshold, a.UnhealthyThreshold, 1)
	a.MaxLifespanBonus = clamp(a.MaxLifespanBonus, 0, 10)
	a.MinLifespanFactor = clamp(a.MinLifespanFactor, 0, 1)
	a.PoorHealthFloor = atLeast(a.PoorHealthFloor, 0)
	a.PoorHealthMinAge = clamp(a.PoorHealthMinAge, 0, 1)

	d := &c.Decision
	if d.CacheMaxAge < 1 {
		d.CacheMaxAge = 1
	}
	d.ChangeDelta = clamp(d.ChangeDelta, 0, 100)
	d.LowEnergyFraction = clamp(d.LowEnergyFraction, 0, 1)
	d.InterruptThreshold = clamp(d.InterruptThreshold, 0, 100)
	d.InterruptThresholdActive = clamp(d.InterruptThresholdActive, d.InterruptThreshold, 100)
	d.UrgencyFloor = clamp(d.UrgencyFloor, 0, 100)
	d.UrgentThreshold = clamp(d.UrgentThreshold, 0, 100)
	d.CostScale = atLeast(d.CostScale, 1)
	d.ResourceCandidates = clampInt(d.ResourceCandidates, 1, 64)
	d.ResourceSearchRadius = atLeast(d.ResourceSearchRadius, 0)
	d.HuntRadius = atLeast(d.HuntRadius, 0)
	d.Wander.Samples = clampInt(d.Wander.Samples, 1, 64)
	d.Wander.Radius = atLeast(d.Wander.Radius, 1)
	d.Wander.DesperateNeed = clamp(d.Wander.DesperateNeed, 0, 100)
	d.Wander.DesperateFactor = atLeast(d.Wander.DesperateFactor, 1)
	d.Wander.CostScale = atLeast(d.Wander.CostScale, 1)
	d.Path.SampleSpacing = atLeast(d.Path.SampleSpacing, 1)
	d.Path.MaxSamples = clampInt(d.Path.MaxSamples, 1, 1024)
	d.Path.ImpassablePenalty = atLeast(d.Path.ImpassablePenalty, 1)

	m := &c.Movement
	m.ArrivalThreshold = atLeast(m.ArrivalThreshold, 0)
	m.LowEnergy = clamp(m.LowEnergy, 0, 1)
	m.MidEnergy = clamp(m.MidEnergy, m.LowEnergy, 1)
	m.LowEnergyPenalty = clamp(m.LowEnergyPenalty, 0, 1)
	m.RepulsionProbe = atLeast(m.RepulsionProbe, 0)
	m.RepulsionStrength = clamp(m.RepulsionStrength, 0, 1)
	m.RepulsionSamples = clampInt(m.RepulsionSamples, 0, 32)

	cs := &c.Consumption
	cs.SatisfactionThreshold = clamp(cs.SatisfactionThreshold, 0, 100)
	cs.EatRate = clamp(cs.EatRate, 0, 100)
	cs.PredationRate = clamp(cs.PredationRate, 0, 100)
	cs.DrinkRate = clamp(cs.DrinkRate, 0, 100)
	cs.SleepRate = clamp(cs.SleepRate, 0, 100)
	cs.DepletionChance = clamp(cs.DepletionChance, 0, 1)
	cs.InteractRange = atLeast(cs.InteractRange, 0)
	cs.MealSize = atLeast(cs.MealSize, 0)

	mo := &c.Mortality
	mo.StarvationGrace = max(mo.StarvationGrace, 0)
	mo.DehydrationGrace = max(mo.DehydrationGrace, 0)
	mo.ExhaustionGrace = max(mo.ExhaustionGrace, 0)

	if c.Resources.RegrowthTicks < 0 {
		c.Resources.RegrowthTicks = 0
	}

	o := &c.Oracle
	o.HighThirst = clamp(o.HighThirst, 0, 100)
	o.CriticalThirst = clamp(o.CriticalThirst, o.HighThirst, 100)
	o.HighHunger = clamp(o.HighHunger, 0, 100)
	o.CriticalHunger = clamp(o.CriticalHunger, o.HighHunger, 100)
	o.HighFatigue = clamp(o.HighFatigue, 0, 100)
	o.CriticalFatigue = clamp(o.CriticalFatigue, o.HighFatigue, 100)
	o.SearchRadius = atLeast(o.SearchRadius, 0)
	o.WanderUrgency = clamp(o.WanderUrgency, 0, 100)
	o.RemoteTimeoutMS = clampInt(o.RemoteTimeoutMS, 1, 60000)

	for i := range c.Species {
		s := &c.Species[i]
		s.WalkSpeed = atLeast(s.WalkSpeed, 0)
		s.RunSpeed = atLeast(s.RunSpeed, s.WalkSpeed)
		s.MaxEnergy = atLeast(s.MaxEnergy, 1)
		if s.LifespanTicks < 1 {
			s.LifespanTicks = 1
		}
		s.NeedRates = clampRates(s.NeedRates, 0, 100)
		for k, tc := range s.Terrain {
			s.Terrain[k] = TerrainCost{Speed: clamp(tc.Speed, 0, 10), Energy: clamp(tc.Energy, 0, 100)}
		}
	}

	c.Population.Initial = clampInt(c.Population.Initial, 0, 1<<20)
	c.Population.PredatorRatio = clamp(c.Population.PredatorRatio, 0, 1)
	c.Population.MaxAgeFraction = clamp(c.Population.MaxAgeFraction, 0, 0.95)

	c.Telemetry.StatsWindow = atLeast(c.Telemetry.StatsWindow, c.Physics.DT)
	c.Telemetry.PerfCollectorWindow = clampInt(c.Telemetry.PerfCollectorWindow, 1, 1<<16)
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func atLeast(v, lo float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampRates(r NeedRates, lo, hi float64) NeedRates {
	return NeedRates{
		Hunger:  clamp(r.Hunger, lo, hi),
		Thirst:  clamp(r.Thirst, lo, hi),
		Fatigue: clamp(r.Fatigue, lo, hi),
	}
}
