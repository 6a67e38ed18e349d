package main

import (
	"github.com/pthm-cable/pasture/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name  string  // Human-readable name
	Path  string  // Config path for logging
	Min   float64 // Lower bound
	Max   float64 // Upper bound
	field func(c *config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Decision hysteresis
			{Name: "interrupt", Path: "decision.interrupt_threshold", Min: 5, Max: 40,
				field: func(c *config.Config) *float64 { return &c.Decision.InterruptThreshold }},
			{Name: "interrupt_consuming", Path: "decision.interrupt_threshold_consuming", Min: 10, Max: 60,
				field: func(c *config.Config) *float64 { return &c.Decision.InterruptThresholdActive }},
			{Name: "urgency_floor", Path: "decision.urgency_floor", Min: 0, Max: 40,
				field: func(c *config.Config) *float64 { return &c.Decision.UrgencyFloor }},
			{Name: "cost_scale", Path: "decision.cost_scale", Min: 300, Max: 4000,
				field: func(c *config.Config) *float64 { return &c.Decision.CostScale }},
			{Name: "hunt_radius", Path: "decision.hunt_radius", Min: 100, Max: 800,
				field: func(c *config.Config) *float64 { return &c.Decision.HuntRadius }},
			// Oracle thresholds
			{Name: "high_thirst", Path: "oracle.high_thirst", Min: 30, Max: 80,
				field: func(c *config.Config) *float64 { return &c.Oracle.HighThirst }},
			{Name: "high_hunger", Path: "oracle.high_hunger", Min: 30, Max: 80,
				field: func(c *config.Config) *float64 { return &c.Oracle.HighHunger }},
			{Name: "high_fatigue", Path: "oracle.high_fatigue", Min: 40, Max: 90,
				field: func(c *config.Config) *float64 { return &c.Oracle.HighFatigue }},
			{Name: "efficiency_weight", Path: "oracle.efficiency_weight", Min: 0, Max: 2,
				field: func(c *config.Config) *float64 { return &c.Oracle.EfficiencyWeight }},
			// Consumption
			{Name: "satisfaction", Path: "consumption.satisfaction_threshold", Min: 2, Max: 25,
				field: func(c *config.Config) *float64 { return &c.Consumption.SatisfactionThreshold }},
			{Name: "meal_size", Path: "consumption.meal_size", Min: 20, Max: 100,
				field: func(c *config.Config) *float64 { return &c.Consumption.MealSize }},
			{Name: "depletion_chance", Path: "consumption.depletion_chance", Min: 0, Max: 0.01,
				field: func(c *config.Config) *float64 { return &c.Consumption.DepletionChance }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and re-derives it.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
	cfg.Finalize()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
