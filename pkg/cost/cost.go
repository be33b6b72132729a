// Package cost implements the per-query cost model that turns a way's
// WayLabels into a scalar multiplier on its physical distance.
package cost

import (
	"fmt"

	"mrouter/pkg/labels"
)

// Factor is the scalar cost multiplier a Model produces for a given
// WayLabels triple. A segment's routing cost is its physical distance times
// its Factor. DefaultModel's Factor is always strictly positive; a Model from
// Build is never negative but is 0 wherever the config zeroes a term.
type Factor = float32

// Model holds the coefficients and per-class weight tables used to turn a
// way's WayLabels into a Factor. The weight tables are fixed-size arrays
// indexed by the dense Cycleway/Road ordinals, not maps — this sits on the
// hot expand_node path and array indexing avoids a hash lookup per edge.
type Model struct {
	CyclewayCoefficient float32
	RoadCoefficient     float32
	SalmonCoefficient   float32

	cyclewayWeights [labels.NumCycleway]float32
	roadWeights     [labels.NumRoad]float32
}

// DefaultModel returns the model used when a query supplies no
// CostModelConfig override.
func DefaultModel() Model {
	m := Model{
		CyclewayCoefficient: 0.3,
		RoadCoefficient:     0.4,
		SalmonCoefficient:   1.3,
	}
	m.cyclewayWeights = [labels.NumCycleway]float32{
		labels.CyclewayNone:   1.7,
		labels.CyclewayShared: 1.5,
		labels.CyclewayLane:   1.0,
		labels.CyclewayTrack:  0.5,
	}
	m.roadWeights = [labels.NumRoad]float32{
		labels.RoadPedestrian: 1.2,
		labels.RoadBike:       0.5,
		labels.RoadLocal:      1.2,
		labels.RoadCollector:  1.4,
		labels.RoadArterial:   2.0,
	}
	return m
}

// Factor returns the cost multiplier for a way labeled with wl.
func (m Model) Factor(wl labels.WayLabels) Factor {
	f := m.CyclewayCoefficient*m.cyclewayWeights[wl.Cycleway] +
		m.RoadCoefficient*m.roadWeights[wl.Road]
	if wl.Salmon {
		f *= m.SalmonCoefficient
	}
	return f
}

// Config is the wire format for overriding a Model on a per-query basis —
// spec.md §6's CostModelConfig. Every field is optional. An absent
// coefficient (nil pointer) falls back to DefaultModel's value; a weight
// entry the maps do not name, including every entry of an absent map, is 0.
type Config struct {
	CyclewayCoefficient *float32           `json:"cyclewayCoefficient,omitempty"`
	RoadCoefficient     *float32           `json:"roadCoefficient,omitempty"`
	SalmonCoefficient   *float32           `json:"salmonCoefficient,omitempty"`
	CyclewayWeights     map[string]float32 `json:"cyclewayWeights,omitempty"`
	RoadWeights         map[string]float32 `json:"roadWeights,omitempty"`
}

var cyclewayNames = map[string]labels.Cycleway{
	"none":   labels.CyclewayNone,
	"shared": labels.CyclewayShared,
	"lane":   labels.CyclewayLane,
	"track":  labels.CyclewayTrack,
}

var roadNames = map[string]labels.Road{
	"pedestrian": labels.RoadPedestrian,
	"bike":       labels.RoadBike,
	"local":      labels.RoadLocal,
	"collector":  labels.RoadCollector,
	"arterial":   labels.RoadArterial,
}

// BadConfigError reports a CostModelConfig that failed validation — an
// unknown enum key, or a negative coefficient or weight. Routing layers map this
// to spec.md §7's BadCostModel error kind.
type BadConfigError struct {
	Field string
	Value string
}

func (e *BadConfigError) Error() string {
	return fmt.Sprintf("bad cost model config: %s: %q", e.Field, e.Value)
}

// Build validates c and returns the resulting Model: its coefficients are
// merged onto DefaultModel's, and its weight tables hold only the entries c
// names (every other entry is 0). An error is returned if c names an unknown
// Cycleway/Road key or a negative coefficient/weight.
func Build(c Config) (Model, error) {
	m := DefaultModel()
	m.cyclewayWeights = [labels.NumCycleway]float32{}
	m.roadWeights = [labels.NumRoad]float32{}

	if c.CyclewayCoefficient != nil {
		if *c.CyclewayCoefficient < 0 {
			return Model{}, &BadConfigError{"cyclewayCoefficient", fmt.Sprint(*c.CyclewayCoefficient)}
		}
		m.CyclewayCoefficient = *c.CyclewayCoefficient
	}
	if c.RoadCoefficient != nil {
		if *c.RoadCoefficient < 0 {
			return Model{}, &BadConfigError{"roadCoefficient", fmt.Sprint(*c.RoadCoefficient)}
		}
		m.RoadCoefficient = *c.RoadCoefficient
	}
	if c.SalmonCoefficient != nil {
		if *c.SalmonCoefficient < 0 {
			return Model{}, &BadConfigError{"salmonCoefficient", fmt.Sprint(*c.SalmonCoefficient)}
		}
		m.SalmonCoefficient = *c.SalmonCoefficient
	}

	for k, v := range c.CyclewayWeights {
		ord, ok := cyclewayNames[k]
		if !ok {
			return Model{}, &BadConfigError{"cyclewayWeights", k}
		}
		if v < 0 {
			return Model{}, &BadConfigError{"cyclewayWeights." + k, fmt.Sprint(v)}
		}
		m.cyclewayWeights[ord] = v
	}
	for k, v := range c.RoadWeights {
		ord, ok := roadNames[k]
		if !ok {
			return Model{}, &BadConfigError{"roadWeights", k}
		}
		if v < 0 {
			return Model{}, &BadConfigError{"roadWeights." + k, fmt.Sprint(v)}
		}
		m.roadWeights[ord] = v
	}

	return m, nil
}
