package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrouter/pkg/labels"
)

func TestDefaultModelFactor(t *testing.T) {
	m := DefaultModel()

	plain := labels.WayLabels{Cycleway: labels.CyclewayNone, Road: labels.RoadLocal}
	want := Factor(0.3*1.7 + 0.4*1.2)
	assert.InDelta(t, float64(want), float64(m.Factor(plain)), 1e-6)

	track := labels.WayLabels{Cycleway: labels.CyclewayTrack, Road: labels.RoadBike}
	assert.Less(t, m.Factor(track), m.Factor(plain), "a protected bike track should cost less than an unimproved local road")
}

func TestFactorSalmonMultiplier(t *testing.T) {
	m := DefaultModel()
	base := labels.WayLabels{Cycleway: labels.CyclewayLane, Road: labels.RoadCollector}
	salmon := base
	salmon.Salmon = true

	assert.Greater(t, m.Factor(salmon), m.Factor(base), "salmon direction should always cost more than the same labels without salmon")
}

func TestBuildOverridesCoefficient(t *testing.T) {
	coeff := float32(0.9)
	m, err := Build(Config{RoadCoefficient: &coeff})
	require.NoError(t, err)
	assert.Equal(t, float32(0.9), m.RoadCoefficient)
	assert.Equal(t, DefaultModel().CyclewayCoefficient, m.CyclewayCoefficient, "unset fields should fall back to default")
}

func TestBuildOverridesWeight(t *testing.T) {
	m, err := Build(Config{RoadWeights: map[string]float32{"arterial": 3.0}})
	require.NoError(t, err)
	want := Factor(0.4 * 3.0)
	assert.InDelta(t, float64(want), float64(m.Factor(labels.WayLabels{Road: labels.RoadArterial})), 1e-6)
}

func TestBuildRejectsUnknownKey(t *testing.T) {
	_, err := Build(Config{RoadWeights: map[string]float32{"highway": 1.0}})
	require.Error(t, err)
	assert.IsType(t, &BadConfigError{}, err)
}

func TestBuildRejectsNegativeCoefficient(t *testing.T) {
	neg := float32(-1)
	_, err := Build(Config{SalmonCoefficient: &neg})
	assert.Error(t, err, "expected an error for a negative coefficient")
}
