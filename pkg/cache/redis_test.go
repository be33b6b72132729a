package cache

import (
	"testing"

	"mrouter/pkg/cost"
)

func TestRouteKeyDeterministic(t *testing.T) {
	model := cost.DefaultModel()
	a := RouteKey(1.0, 103.0, 1.1, 103.1, model, 0.75)
	b := RouteKey(1.0, 103.0, 1.1, 103.1, model, 0.75)
	if a != b {
		t.Fatalf("RouteKey should be deterministic for identical inputs: %q != %q", a, b)
	}
}

func TestRouteKeyDiffersOnHeuristicWeight(t *testing.T) {
	model := cost.DefaultModel()
	a := RouteKey(1.0, 103.0, 1.1, 103.1, model, 0.75)
	b := RouteKey(1.0, 103.0, 1.1, 103.1, model, 0.0)
	if a == b {
		t.Fatal("RouteKey should differ when heuristic weight differs")
	}
}

func TestConfigKeyDeterministic(t *testing.T) {
	body := []byte(`{"roadCoefficient": 0.5}`)
	if ConfigKey(body) != ConfigKey(body) {
		t.Fatal("ConfigKey should be deterministic for identical bodies")
	}
	if ConfigKey(body) == ConfigKey([]byte(`{"roadCoefficient": 0.6}`)) {
		t.Fatal("ConfigKey should differ for different bodies")
	}
}
