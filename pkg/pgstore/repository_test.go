package pgstore

import (
	"testing"

	"mrouter/pkg/store"
)

func TestSegmentDistancePositive(t *testing.T) {
	a := store.Node{Id: 1, Lat: 1.000, Lon: 103.000}
	b := store.Node{Id: 2, Lat: 1.001, Lon: 103.000}
	d := segmentDistance(a, b)
	if d <= 0 {
		t.Fatalf("segmentDistance = %v, want > 0", d)
	}
}

func TestMinMaxFloat(t *testing.T) {
	if minFloat(1.0, 2.0) != 1.0 {
		t.Error("minFloat(1.0, 2.0) should be 1.0")
	}
	if maxFloat(1.0, 2.0) != 2.0 {
		t.Error("maxFloat(1.0, 2.0) should be 2.0")
	}
}

func TestSchemaSQLNotEmpty(t *testing.T) {
	if schemaSQL == "" {
		t.Fatal("schemaSQL should not be empty")
	}
}
