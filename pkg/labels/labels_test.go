package labels

import "testing"

type fakeTags map[string]string

func (f fakeTags) Find(key string) string { return f[key] }

func TestDeriveRoad(t *testing.T) {
	cases := []struct {
		highway string
		want    Road
	}{
		{"footway", RoadPedestrian},
		{"residential", RoadLocal},
		{"tertiary", RoadCollector},
		{"primary", RoadArterial},
		{"motorway", RoadArterial},
		{"cycleway", RoadBike},
		{"", RoadLocal},
	}
	for _, c := range cases {
		tags := fakeTags{"highway": c.highway}
		if got := deriveRoad(tags); got != c.want {
			t.Errorf("deriveRoad(highway=%q) = %v, want %v", c.highway, got, c.want)
		}
	}
}

func TestDeriveCycleway(t *testing.T) {
	cases := []struct {
		name string
		tags fakeTags
		want Cycleway
	}{
		{"none", fakeTags{}, CyclewayNone},
		{"track", fakeTags{"cycleway": "track"}, CyclewayTrack},
		{"lane", fakeTags{"cycleway": "lane"}, CyclewayLane},
		{"shared_lane", fakeTags{"cycleway": "shared_lane"}, CyclewayShared},
		{"designated bicycle falls back to shared", fakeTags{"bicycle": "designated"}, CyclewayShared},
		{"right side wins over absent cycleway", fakeTags{"cycleway:right": "track"}, CyclewayTrack},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := deriveCycleway(c.tags, false); got != c.want {
				t.Errorf("deriveCycleway() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestIsOneWayAndSalmon(t *testing.T) {
	oneway := fakeTags{"oneway": "yes"}
	if !IsOneWay(oneway) {
		t.Fatal("expected oneway=yes to be one-way")
	}
	if isSalmon(oneway) {
		t.Fatal("plain oneway without a bicycle exception should not be salmon")
	}

	exception := fakeTags{"oneway": "yes", "oneway:bicycle": "no"}
	if !isSalmon(exception) {
		t.Fatal("expected oneway:bicycle=no to permit the salmon direction")
	}

	oppositeLane := fakeTags{"oneway": "yes", "cycleway": "opposite_lane"}
	if !isSalmon(oppositeLane) {
		t.Fatal("expected cycleway=opposite_lane to permit the salmon direction")
	}

	twoWay := fakeTags{}
	if isSalmon(twoWay) {
		t.Fatal("a two-way way is never salmon")
	}
}

func TestDeriveReverseMarksSalmon(t *testing.T) {
	tags := fakeTags{"oneway": "yes", "oneway:bicycle": "no", "highway": "residential"}
	fwd := DeriveForward(tags)
	rev := DeriveReverse(tags)

	if fwd.Salmon {
		t.Error("forward direction should never be salmon")
	}
	if !rev.Salmon {
		t.Error("reverse direction should be salmon when bicycle contraflow is allowed")
	}
	if fwd.Road != rev.Road {
		t.Error("road class should not depend on direction")
	}
}
