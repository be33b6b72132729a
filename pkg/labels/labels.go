// Package labels defines the dense-ordinal way classification types the cost
// model indexes directly, plus a deriver that turns raw OSM tags into them.
package labels

// Cycleway classifies the bicycle infrastructure present on a way, ordered
// from least to most protected. The ordinal value is used to index directly
// into cost.Model's cycleway weight array — never change the ordering
// without updating that array.
type Cycleway uint8

const (
	CyclewayNone Cycleway = iota
	CyclewayShared
	CyclewayLane
	CyclewayTrack

	NumCycleway = int(CyclewayTrack) + 1
)

func (c Cycleway) String() string {
	switch c {
	case CyclewayNone:
		return "none"
	case CyclewayShared:
		return "shared"
	case CyclewayLane:
		return "lane"
	case CyclewayTrack:
		return "track"
	default:
		return "unknown"
	}
}

// Road classifies the general road category a way belongs to, ordered from
// calmest to busiest. As with Cycleway, the ordinal indexes directly into
// cost.Model's road weight array.
type Road uint8

const (
	RoadPedestrian Road = iota
	RoadBike
	RoadLocal
	RoadCollector
	RoadArterial

	NumRoad = int(RoadArterial) + 1
)

func (r Road) String() string {
	switch r {
	case RoadPedestrian:
		return "pedestrian"
	case RoadBike:
		return "bike"
	case RoadLocal:
		return "local"
	case RoadCollector:
		return "collector"
	case RoadArterial:
		return "arterial"
	default:
		return "unknown"
	}
}

// WayLabels is the classification triple attached to every signed way edge:
// its cycleway infrastructure, its road class, and whether traveling it in
// this direction means riding against a one-way restriction ("salmoning").
type WayLabels struct {
	Cycleway Cycleway
	Road     Road
	Salmon   bool
}

// Tags is the minimal view of an OSM way's tag set the deriver needs. It is
// intentionally narrower than osm.Tags so pkg/labels has no hard dependency
// on the ingestion library's types.
type Tags interface {
	// Find returns the value for key, or "" if absent.
	Find(key string) string
}

// DeriveForward returns the WayLabels for traversing a way in its natural
// (forward) direction, given its tags.
func DeriveForward(t Tags) WayLabels {
	return WayLabels{
		Cycleway: deriveCycleway(t, false),
		Road:     deriveRoad(t),
		Salmon:   false,
	}
}

// DeriveReverse returns the WayLabels for traversing a way against its
// natural direction — used for the reverse twin edge of a one-way way that
// still permits bicycle contraflow (oneway:bicycle=no / cycleway=opposite*).
func DeriveReverse(t Tags) WayLabels {
	return WayLabels{
		Cycleway: deriveCycleway(t, true),
		Road:     deriveRoad(t),
		Salmon:   isSalmon(t),
	}
}

// IsOneWay reports whether the way is one-way for general traffic.
func IsOneWay(t Tags) bool {
	switch t.Find("oneway") {
	case "yes", "true", "1":
		return true
	}
	return false
}

// AllowsBicycleContraflow reports whether a one-way way still permits
// bicycles to travel against the flow of traffic (the "salmon" direction),
// either via an explicit oneway:bicycle=no override or a contraflow/opposite
// cycleway tag.
func AllowsBicycleContraflow(t Tags) bool {
	switch t.Find("oneway:bicycle") {
	case "no", "false", "0":
		return true
	}
	switch t.Find("cycleway") {
	case "opposite", "opposite_lane", "opposite_track":
		return true
	}
	if t.Find("cycleway:left") != "" && t.Find("oneway:bicycle") != "yes" {
		switch t.Find("cycleway:left") {
		case "opposite", "opposite_lane", "opposite_track", "lane", "track":
			return true
		}
	}
	return false
}

func isSalmon(t Tags) bool {
	if !IsOneWay(t) {
		return false
	}
	return AllowsBicycleContraflow(t)
}

// deriveCycleway inspects the cycleway tag family and reduces it to the
// dense Cycleway ordinal. When reverse is true, the :left/:right sides are
// inspected with flipped preference (ways are ingested left-hand-drive
// agnostic; the deriver takes whichever side tag is present).
func deriveCycleway(t Tags, reverse bool) Cycleway {
	candidates := []string{t.Find("cycleway")}
	if reverse {
		candidates = append(candidates, t.Find("cycleway:left"), t.Find("cycleway:both"))
	} else {
		candidates = append(candidates, t.Find("cycleway:right"), t.Find("cycleway:both"))
	}

	best := CyclewayNone
	for _, v := range candidates {
		if c, ok := cyclewayFromValue(v); ok && c > best {
			best = c
		}
	}

	if best == CyclewayNone {
		switch t.Find("bicycle") {
		case "designated":
			return CyclewayShared
		}
	}

	return best
}

func cyclewayFromValue(v string) (Cycleway, bool) {
	switch v {
	case "":
		return CyclewayNone, false
	case "track", "opposite_track", "separate":
		return CyclewayTrack, true
	case "lane", "opposite_lane", "buffered_lane":
		return CyclewayLane, true
	case "shared_lane", "shared_busway", "share_busway", "opposite":
		return CyclewayShared, true
	default:
		return CyclewayNone, true
	}
}

func deriveRoad(t Tags) Road {
	if t.Find("highway") == "cycleway" {
		return RoadBike
	}

	switch t.Find("highway") {
	case "pedestrian", "footway", "path", "steps", "track":
		return RoadPedestrian
	case "residential", "living_street", "unclassified", "service":
		return RoadLocal
	case "tertiary", "tertiary_link", "secondary", "secondary_link":
		return RoadCollector
	case "primary", "primary_link", "trunk", "trunk_link", "motorway", "motorway_link":
		return RoadArterial
	default:
		return RoadLocal
	}
}
