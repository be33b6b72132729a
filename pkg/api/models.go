package api

import (
	"mrouter/pkg/cost"
	"mrouter/pkg/labels"
	"mrouter/pkg/routing"
)

// LatLng is a wire-format coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRequest is the body of POST /route and POST /explore. HeuristicWeight,
// MaxDepth, and CostModel are optional: a nil pointer means "use the
// default", distinct from an explicit zero value.
type RouteRequest struct {
	Start           LatLng       `json:"start"`
	End             *LatLng      `json:"end,omitempty"` // nil for /explore
	MaxDepth        *int         `json:"maxDepth,omitempty"`
	HeuristicWeight *float32     `json:"heuristicWeight,omitempty"`
	CostModel       *cost.Config `json:"costModel,omitempty"`
}

func (r RouteRequest) heuristicWeight() float32 {
	if r.HeuristicWeight != nil {
		return *r.HeuristicWeight
	}
	return routing.DefaultHeuristicWeight
}

func (r RouteRequest) maxDepth() int {
	if r.MaxDepth != nil {
		return *r.MaxDepth
	}
	return 5
}

// RouteStepJSON is one leg of a RouteResponse.
type RouteStepJSON struct {
	Way      int64         `json:"way"`
	Name     string        `json:"name,omitempty"`
	Labels   WayLabelsJSON `json:"labels"`
	Distance float64       `json:"distanceMeters"`
	Cost     float32       `json:"cost"`
	Entry    int64         `json:"entryNode"`
	Exit     int64         `json:"exitNode"`
}

// WayLabelsJSON is the wire form of labels.WayLabels, spelling out the enum
// names rather than shipping their ordinals.
type WayLabelsJSON struct {
	Cycleway string `json:"cycleway"`
	Road     string `json:"road"`
	Salmon   bool   `json:"salmon"`
}

func wayLabelsJSON(wl labels.WayLabels) WayLabelsJSON {
	return WayLabelsJSON{Cycleway: wl.Cycleway.String(), Road: wl.Road.String(), Salmon: wl.Salmon}
}

// RouteResponse is the body of a successful POST /route.
type RouteResponse struct {
	RequestId     string          `json:"requestId"`
	Steps         []RouteStepJSON `json:"steps"`
	TotalDistance float64         `json:"totalDistanceMeters"`
	TotalCost     float32         `json:"totalCost"`
	MaxDepth      int             `json:"maxDepthReached"`
	CostRange     [2]float32      `json:"costRange"`
}

func routeResponse(requestID string, route routing.Route, meta routing.Metadata, names map[routing.WayId]string) RouteResponse {
	steps := make([]RouteStepJSON, len(route.Steps))
	for i, s := range route.Steps {
		steps[i] = RouteStepJSON{
			Way: int64(s.Way), Name: names[s.Way], Labels: wayLabelsJSON(s.Labels),
			Distance: s.Distance, Cost: s.Cost, Entry: int64(s.EntryNode), Exit: int64(s.ExitNode),
		}
	}
	return RouteResponse{
		RequestId: requestID, Steps: steps, TotalDistance: route.TotalDistance,
		TotalCost: route.TotalCost, MaxDepth: meta.MaxDepth, CostRange: meta.CostRange,
	}
}

// ExploreResponse is the body of a successful POST /explore.
type ExploreResponse struct {
	RequestId string                 `json:"requestId"`
	Segments  []TraversalSegmentJSON `json:"segments"`
	MaxDepth  int                    `json:"maxDepthReached"`
	CostRange [2]float32             `json:"costRange"`
}

// TraversalSegmentJSON is one explored edge.
type TraversalSegmentJSON struct {
	From     int64         `json:"from"`
	To       int64         `json:"to"`
	Way      int64         `json:"way"`
	Labels   WayLabelsJSON `json:"labels"`
	Distance float64       `json:"distanceMeters"`
	Depth    int           `json:"depth"`
}

func exploreResponse(requestID string, traversal routing.Traversal, meta routing.Metadata) ExploreResponse {
	segs := make([]TraversalSegmentJSON, len(traversal.Segments))
	for i, s := range traversal.Segments {
		segs[i] = TraversalSegmentJSON{
			From: int64(s.From), To: int64(s.To), Way: int64(s.Way),
			Labels: wayLabelsJSON(s.Labels), Distance: s.Distance, Depth: s.Depth,
		}
	}
	return ExploreResponse{RequestId: requestID, Segments: segs, MaxDepth: meta.MaxDepth, CostRange: meta.CostRange}
}

// ErrorResponse is the body of any non-2xx response.
type ErrorResponse struct {
	RequestId string `json:"requestId"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
