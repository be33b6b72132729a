package api

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/paulmach/go.geojson"
	"github.com/valyala/fasthttp"

	"mrouter/pkg/cache"
	"mrouter/pkg/cost"
	"mrouter/pkg/routing"
	"mrouter/pkg/store"
)

// HandleRoute serves POST /route: snap both endpoints, run the A*/Dijkstra
// engine, and respond with the merged route steps plus a GeoJSON geometry.
func (h *Handlers) HandleRoute(ctx *fasthttp.RequestCtx) {
	var req RouteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "malformed request body: "+err.Error())
		return
	}
	if req.End == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "end is required for /route")
		return
	}

	model, err := h.resolveCostModel(ctx, req)
	if err != nil {
		writeModelError(ctx, err)
		return
	}

	route, meta, err := h.Engine.Route(ctx, req.Start.Lat, req.Start.Lon, req.End.Lat, req.End.Lon, model, req.heuristicWeight())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	ids := make([]routing.WayId, len(route.Steps))
	for i, s := range route.Steps {
		ids[i] = s.Way
	}
	names := h.Store.WayNames(ids)

	requestID := requestIDFromCtx(ctx)
	resp := routeResponse(requestID, route, meta, names)

	writeJSONWithGeometry(ctx, resp, buildRouteGeometry(h.Store, route))
}

// HandleExplore serves POST /explore: a depth-bounded, heuristic-free
// traversal from a single point, useful for visualizing reachability.
func (h *Handlers) HandleExplore(ctx *fasthttp.RequestCtx) {
	var req RouteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "malformed request body: "+err.Error())
		return
	}

	model, err := h.resolveCostModel(ctx, req)
	if err != nil {
		writeModelError(ctx, err)
		return
	}

	traversal, meta, err := h.Engine.Explore(ctx, req.Start.Lat, req.Start.Lon, req.maxDepth(), model)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	resp := exploreResponse(requestIDFromCtx(ctx), traversal, meta)
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

// HandleHealth serves GET /health.
func (h *Handlers) HandleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handlers) resolveCostModel(ctx context.Context, req RouteRequest) (cost.Model, error) {
	if req.CostModel == nil {
		return cost.DefaultModel(), nil
	}
	if h.Cache == nil || !h.Cache.Enabled {
		return cost.Build(*req.CostModel)
	}

	raw, err := json.Marshal(req.CostModel)
	if err != nil {
		return cost.Model{}, err
	}
	key := cache.ConfigKey(raw)

	if cached, err := cache.GetConfig(ctx, key); err == nil && cached != nil {
		return cost.Build(*cached)
	}

	model, err := cost.Build(*req.CostModel)
	if err != nil {
		return cost.Model{}, err
	}
	_ = cache.SetConfig(ctx, key, *req.CostModel, h.Cache.ConfigTTL)
	return model, nil
}

func buildRouteGeometry(s store.Store, route routing.Route) *geojson.Feature {
	var coords [][]float64
	push := func(id store.NodeId) {
		if n, ok := s.NodeCoords(id); ok {
			coords = append(coords, []float64{n.Lon, n.Lat})
		}
	}
	for i, step := range route.Steps {
		if i == 0 {
			push(step.EntryNode)
		}
		push(step.ExitNode)
	}
	if len(coords) < 2 {
		return nil
	}
	return geojson.NewLineStringFeature(coords)
}

func writeModelError(ctx *fasthttp.RequestCtx, err error) {
	if _, ok := err.(*cost.BadConfigError); ok {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_cost_model", err.Error())
		return
	}
	writeError(ctx, fasthttp.StatusInternalServerError, "internal", err.Error())
}

func writeEngineError(ctx *fasthttp.RequestCtx, err error) {
	switch err.(type) {
	case *store.SnapFailedError:
		writeError(ctx, fasthttp.StatusUnprocessableEntity, "snap_failed", err.Error())
	case *routing.NoRouteFoundError:
		writeError(ctx, fasthttp.StatusNotFound, "no_route_found", err.Error())
	case *store.UnavailableError:
		writeError(ctx, fasthttp.StatusServiceUnavailable, "store_unavailable", err.Error())
	case *routing.CancelledError:
		writeError(ctx, 499, "cancelled", err.Error())
	default:
		writeError(ctx, fasthttp.StatusInternalServerError, "internal", err.Error())
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

// writeJSONWithGeometry responds with resp's fields plus a "geometry" key
// carrying a GeoJSON LineString Feature, when one could be built.
func writeJSONWithGeometry(ctx *fasthttp.RequestCtx, resp RouteResponse, geometry *geojson.Feature) {
	envelope := struct {
		RouteResponse
		Geometry *geojson.Feature `json:"geometry,omitempty"`
	}{RouteResponse: resp, Geometry: geometry}
	writeJSON(ctx, fasthttp.StatusOK, envelope)
}

func writeError(ctx *fasthttp.RequestCtx, status int, kind, message string) {
	writeJSON(ctx, status, ErrorResponse{RequestId: requestIDFromCtx(ctx), Kind: kind, Message: message})
}
