package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"

	"fiber-ring-topology-ui/internal/dataset"
	"fiber-ring-topology-ui/internal/topology"
)

// currentSnapshot writes the error response and returns false when no
// dataset is usable.
func currentSnapshot(w nethttp.ResponseWriter, holder *dataset.Holder) (*dataset.Snapshot, bool) {
	snap, err := holder.Current()
	if err == nil {
		return snap, true
	}
	var missing *dataset.MissingColumnsError
	if errors.As(err, &missing) {
		writeMissingColumns(w, missing)
		return nil, false
	}
	writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
		"error": fmt.Sprintf("dataset not loaded: %v", err),
	})
	return nil, false
}

func writeMissingColumns(w nethttp.ResponseWriter, err *dataset.MissingColumnsError) {
	writeJSON(w, nethttp.StatusUnprocessableEntity, map[string]any{
		"error":   err.Error(),
		"missing": err.Missing,
		"tried":   err.Tried,
	})
}

func parseSearch(r *nethttp.Request) (dataset.SearchRequest, error) {
	q := r.URL.Query()
	field, err := dataset.ParseSearchField(q.Get("field"))
	if err != nil {
		return dataset.SearchRequest{}, err
	}
	scope, err := dataset.ParseScope(q.Get("scope"))
	if err != nil {
		return dataset.SearchRequest{}, err
	}
	return dataset.SearchRequest{Field: field, Query: strings.TrimSpace(q.Get("q")), Scope: scope}, nil
}

func methodNotAllowed(w nethttp.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
}

func topologyHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		req, err := parseSearch(r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		builder, err := svc.graphs.builderFor(r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		snap, ok := currentSnapshot(w, svc.holder)
		if !ok {
			return
		}

		meta := map[string]any{
			"snapshot_id": snap.ID,
			"field":       req.Field,
			"query":       req.Query,
			"scope":       req.Scope,
			"layout":      builder.Options().Layout,
			"row_width":   builder.Options().RowWidth,
		}
		if req.Query == "" {
			meta["rings"] = 0
			meta["count"] = 0
			meta["message"] = "enter a search query"
			writeJSON(w, nethttp.StatusOK, map[string]any{"meta": meta, "data": []graphView{}})
			return
		}

		res := dataset.Search(snap.Records, req)
		views := make([]graphView, 0, len(res.Rings))
		for _, ring := range res.Rings {
			views = append(views, svc.graphs.view(svc.graphs.build(snap.ID, ring, scopeKey(req), builder)))
		}

		meta["rings"] = len(views)
		meta["count"] = res.Matched
		meta["without_ring"] = res.WithoutRing
		if len(views) == 0 {
			meta["message"] = fmt.Sprintf("no links match %s %q", req.Field, req.Query)
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"meta": meta, "data": views})
	}
}

func ringTopologyHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, "/api/v1/rings/")
		if !strings.HasSuffix(trimmed, "/topology") {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		ringID := strings.TrimSpace(strings.TrimSuffix(trimmed, "/topology"))
		if ringID == "" {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}

		builder, err := svc.graphs.builderFor(r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		snap, ok := currentSnapshot(w, svc.holder)
		if !ok {
			return
		}

		ring, found := dataset.RingByID(snap.Records, ringID)
		if !found {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": fmt.Sprintf("ring not found: %s", ringID)})
			return
		}

		graph := svc.graphs.build(snap.ID, ring, string(dataset.ScopeRing), builder)
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"snapshot_id": snap.ID,
				"records":     len(ring.Records),
			},
			"data": svc.graphs.view(graph),
		})
	}
}

func ringsHandler(svc *services) nethttp.HandlerFunc {
	type ringRow struct {
		RingID  string `json:"ring_id"`
		Records int    `json:"records"`
		Matched int    `json:"matched"`
	}

	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		req, err := parseSearch(r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		snap, ok := currentSnapshot(w, svc.holder)
		if !ok {
			return
		}

		req.Scope = dataset.ScopeRing
		res := dataset.Search(snap.Records, req)
		matched, _ := dataset.GroupByRing(dataset.Filter(snap.Records, req.Field, req.Query))
		matchedCount := make(map[string]int, len(matched))
		for _, ring := range matched {
			matchedCount[ring.ID] = len(ring.Records)
		}

		rows := make([]ringRow, 0, len(res.Rings))
		for _, ring := range res.Rings {
			rows = append(rows, ringRow{RingID: ring.ID, Records: len(ring.Records), Matched: matchedCount[ring.ID]})
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"snapshot_id":  snap.ID,
				"field":        req.Field,
				"query":        req.Query,
				"count":        len(rows),
				"without_ring": res.WithoutRing,
			},
			"data": rows,
		})
	}
}

func linksHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		req, err := parseSearch(r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		snap, ok := currentSnapshot(w, svc.holder)
		if !ok {
			return
		}

		limit := parseLimit(r, svc.defaultLimit)
		offset := parseOffset(r)
		matched := dataset.Filter(snap.Records, req.Field, req.Query)

		page := []topology.LinkRecord{}
		if offset < len(matched) {
			end := offset + limit
			if end > len(matched) {
				end = len(matched)
			}
			page = matched[offset:end]
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"snapshot_id": snap.ID,
				"field":       req.Field,
				"query":       req.Query,
				"limit":       limit,
				"offset":      offset,
				"total":       len(matched),
				"count":       len(page),
			},
			"data": page,
		})
	}
}

func schemaHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		payload := map[string]any{
			"fields":   dataset.AllFields,
			"required": dataset.RequiredFields,
			"aliases":  svc.schema,
			"search":   dataset.SearchFields,
		}
		if snap, err := svc.holder.Current(); err == nil {
			payload["snapshot_id"] = snap.ID
			payload["source"] = snap.Source
			payload["columns"] = snap.Table.Columns
			payload["resolved"] = snap.Columns.Headers
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"data": payload})
	}
}

func stylesHandler(styles topology.StyleMap) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			methodNotAllowed(w, nethttp.MethodGet)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"data": styles})
	}
}

func parseLimit(r *nethttp.Request, defaultLimit int) int {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}

func parseOffset(r *nethttp.Request) int {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return offset
}
