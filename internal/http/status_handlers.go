package http

import (
	"context"
	nethttp "net/http"
	"time"

	mysqlstore "fiber-ring-topology-ui/internal/connectors/mysql"
	snapstore "fiber-ring-topology-ui/internal/connectors/snapshots"
	"fiber-ring-topology-ui/internal/dataset"
)

func servicesStatusHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		payload := map[string]any{
			"generated_at": time.Now().UTC(),
			"services":     map[string]any{},
		}
		services := payload["services"].(map[string]any)

		services["mysql"] = mysqlStatus(ctx, svc.mysql)
		services["snapshot_store"] = snapshotStoreStatus(ctx, svc.snapshots, svc.metrics)
		services["dataset"] = datasetStatus(svc.holder)

		writeJSON(w, nethttp.StatusOK, payload)
	}
}

// mysqlStatus relies on the store's own query observer for metrics.
func mysqlStatus(ctx context.Context, store *mysqlstore.Store) map[string]any {
	if store == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "mysql data source disabled"}
	}

	stats, err := store.ServiceStats(ctx)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}

	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func snapshotStoreStatus(ctx context.Context, store *snapstore.Store, m *Metrics) map[string]any {
	if store == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "snapshot store disabled"}
	}

	start := time.Now()
	stats, err := store.Stats(ctx)
	m.RecordDBQuery("sqlite", "Stats", time.Since(start), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "path": store.Path(), "stats": stats}
}

func datasetStatus(holder *dataset.Holder) map[string]any {
	snap, err := holder.Current()
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	rings, withoutRing := dataset.GroupByRing(snap.Records)
	return map[string]any{
		"enabled": true,
		"ok":      true,
		"stats": map[string]any{
			"snapshot_id":  snap.ID,
			"source":       snap.Source,
			"loaded_at":    snap.LoadedAt,
			"pinned":       holder.Pinned(),
			"records":      len(snap.Records),
			"rings":        len(rings),
			"without_ring": withoutRing,
			"columns":      snap.Columns.Headers,
		},
	}
}
