package http

import (
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"path/filepath"
	"strings"
	"time"

	snapstore "fiber-ring-topology-ui/internal/connectors/snapshots"
	"fiber-ring-topology-ui/internal/dataset"
)

func datasetsRouter(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if svc.snapshots == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "snapshot store disabled (set APP_SNAPSHOT_SQLITE_PATH)",
			})
			return
		}

		trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/datasets"), "/")
		if trimmed == "" {
			switch r.Method {
			case nethttp.MethodGet:
				listDatasets(svc, w, r)
			case nethttp.MethodPost:
				uploadDataset(svc, w, r)
			default:
				methodNotAllowed(w, nethttp.MethodGet, nethttp.MethodPost)
			}
			return
		}

		parts := strings.Split(trimmed, "/")
		switch {
		case len(parts) == 1:
			switch r.Method {
			case nethttp.MethodGet:
				getDataset(svc, w, r, parts[0])
			case nethttp.MethodDelete:
				deleteDataset(svc, w, r, parts[0])
			default:
				methodNotAllowed(w, nethttp.MethodGet, nethttp.MethodDelete)
			}
		case len(parts) == 2 && parts[1] == "activate":
			if r.Method != nethttp.MethodPost {
				methodNotAllowed(w, nethttp.MethodPost)
				return
			}
			activateDataset(svc, w, r, parts[0])
		default:
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
		}
	}
}

func activeSnapshotID(svc *services) string {
	if snap, err := svc.holder.Current(); err == nil {
		return snap.ID
	}
	return ""
}

func listDatasets(svc *services, w nethttp.ResponseWriter, r *nethttp.Request) {
	limit := parseLimit(r, svc.defaultLimit)
	start := time.Now()
	items, err := svc.snapshots.List(r.Context(), limit)
	svc.metrics.RecordDBQuery("sqlite", "ListSnapshots", time.Since(start), err)
	if err != nil {
		writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list datasets"})
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"meta": map[string]any{
			"limit":     limit,
			"count":     len(items),
			"active_id": activeSnapshotID(svc),
		},
		"data": items,
	})
}

func uploadDataset(svc *services, w nethttp.ResponseWriter, r *nethttp.Request) {
	fail := func(code int, payload map[string]any) {
		svc.metrics.DatasetUploads.WithLabelValues("rejected").Inc()
		writeJSON(w, code, payload)
	}

	r.Body = nethttp.MaxBytesReader(w, r.Body, svc.uploadMaxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *nethttp.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(nethttp.StatusRequestEntityTooLarge, map[string]any{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		fail(nethttp.StatusBadRequest, map[string]any{"error": "expected multipart form with a file field"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(nethttp.StatusBadRequest, map[string]any{"error": "missing file field"})
		return
	}
	defer file.Close()

	format, err := dataset.FormatFromName(header.Filename)
	if err != nil {
		fail(nethttp.StatusUnsupportedMediaType, map[string]any{"error": err.Error()})
		return
	}
	table, err := dataset.Read(file, format, strings.TrimSpace(r.FormValue("sheet")))
	if err != nil {
		fail(nethttp.StatusBadRequest, map[string]any{"error": fmt.Sprintf("failed to read %s: %v", header.Filename, err)})
		return
	}

	if _, err := svc.schema.Resolve(table.Columns); err != nil {
		var missing *dataset.MissingColumnsError
		if errors.As(err, &missing) {
			svc.metrics.DatasetUploads.WithLabelValues("rejected").Inc()
			writeMissingColumns(w, missing)
			return
		}
		fail(nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = filepath.Base(header.Filename)
	}

	start := time.Now()
	meta, err := svc.snapshots.Save(r.Context(), name, "upload:"+filepath.Base(header.Filename), table)
	svc.metrics.RecordDBQuery("sqlite", "SaveSnapshot", time.Since(start), err)
	if err != nil {
		svc.metrics.DatasetUploads.WithLabelValues("error").Inc()
		writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to store dataset"})
		return
	}

	snap, err := activate(svc, r, meta.ID)
	if err != nil {
		svc.metrics.DatasetUploads.WithLabelValues("error").Inc()
		writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to activate dataset"})
		return
	}

	svc.metrics.DatasetUploads.WithLabelValues("ok").Inc()
	svc.logger.Info("dataset uploaded",
		slog.String("snapshot_id", snap.ID),
		slog.String("name", name),
		slog.Int("rows", meta.RowCount),
	)
	writeJSON(w, nethttp.StatusCreated, map[string]any{
		"data": map[string]any{
			"snapshot": meta,
			"records":  len(snap.Records),
			"active":   true,
		},
	})
}

// activate loads a stored snapshot, marks it active and pins it so the
// periodic reload does not replace it.
func activate(svc *services, r *nethttp.Request, id string) (*dataset.Snapshot, error) {
	start := time.Now()
	snap, err := svc.snapshots.Snapshot(r.Context(), id, svc.schema)
	svc.metrics.RecordDBQuery("sqlite", "GetSnapshot", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	_, err = svc.snapshots.Activate(r.Context(), id)
	svc.metrics.RecordDBQuery("sqlite", "ActivateSnapshot", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	svc.holder.Pin(snap)
	return snap, nil
}

func getDataset(svc *services, w nethttp.ResponseWriter, r *nethttp.Request, id string) {
	start := time.Now()
	meta, err := svc.snapshots.Meta(r.Context(), id)
	svc.metrics.RecordDBQuery("sqlite", "GetSnapshotMeta", time.Since(start), err)
	if err != nil {
		writeStoreError(w, err, id)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"meta": map[string]any{"active": meta.ID == activeSnapshotID(svc)},
		"data": meta,
	})
}

func deleteDataset(svc *services, w nethttp.ResponseWriter, r *nethttp.Request, id string) {
	start := time.Now()
	err := svc.snapshots.Delete(r.Context(), id)
	svc.metrics.RecordDBQuery("sqlite", "DeleteSnapshot", time.Since(start), err)
	if err != nil {
		writeStoreError(w, err, id)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"data": map[string]any{
			"deleted":    id,
			"was_active": id == activeSnapshotID(svc),
		},
	})
}

func activateDataset(svc *services, w nethttp.ResponseWriter, r *nethttp.Request, id string) {
	snap, err := activate(svc, r, id)
	if err != nil {
		var missing *dataset.MissingColumnsError
		if errors.As(err, &missing) {
			writeMissingColumns(w, missing)
			return
		}
		writeStoreError(w, err, id)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"data": map[string]any{
			"snapshot_id": snap.ID,
			"source":      snap.Source,
			"records":     len(snap.Records),
		},
	})
}

func writeStoreError(w nethttp.ResponseWriter, err error, id string) {
	if errors.Is(err, snapstore.ErrNotFound) {
		writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": fmt.Sprintf("dataset not found: %s", id)})
		return
	}
	writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "dataset store error"})
}
