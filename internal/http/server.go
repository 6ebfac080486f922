package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"fiber-ring-topology-ui/internal/config"
	mysqlstore "fiber-ring-topology-ui/internal/connectors/mysql"
	snapstore "fiber-ring-topology-ui/internal/connectors/snapshots"
	"fiber-ring-topology-ui/internal/dataset"
	"fiber-ring-topology-ui/internal/topology"
)

// services bundles what the handlers share.
type services struct {
	logger         *slog.Logger
	metrics        *Metrics
	holder         *dataset.Holder
	graphs         *graphService
	schema         dataset.Schema
	mysql          *mysqlstore.Store
	snapshots      *snapstore.Store
	defaultLimit   int
	uploadMaxBytes int64
}

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer   *nethttp.Server
	svc          *services
	reloadEvery  time.Duration
	reloadCancel context.CancelFunc
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	overrides, err := config.LoadOverrides(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	schema := overrides.Schema()
	opts, err := builderOptions(cfg)
	if err != nil {
		return nil, err
	}
	metrics := NewMetrics()

	var snapshots *snapstore.Store
	if cfg.SnapshotSQLitePath != "" {
		snapshots, err = snapstore.NewSQLiteStore(cfg.SnapshotSQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
	}

	var store *mysqlstore.Store
	var loader dataset.Loader
	switch cfg.DataSource {
	case "mysql":
		store, err = mysqlstore.NewStore(cfg, schema)
		if err != nil {
			_ = snapshots.Close()
			return nil, fmt.Errorf("open mysql store: %w", err)
		}
		store.Observe(func(op string, d time.Duration, err error) {
			metrics.RecordDBQuery("mysql", op, d, err)
		})
		loader = store
	case "snapshot":
		if snapshots == nil {
			return nil, errors.New("snapshot data source requires APP_SNAPSHOT_SQLITE_PATH")
		}
		loader = snapstore.LatestLoader{Store: snapshots, Schema: schema}
	default:
		loader = dataset.FileLoader{Path: cfg.DataFile, Sheet: cfg.DataSheet, Schema: schema}
	}

	holder := dataset.NewHolder(loader, logger)
	graphs := newGraphService(topology.NewBuilder(opts), topology.NewGraphCache(cfg.GraphCacheSize), overrides.StyleMap(), metrics, logger)
	holder.OnSwap(func(s *dataset.Snapshot) {
		graphs.cache.Purge()
		metrics.DatasetRecords.Set(float64(len(s.Records)))
	})

	svc := &services{
		logger:         logger,
		metrics:        metrics,
		holder:         holder,
		graphs:         graphs,
		schema:         schema,
		mysql:          store,
		snapshots:      snapshots,
		defaultLimit:   cfg.DefaultLimit,
		uploadMaxBytes: cfg.UploadMaxBytes,
	}

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      newHandler(svc),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{httpServer: httpServer, svc: svc, reloadEvery: cfg.DataReloadEach}, nil
}

func builderOptions(cfg config.Config) (topology.Options, error) {
	layout, err := topology.ParseLayoutMode(cfg.LayoutMode)
	if err != nil {
		return topology.Options{}, err
	}
	lookup, err := topology.ParseLookupMode(cfg.LookupMode)
	if err != nil {
		return topology.Options{}, err
	}
	return topology.Options{
		RowWidth: cfg.LayoutRowWidth,
		XSpacing: cfg.LayoutXSpacing,
		YSpacing: cfg.LayoutYSpacing,
		Layout:   layout,
		Lookup:   lookup,
	}, nil
}

func newHandler(svc *services) nethttp.Handler {
	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler(svc.metrics))
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler(svc.metrics))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(svc.holder))
	mux.HandleFunc("/api/v1/topology", topologyHandler(svc))
	mux.HandleFunc("/api/v1/rings", ringsHandler(svc))
	mux.HandleFunc("/api/v1/rings/", ringTopologyHandler(svc))
	mux.HandleFunc("/api/v1/links", linksHandler(svc))
	mux.HandleFunc("/api/v1/schema", schemaHandler(svc))
	mux.HandleFunc("/api/v1/styles", stylesHandler(svc.graphs.styles))
	mux.HandleFunc("/api/v1/datasets", datasetsRouter(svc))
	mux.HandleFunc("/api/v1/datasets/", datasetsRouter(svc))
	mux.HandleFunc("/api/v1/reload", reloadHandler(svc))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(svc))

	return loggingMiddleware(svc.logger, observabilityMiddleware(svc.metrics, mux))
}

// ListenAndServe loads the dataset in the background and starts the HTTP
// server.
func (s *Server) ListenAndServe() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.reloadCancel = cancel
	go s.startReloader(ctx)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.reloadCancel != nil {
		s.reloadCancel()
	}
	err := s.httpServer.Shutdown(ctx)
	if s.svc.mysql != nil {
		_ = s.svc.mysql.Close()
	}
	if s.svc.snapshots != nil {
		_ = s.svc.snapshots.Close()
	}
	return err
}

func (s *Server) startReloader(ctx context.Context) {
	s.reload(ctx)
	if s.reloadEvery <= 0 {
		return
	}

	ticker := time.NewTicker(s.reloadEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *Server) reload(ctx context.Context) {
	_, _ = reloadDataset(ctx, s.svc)
}

// reloadDataset refreshes the holder from the configured source. A pinned
// snapshot is left alone and not counted as a reload attempt.
func reloadDataset(ctx context.Context, svc *services) (*dataset.Snapshot, error) {
	snap, err := svc.holder.Reload(ctx)
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrPinned):
			svc.logger.Debug("dataset reload skipped, snapshot pinned", slog.String("snapshot_id", snap.ID))
			return snap, err
		case errors.Is(err, snapstore.ErrNotFound):
			svc.logger.Info("no stored dataset snapshot yet")
		default:
			svc.logger.Error("dataset reload failed", slog.Any("error", err))
		}
		svc.metrics.RecordReload(err, 0)
		return nil, err
	}
	svc.metrics.RecordReload(nil, len(snap.Records))
	return snap, nil
}

// reloadHandler releases a pinned snapshot and reloads from the configured
// source. The current snapshot stays active when the load fails.
func reloadHandler(svc *services) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			methodNotAllowed(w, nethttp.MethodPost)
			return
		}

		wasPinned := svc.holder.Pinned()
		svc.holder.Unpin()
		snap, err := reloadDataset(r.Context(), svc)
		if err != nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error":      fmt.Sprintf("dataset reload failed: %v", err),
				"was_pinned": wasPinned,
			})
			return
		}
		svc.logger.Info("dataset source resumed",
			slog.String("snapshot_id", snap.ID),
			slog.Bool("was_pinned", wasPinned),
		)
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"data": map[string]any{
				"snapshot_id": snap.ID,
				"source":      snap.Source,
				"records":     len(snap.Records),
				"was_pinned":  wasPinned,
			},
		})
	}
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(holder *dataset.Holder) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		snap, err := holder.Current()
		if err != nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"status":      "ready",
			"snapshot_id": snap.ID,
		})
	}
}

func loggingMiddleware(logger *slog.Logger, next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
