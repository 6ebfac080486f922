package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fiber-ring-topology-ui/internal/topology"
)

var (
	// ErrNoSnapshot is returned when no dataset has been loaded yet.
	ErrNoSnapshot = errors.New("no dataset loaded")
	// ErrPinned is returned by Reload while a pinned snapshot is active.
	ErrPinned = errors.New("dataset pinned")
)

// Snapshot is one immutable load of the link table.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Table    Table
	Columns  ColumnMap
	Records  []topology.LinkRecord
}

// NewSnapshot resolves t against schema and converts its rows. id may be
// empty, in which case a random one is assigned.
func NewSnapshot(id, source string, t Table, schema Schema) (*Snapshot, error) {
	cm, err := schema.Resolve(t.Columns)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Snapshot{
		ID:       id,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Table:    t,
		Columns:  cm,
		Records:  cm.Records(t),
	}, nil
}

// Loader produces a fresh snapshot from some backing source.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// FileLoader reads a CSV or XLSX file from disk.
type FileLoader struct {
	Path   string
	Sheet  string
	Schema Schema
}

func (l FileLoader) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadFile(l.Path, l.Sheet)
	if err != nil {
		return nil, err
	}
	return NewSnapshot("", "file:"+l.Path, t, l.Schema)
}

// Holder keeps the current snapshot. Readers get a consistent snapshot
// pointer; a reload swaps it atomically.
type Holder struct {
	loader Loader
	logger *slog.Logger

	mu      sync.RWMutex
	current *Snapshot
	pinned  bool
	lastErr error

	onSwap func(*Snapshot)
}

// NewHolder creates a Holder. loader may be nil when snapshots are only set
// explicitly (for example from uploads).
func NewHolder(loader Loader, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{loader: loader, logger: logger}
}

// OnSwap registers a callback run after every successful swap.
func (h *Holder) OnSwap(fn func(*Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSwap = fn
}

// Current returns the active snapshot or ErrNoSnapshot.
func (h *Holder) Current() (*Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		if h.lastErr != nil {
			return nil, h.lastErr
		}
		return nil, ErrNoSnapshot
	}
	return h.current, nil
}

// Set replaces the active snapshot without touching the pin.
func (h *Holder) Set(s *Snapshot) {
	h.swap(s, false)
}

// Pin replaces the active snapshot and keeps it until Unpin; Reload leaves a
// pinned snapshot in place.
func (h *Holder) Pin(s *Snapshot) {
	h.swap(s, true)
}

// Unpin lets the next Reload replace the active snapshot again.
func (h *Holder) Unpin() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pinned = false
}

// Pinned reports whether the active snapshot was pinned.
func (h *Holder) Pinned() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pinned
}

func (h *Holder) swap(s *Snapshot, pin bool) {
	h.mu.Lock()
	h.current = s
	if pin {
		h.pinned = s != nil
	}
	h.lastErr = nil
	fn := h.onSwap
	h.mu.Unlock()
	if fn != nil && s != nil {
		fn(s)
	}
}

// Reload asks the loader for a fresh snapshot. On failure the previous
// snapshot stays active and the error is returned. While a snapshot is
// pinned the loader is not called and ErrPinned is returned with it.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.mu.RLock()
	pinned, current := h.pinned, h.current
	h.mu.RUnlock()
	if pinned {
		return current, ErrPinned
	}

	if h.loader == nil {
		return nil, errors.New("no loader configured")
	}
	s, err := h.loader.Load(ctx)
	if err != nil {
		h.mu.Lock()
		if h.current == nil {
			h.lastErr = err
		}
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	if h.pinned {
		// Pinned while the load was in flight.
		current = h.current
		h.mu.Unlock()
		return current, ErrPinned
	}
	h.mu.Unlock()
	h.Set(s)
	h.logger.Info("dataset loaded",
		slog.String("snapshot_id", s.ID),
		slog.String("source", s.Source),
		slog.Int("records", len(s.Records)),
	)
	return s, nil
}
