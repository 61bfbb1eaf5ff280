package ml

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Registry hands out the current model bundle for one artifact path. The
// bundle itself is immutable; the registry only swaps the pointer when the
// artifact file changes on disk (a training run rewrote it). Callers must
// treat the returned bundle and meta as read-only.
type Registry struct {
	path string

	mu     sync.RWMutex
	bundle *Bundle
	meta   *Meta
	mtime  time.Time
}

func NewRegistry(path string) *Registry {
	r := &Registry{path: path}
	r.reload()
	return r
}

// Path is the artifact location the registry watches. Training runs write
// there.
func (r *Registry) Path() string { return r.path }

// Current returns the loaded bundle and its metadata, or (nil, nil) when no
// usable artifact exists. A changed artifact mtime triggers a reload.
func (r *Registry) Current() (*Bundle, *Meta) {
	info, err := os.Stat(r.path)
	if err != nil {
		// Artifact removed or never written: forget any stale bundle.
		r.mu.Lock()
		r.bundle, r.meta, r.mtime = nil, nil, time.Time{}
		r.mu.Unlock()
		return nil, nil
	}

	r.mu.RLock()
	fresh := r.bundle != nil && info.ModTime().Equal(r.mtime)
	bundle, meta := r.bundle, r.meta
	r.mu.RUnlock()
	if fresh {
		return bundle, meta
	}

	r.reload()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bundle, r.meta
}

func (r *Registry) reload() {
	info, err := os.Stat(r.path)
	if err != nil {
		return
	}

	bundle, err := LoadBundle(r.path)
	if err != nil {
		slog.Warn("Failed to load model bundle", "path", r.path, "error", err)
		return
	}

	r.mu.Lock()
	r.bundle = bundle
	r.meta = LoadMeta(r.path)
	r.mtime = info.ModTime()
	r.mu.Unlock()

	slog.Info("Model bundle loaded", "path", r.path, "task", bundle.Task, "best_model", bundle.Best, "features", len(bundle.FeatureColumns))
}
