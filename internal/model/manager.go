// Package model owns the lifecycle of the local model artifact: download,
// integrity verification, version migration and on-disk placement. A caller
// always gets either a verified, ready handle or an explicit error, never
// a handle to a corrupt or partial artifact.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"fuoco/internal/logging"
	"fuoco/internal/store"
)

// State is the lifecycle state of a logical model identity.
type State string

const (
	StateAbsent      State = "absent"
	StateDownloading State = "downloading"
	StateVerifying   State = "verifying"
	StateReady       State = "ready"
)

// Sentinel errors per the download/integrity taxonomy.
var (
	ErrDownloadFailed = errors.New("model download failed")
	ErrIntegrity      = errors.New("model artifact failed integrity check")
)

// Handle is a verified, ready-to-use model artifact reference.
type Handle struct {
	ID      string
	Version string
	Path    string
	Size    int64
}

// Meta is the persisted metadata record, the single source of truth for
// "is the model usable". It is written only after a successful verified
// install, and always as the last step.
type Meta struct {
	Version string `json:"version"`
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
}

// Options configures a Manager.
type Options struct {
	ModelID     string
	Version     string
	DownloadURL string
	ModelsDir   string
	SizeHint    int64 // expected artifact size; 0 = rely on Content-Length
}

// Manager drives the Absent -> Downloading -> Verifying -> Ready state
// machine for one logical model identity.
type Manager struct {
	opts  Options
	kv    store.KV
	fetch Fetcher
	group singleflight.Group

	mu       sync.Mutex
	state    State
	progress float64 // 0..100 while downloading
}

// NewManager creates a lifecycle manager. fetch may be nil, in which case
// the default HTTP fetcher is used.
func NewManager(opts Options, kv store.KV, fetch Fetcher) *Manager {
	if fetch == nil {
		fetch = NewHTTPFetcher()
	}
	return &Manager{opts: opts, kv: kv, fetch: fetch, state: StateAbsent}
}

// finalPath is the on-disk location of the installed artifact.
func (m *Manager) finalPath() string {
	return filepath.Join(m.opts.ModelsDir, fmt.Sprintf("%s-%s.gguf", m.opts.ModelID, m.opts.Version))
}

// Ensure returns a verified handle, downloading and installing the artifact
// if needed. It is idempotent and safe to call repeatedly; concurrent calls
// for the same model identity share a single in-flight attempt. onProgress,
// if non-nil, receives fractional download progress in percent (0..100).
func (m *Manager) Ensure(ctx context.Context, onProgress func(pct float64)) (*Handle, error) {
	v, err, _ := m.group.Do(m.opts.ModelID, func() (interface{}, error) {
		return m.ensure(ctx, onProgress)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

func (m *Manager) ensure(ctx context.Context, onProgress func(pct float64)) (*Handle, error) {
	timer := logging.StartTimer(logging.CategoryModel, "Ensure")
	defer timer.Stop()

	// Fast path: stored version matches and the artifact is on disk.
	// No network access happens here.
	meta, ok, err := m.loadMeta(ctx)
	if err != nil {
		return nil, err
	}
	if ok && meta.Version == m.opts.Version && fileExists(meta.Path) {
		m.setState(StateReady)
		logging.ModelDebug("%s: ready (fast path, version %s)", m.opts.ModelID, meta.Version)
		return &Handle{ID: m.opts.ModelID, Version: meta.Version, Path: meta.Path, Size: meta.Bytes}, nil
	}

	// A different-version artifact on disk may still be usable: trial-load
	// it and adopt it under the current version tag if it passes.
	if adopted := m.tryAdopt(ctx); adopted != nil {
		return adopted, nil
	}

	// Bound disk usage before fetching: other versions of this identity
	// are superseded either way.
	m.sweepStaleArtifacts()

	if err := m.download(ctx, onProgress); err != nil {
		m.setState(StateAbsent)
		return nil, err
	}

	handle := &Handle{
		ID:      m.opts.ModelID,
		Version: m.opts.Version,
		Path:    m.finalPath(),
		Size:    fileSize(m.finalPath()),
	}

	// Metadata is the last write, never the first: it only ever describes
	// an artifact that completed installation.
	if err := m.saveMeta(ctx, Meta{Version: handle.Version, Path: handle.Path, Bytes: handle.Size}); err != nil {
		return nil, fmt.Errorf("save model metadata: %w", err)
	}

	m.setState(StateReady)
	logging.Model("%s: installed version %s (%d bytes)", m.opts.ModelID, handle.Version, handle.Size)
	return handle, nil
}

// tryAdopt looks for an artifact of this identity under another version,
// verifies it structurally, and adopts it by rewriting the metadata to the
// current version tag. Returns nil when nothing usable is found.
func (m *Manager) tryAdopt(ctx context.Context) *Handle {
	candidates, _ := filepath.Glob(filepath.Join(m.opts.ModelsDir, m.opts.ModelID+"-*.gguf"))
	for _, path := range candidates {
		if !fileExists(path) {
			continue
		}

		m.setState(StateVerifying)
		if err := TrialLoad(path); err != nil {
			logging.Model("%s: trial load of %s failed: %v", m.opts.ModelID, path, err)
			continue
		}

		meta := Meta{Version: m.opts.Version, Path: path, Bytes: fileSize(path)}
		if err := m.saveMeta(ctx, meta); err != nil {
			logging.Model("%s: adopt failed to save metadata: %v", m.opts.ModelID, err)
			continue
		}
		m.setState(StateReady)
		logging.Model("%s: adopted existing artifact %s as version %s", m.opts.ModelID, path, m.opts.Version)
		return &Handle{ID: m.opts.ModelID, Version: meta.Version, Path: meta.Path, Size: meta.Bytes}
	}
	return nil
}

// download fetches the artifact to a .partial temp path and atomically
// installs it at the final path. On any failure the temp file is removed
// and neither the final path nor the metadata is touched.
func (m *Manager) download(ctx context.Context, onProgress func(pct float64)) error {
	final := m.finalPath()
	tmp := final + ".partial"

	if err := os.MkdirAll(m.opts.ModelsDir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	m.setState(StateDownloading)
	logging.Model("%s: downloading %s", m.opts.ModelID, m.opts.DownloadURL)

	err := m.fetch.Fetch(ctx, m.opts.DownloadURL, tmp, m.opts.SizeHint, func(pct float64) {
		m.mu.Lock()
		m.progress = pct
		m.mu.Unlock()
		if onProgress != nil {
			onProgress(pct)
		}
	})
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	m.setState(StateVerifying)
	if err := TrialLoad(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	// Remove any stale final file, then move temp into place.
	if err := os.Remove(final); err != nil && !os.IsNotExist(err) {
		os.Remove(tmp)
		return fmt.Errorf("remove stale artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

// sweepStaleArtifacts deletes on-disk artifacts of this identity under a
// different version, bounding disk usage before a new download starts.
func (m *Manager) sweepStaleArtifacts() {
	final := m.finalPath()
	matches, _ := filepath.Glob(filepath.Join(m.opts.ModelsDir, m.opts.ModelID+"-*.gguf"))
	for _, path := range matches {
		if path == final {
			continue
		}
		if err := os.Remove(path); err == nil {
			logging.Model("%s: removed stale artifact %s", m.opts.ModelID, path)
		}
	}
}

// Status reports the current lifecycle state.
type Status struct {
	ModelID  string
	Version  string
	State    State
	Path     string
	Bytes    int64
	Progress float64
}

// CurrentStatus returns the lifecycle state and, when Ready, the installed
// artifact details from metadata.
func (m *Manager) CurrentStatus(ctx context.Context) (Status, error) {
	m.mu.Lock()
	st := Status{ModelID: m.opts.ModelID, Version: m.opts.Version, State: m.state, Progress: m.progress}
	m.mu.Unlock()

	meta, ok, err := m.loadMeta(ctx)
	if err != nil {
		return st, err
	}
	if ok && meta.Version == m.opts.Version && fileExists(meta.Path) {
		st.State = StateReady
		st.Path = meta.Path
		st.Bytes = meta.Bytes
	}
	return st, nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) loadMeta(ctx context.Context) (Meta, bool, error) {
	raw, ok, err := m.kv.Get(ctx, store.ModelMetaKey(m.opts.ModelID))
	if err != nil || !ok {
		return Meta{}, false, err
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		// Corrupt metadata is treated as absent; a fresh install rewrites it.
		return Meta{}, false, nil
	}
	return meta, true, nil
}

func (m *Manager) saveMeta(ctx context.Context, meta Meta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, store.ModelMetaKey(m.opts.ModelID), raw)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
