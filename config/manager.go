package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"framekit/internal/logx"
)

const (
	DefaultDebounce = 250 * time.Millisecond

	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Manager owns the current scene and publishes reloads to subscribers.
type Manager struct {
	path     string
	debounce time.Duration
	log      logx.Logger

	mu       sync.RWMutex
	scene    *Scene
	lastHash uint64

	// subsMu is held while sending so Unsubscribe never closes a channel
	// mid-send.
	subsMu sync.Mutex
	subs   []chan *Scene

	readyOnce sync.Once
	ready     chan struct{}
}

func NewManager(path string) *Manager {
	return &Manager{
		path:     path,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
	}
}

func (m *Manager) SetLogger(log logx.Logger) {
	m.log = log.With(logx.String("component", "config"))
}

// SetDebounce sets how long Watch waits after the last change event before
// reloading.
func (m *Manager) SetDebounce(d time.Duration) {
	if d > 0 {
		m.debounce = d
	}
}

func (m *Manager) Path() string { return m.path }

// Load parses the file and makes it the current scene.
func (m *Manager) Load() (*Scene, error) {
	s, err := Load(m.path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", m.path, err)
	}
	m.commit(s)
	return s, nil
}

// Get returns the current scene, or nil before the first Load.
func (m *Manager) Get() *Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene
}

func (m *Manager) commit(s *Scene) {
	m.mu.Lock()
	m.scene = s
	m.lastHash = hashScene(s)
	m.mu.Unlock()
}

func hashScene(s *Scene) uint64 {
	if s == nil {
		return 0
	}
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// Subscribe returns a channel receiving every published scene. A slow
// subscriber only ever misses older scenes, never the latest.
func (m *Manager) Subscribe(buffer int) chan *Scene {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Scene, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (m *Manager) Unsubscribe(ch chan *Scene) {
	if ch == nil {
		return
	}
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, s := range m.subs {
		if s == ch {
			last := len(m.subs) - 1
			m.subs[i] = m.subs[last]
			m.subs[last] = nil
			m.subs = m.subs[:last]
			close(ch)
			return
		}
	}
}

func (m *Manager) publish(s *Scene) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Full: drop the oldest, then deliver.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
			m.log.Debug("scene update dropped (subscriber slow)", logx.Int("queue_cap", cap(ch)))
		}
	}
}

// reload re-reads the file and publishes it when it parsed, validated and
// differs from the current scene.
func (m *Manager) reload() {
	s, err := Load(m.path)
	if err != nil {
		m.log.Warn("scene reload failed; keeping current scene", logx.String("path", m.path), logx.Err(err))
		return
	}
	h := hashScene(s)
	m.mu.RLock()
	unchanged := h != 0 && h == m.lastHash
	m.mu.RUnlock()
	if unchanged {
		m.log.Debug("scene unchanged; skipping publish", logx.String("path", m.path))
		return
	}
	m.commit(s)
	m.publish(s)
	m.log.Info("scene reloaded", logx.String("path", m.path), logx.Int("objects", len(s.Objects)))
}

// Ready is closed once Watch has its first watcher in place.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// Watch reloads the scene whenever its file changes, until ctx is done. The
// parent directory is watched so editors that replace the file still trigger
// a reload. A broken watcher is recreated with backoff.
func (m *Manager) Watch(ctx context.Context) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(m.debounce, func() {
			if ctx.Err() == nil {
				m.reload()
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	backoff := restartBackoffBase
	wait := func() bool {
		d := backoff
		backoff = min(backoff*2, restartBackoffMax)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	for ctx.Err() == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			m.log.Warn("scene watch init failed", logx.Err(err))
			if !wait() {
				break
			}
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			m.log.Warn("scene watch add failed", logx.String("dir", dir), logx.Err(err))
			if !wait() {
				break
			}
			continue
		}
		backoff = restartBackoffBase
		m.readyOnce.Do(func() { close(m.ready) })
		m.log.Debug("scene watcher started", logx.String("dir", dir), logx.String("file", file))

		if done := m.watchLoop(ctx, w, file, schedule); done {
			_ = w.Close()
			break
		}
		_ = w.Close()
		m.log.Warn("scene watcher stopped; restarting", logx.String("dir", dir))
		if !wait() {
			break
		}
	}
	return nil
}

// watchLoop forwards matching events until ctx is done (true) or the watcher
// breaks (false).
func (m *Manager) watchLoop(ctx context.Context, w *fsnotify.Watcher, file string, schedule func()) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case ev, ok := <-w.Events:
			if !ok {
				return false
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				m.log.Debug("scene change detected", logx.String("op", ev.Op.String()))
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return false
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				m.log.Warn("scene watch overflow; forcing reload")
				schedule()
				continue
			}
			m.log.Warn("scene watch error", logx.Err(err))
		}
	}
}
