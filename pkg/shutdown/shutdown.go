// Package shutdown runs registered cleanup hooks when the daemon stops.
// Hooks run in reverse registration order, mirroring startup.
package shutdown

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "shutdown")

// Hook is one cleanup step. It should honor ctx's deadline.
type Hook func(ctx context.Context)

type namedHook struct {
	name string
	fn   Hook
}

// Manager collects cleanup hooks and runs them last-in first-out.
type Manager struct {
	mu    sync.Mutex
	hooks []namedHook
	done  bool
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers a named hook. Registration order is startup order;
// hooks run in the reverse of it.
func (m *Manager) OnShutdown(name string, fn Hook) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, fn: fn})
}

// Shutdown runs all hooks. The first call wins; later calls return
// immediately. A hook that outlives ctx is abandoned along with the hooks
// behind it.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	hooks := m.hooks
	m.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		log.Infof("stopping %s", h.name)
		done := make(chan struct{})
		go func() {
			defer close(done)
			h.fn(ctx)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			log.Warnf("shutdown deadline hit while stopping %s, %d hooks skipped", h.name, i)
			return
		}
	}
	log.Info("shutdown complete")
}
