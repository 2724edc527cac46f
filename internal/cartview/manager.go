package cartview

import (
	"sync"
	"time"

	"github.com/SgtSlaughter1/flipkart-bff/internal/events"
)

const (
	// DefaultIdleTTL is how long an untouched view survives before eviction.
	DefaultIdleTTL = 15 * time.Minute

	cleanupInterval = 30 * time.Second
)

type managedView struct {
	view     *View
	lastSeen time.Time
}

// Manager hands out one View per session and evicts idle ones. Evicted views
// are closed, which makes their in-flight mutation completions no-ops.
type Manager struct {
	fee     float64
	idleTTL time.Duration
	carts   CartClient
	catalog CatalogClient
	pub     events.Publisher

	mu    sync.Mutex
	views map[string]*managedView

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(fee float64, idleTTL time.Duration, carts CartClient, catalog CatalogClient, pub events.Publisher) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	m := &Manager{
		fee:         fee,
		idleTTL:     idleTTL,
		carts:       carts,
		catalog:     catalog,
		pub:         pub,
		views:       make(map[string]*managedView),
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Get returns the session's view, creating one on first access. A session
// whose user changed gets a fresh view; the old user's lines must not leak
// into the new identity.
func (m *Manager) Get(sessionID, userID string) *View {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.views[sessionID]
	if ok && mv.view.userID != userID {
		mv.view.Close()
		ok = false
	}
	if !ok {
		mv = &managedView{view: NewView(userID, m.fee, m.carts, m.catalog, m.pub)}
		m.views[sessionID] = mv
	}
	mv.lastSeen = time.Now()
	return mv.view
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.idleTTL)
	for id, mv := range m.views {
		if mv.lastSeen.Before(cutoff) {
			mv.view.Close()
			delete(m.views, id)
		}
	}
}

// Close stops the cleanup loop and closes every managed view.
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, mv := range m.views {
		mv.view.Close()
		delete(m.views, id)
	}
	return nil
}
