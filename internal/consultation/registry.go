package consultation

import (
	"log"
	"sync"
	"time"

	"github.com/fdg312/curo/internal/ai"
	"github.com/fdg312/curo/internal/theme"
)

const defaultSweepInterval = time.Minute

// Registry keeps one live controller per client in memory. Nothing is
// persisted: an evicted or closed session simply starts over.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Controller
	provider    ai.Provider
	credentials CredentialSource
	idleTTL     time.Duration
	now         func() time.Time
	stopSweep   chan struct{}
	stopOnce    sync.Once
}

func NewRegistry(provider ai.Provider, credentials CredentialSource, idleTTL time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Controller),
		provider:    provider,
		credentials: credentials,
		idleTTL:     idleTTL,
		now:         time.Now,
		stopSweep:   make(chan struct{}),
	}
}

// Get returns the client's controller, creating a fresh one if needed.
// Controller methods are never called with r.mu held.
func (r *Registry) Get(clientID string) *Controller {
	r.mu.Lock()
	c, ok := r.sessions[clientID]
	r.mu.Unlock()
	if ok && c.touch() {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Someone else replaced a missing or expired entry in the meantime.
	if cur, ok := r.sessions[clientID]; ok && cur != c {
		return cur
	}
	fresh := NewController(clientID, r.provider, r.credentials, theme.NewDocument(), WithClock(r.now))
	r.sessions[clientID] = fresh
	return fresh
}

// Peek returns the client's live controller without creating one.
func (r *Registry) Peek(clientID string) (*Controller, bool) {
	r.mu.Lock()
	c, ok := r.sessions[clientID]
	r.mu.Unlock()
	if !ok || !c.touch() {
		return nil, false
	}
	return c, true
}

// Close tears down the client's view, reverting its theme.
func (r *Registry) Close(clientID string) bool {
	r.mu.Lock()
	c, ok := r.sessions[clientID]
	delete(r.sessions, clientID)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL. Sessions waiting on
// the completion service are kept.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	candidates := make(map[string]*Controller, len(r.sessions))
	for id, c := range r.sessions {
		candidates[id] = c
	}
	r.mu.Unlock()

	swept := 0
	for id, c := range candidates {
		if !c.expire(cutoff) {
			continue
		}
		swept++
		r.mu.Lock()
		if r.sessions[id] == c {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
	}
	return swept
}

// StartSweeper runs Sweep on interval until Stop.
func (r *Registry) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					log.Printf("INFO consultation: swept %d idle sessions", n)
				}
			case <-r.stopSweep:
				return
			}
		}
	}()
}

// Stop ends the sweeper and closes every session.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopSweep) })

	r.mu.Lock()
	all := make([]*Controller, 0, len(r.sessions))
	for id, c := range r.sessions {
		all = append(all, c)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}
