package bridge

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/metrics"
	"github.com/abel123/zeus/pkg/zen"
)

var log = logrus.WithField("component", "bridge")

// Hub tracks the live chart sessions. Every session gets its own controller built
// from the hub's fetcher and option template.
type Hub struct {
	fetcher zen.Fetcher
	options zen.Options

	register   chan *Session
	unregister chan *Session
	done       chan struct{}

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(fetcher zen.Fetcher, options zen.Options) *Hub {
	return &Hub{
		fetcher:    fetcher,
		options:    options,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
		sessions:   make(map[string]*Session),
	}
}

// Run serves registrations until ctx is done, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s.id] = s
			n := len(h.sessions)
			h.mu.Unlock()

			metrics.BridgeSessionsMetrics.Set(float64(n))
			log.Infof("session %s connected, %d live", s.id, n)

		case s := <-h.unregister:
			h.mu.Lock()
			_, ok := h.sessions[s.id]
			if ok {
				delete(h.sessions, s.id)
			}
			n := len(h.sessions)
			h.mu.Unlock()

			if ok {
				s.close()
				metrics.BridgeSessionsMetrics.Set(float64(n))
				log.Infof("session %s disconnected, %d live", s.id, n)
			}
		}
	}
}

// leave unregisters s unless the hub has stopped already.
func (h *Hub) leave(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
		s.close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	metrics.BridgeSessionsMetrics.Set(0)
}

func (h *Hub) Session(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	return s, ok
}

// Sessions returns the live sessions ordered by id.
func (h *Hub) Sessions() []*Session {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].id < sessions[j].id
	})
	return sessions
}

func (h *Hub) NumSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) newController(id string, surface *chart.Surface) *zen.Controller {
	options := h.options
	options.Logger = log.WithField("session", id)
	return zen.NewController(surface, h.fetcher, options)
}
