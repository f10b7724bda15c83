package net

import (
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HubConfig sizes session queues and the per-session intent limiter.
type HubConfig struct {
	InQueueSize      int
	OutQueueSize     int
	IntentsPerSecond float64 // 0 = unlimited
	IntentBurst      int
}

// Hub is the boundary between the transport (owned elsewhere) and the game
// loop. The transport calls Open for every accepted client and feeds bytes via
// Session.Deliver; the game loop picks sessions up from NewSessions.
type Hub struct {
	cfg      HubConfig
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	log      *zap.Logger
}

func NewHub(cfg HubConfig, log *zap.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		log:      log,
	}
}

// Open creates a session and hands it to the game loop. Returns nil when the
// accept queue is full. Safe to call from any goroutine.
func (h *Hub) Open() *Session {
	id := h.nextID.Add(1)
	limit := rate.Inf
	if h.cfg.IntentsPerSecond > 0 {
		limit = rate.Limit(h.cfg.IntentsPerSecond)
	}
	sess := NewSession(id, h.cfg.InQueueSize, h.cfg.OutQueueSize, limit, h.cfg.IntentBurst, h.log)

	select {
	case h.newConns <- sess:
		h.log.Debug("session opened", zap.Uint64("session", id))
		return sess
	default:
		h.log.Warn("連線佇列已滿，拒絕新連線")
		sess.Close()
		return nil
	}
}

// NewSessions returns the channel of newly opened sessions.
func (h *Hub) NewSessions() <-chan *Session {
	return h.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (h *Hub) NotifyDead(sessionID uint64) {
	select {
	case h.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (h *Hub) DeadSessions() <-chan uint64 {
	return h.deadCh
}
