package system

import (
	"errors"
	"time"

	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Handlers only decode and queue intents; the
// Update phase applies them. Phase 0 (Input).
type InputSystem struct {
	hub        *net.Hub
	registry   *packet.Registry
	deps       *Deps
	maxPerTick int
}

func NewInputSystem(hub *net.Hub, registry *packet.Registry, deps *Deps, maxPerTick int) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 32
	}
	return &InputSystem{hub: hub, registry: registry, deps: deps, maxPerTick: maxPerTick}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	store := s.deps.Sessions

	for {
		select {
		case sess := <-s.hub.NewSessions():
			store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Transport-reported deaths: close so the pass below takes them off the island.
	for {
		select {
		case id := <-s.hub.DeadSessions():
			if sess := store.Get(id); sess != nil {
				sess.Close()
			}
		default:
			goto doneDead
		}
	}
doneDead:

	for _, id := range store.IDs() {
		sess := store.Get(id)
		if sess.IsClosed() {
			s.deps.Intents.Disconnects = append(s.deps.Intents.Disconnects, id)
			s.deps.Intents.ForgetSession(id)
			store.Remove(id)
			continue
		}
		s.drain(sess)
	}
}

// drain dispatches up to maxPerTick queued packets of one session.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.rejectPacket(sess, err)
			}
		default:
			return
		}
	}
}

func (s *InputSystem) rejectPacket(sess *net.Session, err error) {
	switch {
	case errors.Is(err, packet.ErrStateBlocked):
		s.deps.reject(metrics.RejectState)
	default:
		s.deps.reject(metrics.RejectMalformed)
	}
	s.deps.Log.Debug("封包分派錯誤",
		zap.Uint64("session", sess.ID),
		zap.String("state", sess.State().String()),
		zap.Error(err),
	)
}
