package system

import (
	"time"

	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
)

// EventSystem delivers every event raised so far this tick, including the
// ones its handlers raise. Phase 3 (PostUpdate), after ProjectileSystem.
type EventSystem struct {
	queue *event.Queue
}

func NewEventSystem(q *event.Queue) *EventSystem {
	return &EventSystem{queue: q}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.queue.Drain()
}
